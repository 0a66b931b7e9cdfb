package views

import (
	"strings"

	"leafscan/internal/tui/common"
	"leafscan/internal/tui/components"
)

// RenderMainView composes the screen for the current phase
func RenderMainView(m common.ModelReader) string {
	s := m.Styles()
	screen := m.Screen()

	var sb strings.Builder
	sb.WriteString(renderBanner(m) + "\n")

	n, visible := m.Notification()
	if toast := components.RenderToast(s, n, visible); toast != "" {
		sb.WriteString(toast + "\n\n")
	}

	switch {
	case m.Picking():
		sb.WriteString(s.Heading.Render("Choose a leaf image") + "\n")
		sb.WriteString(m.PickerView() + "\n")
	case screen.DropZone:
		sb.WriteString(renderDropZone(m) + "\n")
	case screen.Preview:
		sb.WriteString(components.RenderPreview(s, screen.File, m.Thumbnail()) + "\n")
		sb.WriteString(s.Help.Render("enter analyze with AI • esc remove image") + "\n")
	case screen.Loading:
		if screen.File != nil {
			sb.WriteString(s.Muted.Render(screen.File.Name) + "\n")
		}
		sb.WriteString(m.StatusView() + "\n")
	case screen.Results:
		sb.WriteString(m.ResultView() + "\n")
		sb.WriteString(s.Help.Render("ctrl+y copy • drop another image to start over") + "\n")
	}

	sb.WriteString("\n" + m.HelpView())
	return s.App.Render(sb.String())
}

func renderDropZone(m common.ModelReader) string {
	s := m.Styles()
	body := strings.Join([]string{
		s.Heading.Render("🌿 Drop a leaf image here"),
		s.Muted.Render("Drag a file onto the terminal, paste its path, or press ctrl+o to browse."),
		"",
		m.DropInputView(),
	}, "\n")
	return s.DropZone.Render(body)
}

func renderBanner(m common.ModelReader) string {
	return m.Styles().Title.Render("leafscan · plant disease detection")
}
