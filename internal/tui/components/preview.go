package components

import (
	"strings"

	"leafscan/internal/render"
	"leafscan/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// RenderPreview shows the held image: thumbnail on the left, details on
// the right.
func RenderPreview(s styles.Styles, p *render.PreviewView, thumbnail string) string {
	if p == nil {
		return ""
	}

	var details strings.Builder
	details.WriteString(s.Heading.Render(p.Name) + "\n")
	row := func(label, value string) {
		if value == "" {
			return
		}
		details.WriteString(s.Label.Render(label+": ") + value + "\n")
	}
	row("Type", p.MediaType)
	row("Size", p.Size)
	row("Dimensions", p.Dimensions)
	row("Camera", p.Camera)
	row("Taken", p.TakenAt)

	body := strings.TrimRight(details.String(), "\n")
	if thumbnail != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, thumbnail, "  ", body)
	}
	return s.Preview.Render(body)
}
