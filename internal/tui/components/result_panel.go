package components

import (
	"fmt"
	"strings"

	"leafscan/internal/render"
	"leafscan/internal/tui/styles"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// ResultPanel is the scrollable classification panel
type ResultPanel struct {
	viewport viewport.Model
	styles   styles.Styles
	height   int
	width    int
}

func NewResultPanel(s styles.Styles) *ResultPanel {
	vp := viewport.New(72, 18)
	return &ResultPanel{
		viewport: vp,
		styles:   s,
		width:    72,
		height:   18,
	}
}

func (rp *ResultPanel) SetSize(width, height int) {
	if width < 20 {
		width = 20
	}
	if height < 5 {
		height = 5
	}
	rp.width = width
	rp.height = height
	rp.viewport.Width = width
	rp.viewport.Height = height
}

// Width is the usable content width
func (rp *ResultPanel) Width() int {
	return rp.width
}

// SetContent renders the partially revealed result into the viewport. bar
// is the already rendered confidence bar.
func (rp *ResultPanel) SetContent(v *render.ResultView, d *render.Display, bar string) {
	rp.viewport.SetContent(RenderResult(rp.styles, v, d, bar))
}

func (rp *ResultPanel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	rp.viewport, cmd = rp.viewport.Update(msg)
	return cmd
}

func (rp *ResultPanel) View() string {
	return rp.styles.Panel.Render(rp.viewport.View())
}

// RenderResult renders the result body as far as the display has revealed it
func RenderResult(s styles.Styles, v *render.ResultView, d *render.Display, bar string) string {
	if v == nil || d == nil {
		return ""
	}
	var sb strings.Builder

	sb.WriteString(s.Badge(v.Badge.Header).Render(d.Name) + "\n")
	sb.WriteString(s.Badge(v.Badge.Header).Render(v.Badge.Label) + "\n\n")
	sb.WriteString(fmt.Sprintf("%s %s %s\n", s.Label.Render("Confidence"), bar, s.Badge(v.Bar).Render(d.CounterText())))
	if v.Description != "" {
		sb.WriteString("\n" + v.Description + "\n")
	}

	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString("\n" + s.Heading.Render(title) + "\n")
		for _, item := range items {
			sb.WriteString(s.Item.Render("• "+item) + "\n")
		}
	}
	list("Causes", d.Causes)
	list("Prevention", d.Prevention)
	list("Treatment", d.Treatment)

	return strings.TrimRight(sb.String(), "\n")
}
