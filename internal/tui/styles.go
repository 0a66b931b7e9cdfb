package tui

import (
	"leafscan/internal/tui/styles"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/lipgloss"
)

// pickerStyles themes the file picker
func pickerStyles(s styles.Styles) filepicker.Styles {
	ps := filepicker.DefaultStyles()
	ps.Cursor = s.Label.Bold(true)
	ps.Selected = s.Label.Bold(true)
	ps.Directory = s.Heading
	ps.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	ps.DisabledFile = s.Muted
	ps.Symlink = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#D08770")).
		Italic(true)
	return ps
}
