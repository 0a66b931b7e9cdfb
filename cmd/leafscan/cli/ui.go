// Package cli holds the styled output helpers of the leafscan command line.
package cli

import (
	"fmt"
	"io"
	"strings"

	"leafscan/internal/config"
	"leafscan/internal/render"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the set of styles used for command output
type Theme struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Header  lipgloss.Style
	Logo    lipgloss.Style
	Box     lipgloss.Style
	Muted   lipgloss.Style
}

// CurrentTheme is the active theme
var CurrentTheme = NewTheme(config.New())

// NewTheme builds the output styles from the configured colors
func NewTheme(cfg *config.Config) Theme {
	c := cfg.Theme
	return Theme{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(c.Success)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(c.Error)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(c.Warning)),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color(c.Info)),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color(c.Emphasis)).Bold(true),
		Logo:    lipgloss.NewStyle().Foreground(lipgloss.Color(c.Primary)),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c.Border)).
			Padding(0, 1),
		Muted: lipgloss.NewStyle().Faint(true),
	}
}

// SetTheme switches the output styles to the colors of cfg
func SetTheme(cfg *config.Config) {
	CurrentTheme = NewTheme(cfg)
}

// Style returns the style of a result color treatment
func (t Theme) Style(s render.Style) lipgloss.Style {
	switch s {
	case render.StyleSuccess:
		return t.Success
	case render.StyleWarning:
		return t.Warning
	}
	return t.Error
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintln(w, CurrentTheme.Success.Render("✓ "+message))
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintln(w, CurrentTheme.Error.Render("✗ "+message))
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintln(w, CurrentTheme.Warning.Render("! "+message))
}

// PrintInfo prints an informational message
func PrintInfo(w io.Writer, message string) {
	fmt.Fprintln(w, CurrentTheme.Info.Render("ℹ "+message))
}

// PrintHeader prints a section header
func PrintHeader(w io.Writer, message string) {
	fmt.Fprintln(w, "\n"+CurrentTheme.Header.Render(message))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(message)))
}

// DrawBox frames content with the theme border
func DrawBox(content string) string {
	return CurrentTheme.Box.Render(content)
}

// DrawLogo returns the banner shown above the command help
func DrawLogo() string {
	logo := `
 _             __
| | ___  __ _ / _|___  ___ __ _ _ __
| |/ _ \/ _' | |_/ __|/ __/ _' | '_ \
| |  __/ (_| |  _\__ \ (_| (_| | | | |
|_|\___|\__,_|_| |___/\___\__,_|_| |_|
`
	return CurrentTheme.Logo.Render(logo)
}
