// Package styles builds the lipgloss styles of the terminal UI from the
// configured color theme.
package styles

import (
	"leafscan/internal/config"
	"leafscan/internal/render"
	"leafscan/pkg/types"

	"github.com/charmbracelet/lipgloss"
)

// Styles defines the core UI styles
type Styles struct {
	App      lipgloss.Style
	Title    lipgloss.Style
	DropZone lipgloss.Style
	Preview  lipgloss.Style
	Panel    lipgloss.Style
	Heading  lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Help     lipgloss.Style
	Item     lipgloss.Style

	colors map[render.Style]lipgloss.Color
	toasts map[types.NotificationKind]lipgloss.Style
}

// Theme is built from the default configuration
var Theme = New(config.New())

// New builds styles from the theme section of cfg
func New(cfg *config.Config) Styles {
	primary := lipgloss.Color(cfg.Theme.Primary)
	border := lipgloss.Color(cfg.Theme.Border)
	emphasis := lipgloss.Color(cfg.Theme.Emphasis)
	success := lipgloss.Color(cfg.Theme.Success)
	warning := lipgloss.Color(cfg.Theme.Warning)
	danger := lipgloss.Color(cfg.Theme.Error)
	info := lipgloss.Color(cfg.Theme.Info)

	toast := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1),
		DropZone: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 2),
		Preview: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(emphasis),
		Label: lipgloss.NewStyle().
			Foreground(primary),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Item: lipgloss.NewStyle().
			PaddingLeft(2),

		colors: map[render.Style]lipgloss.Color{
			render.StyleSuccess: success,
			render.StyleWarning: warning,
			render.StyleDanger:  danger,
		},
		toasts: map[types.NotificationKind]lipgloss.Style{
			types.NotifySuccess: toast.Foreground(success),
			types.NotifyError:   toast.Foreground(danger),
			types.NotifyInfo:    toast.Foreground(info),
		},
	}
}

// Color returns the theme color of a result style
func (s Styles) Color(style render.Style) lipgloss.Color {
	if c, ok := s.colors[style]; ok {
		return c
	}
	return s.colors[render.StyleDanger]
}

// Badge renders text in the color of style
func (s Styles) Badge(style render.Style) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(s.Color(style))
}

// Toast returns the style of a notification kind
func (s Styles) Toast(kind types.NotificationKind) lipgloss.Style {
	if t, ok := s.toasts[kind]; ok {
		return t
	}
	return s.toasts[types.NotifyInfo]
}
