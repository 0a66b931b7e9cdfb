package components

import (
	"leafscan/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusBar shows a spinner with a message while a request is outstanding
type StatusBar struct {
	text    string
	style   lipgloss.Style
	spinner spinner.Model
	loading bool
}

func NewStatusBar(s styles.Styles) *StatusBar {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Label

	return &StatusBar{
		style:   s.Help,
		spinner: sp,
	}
}

// SetLoading starts or stops the spinner. Starting returns the first tick.
func (s *StatusBar) SetLoading(loading bool) tea.Cmd {
	wasLoading := s.loading
	s.loading = loading
	if loading && !wasLoading {
		return s.spinner.Tick
	}
	return nil
}

func (s *StatusBar) Loading() bool {
	return s.loading
}

func (s *StatusBar) SetText(text string) {
	s.text = text
}

func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	if !s.loading {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

func (s *StatusBar) View() string {
	if s.text == "" && !s.loading {
		return ""
	}
	if s.loading {
		return s.spinner.View() + " " + s.style.Render(s.text)
	}
	return s.style.Render(s.text)
}
