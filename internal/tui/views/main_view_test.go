package views

import (
	"testing"

	"leafscan/internal/render"
	"leafscan/internal/tui/styles"
	"leafscan/pkg/types"

	"github.com/stretchr/testify/assert"
)

// Mock model for testing
type mockModel struct {
	screen       render.View
	display      *render.Display
	notification types.Notification
	visible      bool
	thumbnail    string
	showHelp     bool
	picking      bool
}

func (m *mockModel) Screen() render.View      { return m.screen }
func (m *mockModel) Display() *render.Display { return m.display }
func (m *mockModel) Notification() (types.Notification, bool) {
	return m.notification, m.visible
}
func (m *mockModel) Thumbnail() string     { return m.thumbnail }
func (m *mockModel) ShowHelp() bool        { return m.showHelp }
func (m *mockModel) Picking() bool         { return m.picking }
func (m *mockModel) Styles() styles.Styles { return styles.Theme }
func (m *mockModel) DropInputView() string { return "> path" }
func (m *mockModel) PickerView() string    { return "picker-list" }
func (m *mockModel) StatusView() string    { return "Analyzing..." }
func (m *mockModel) ResultView() string    { return "result-panel" }
func (m *mockModel) HelpView() string      { return "help-line" }

func TestRenderMainView(t *testing.T) {
	file := &render.PreviewView{Name: "leaf.jpg", MediaType: "image/jpeg", Size: "2.0 kB", Dimensions: "640x480"}

	tests := []struct {
		name     string
		model    *mockModel
		contains []string
		excludes []string
	}{
		{
			name:     "idle shows the drop zone",
			model:    &mockModel{screen: render.View{Phase: types.Idle, DropZone: true}},
			contains: []string{"Drop a leaf image here", "> path", "help-line"},
			excludes: []string{"result-panel", "Analyzing..."},
		},
		{
			name:     "preview shows file details",
			model:    &mockModel{screen: render.View{Phase: types.Previewing, Preview: true, File: file}, thumbnail: "THUMB"},
			contains: []string{"leaf.jpg", "image/jpeg", "640x480", "THUMB", "enter analyze"},
			excludes: []string{"Drop a leaf image here"},
		},
		{
			name:     "analyzing shows the spinner",
			model:    &mockModel{screen: render.View{Phase: types.Analyzing, Loading: true, File: file}},
			contains: []string{"Analyzing...", "leaf.jpg"},
			excludes: []string{"enter analyze"},
		},
		{
			name:     "results shows the panel",
			model:    &mockModel{screen: render.View{Phase: types.Results, Results: true, File: file}},
			contains: []string{"result-panel", "ctrl+y copy"},
		},
		{
			name: "notification is shown",
			model: &mockModel{
				screen:       render.View{Phase: types.Idle, DropZone: true},
				notification: types.Notification{ID: 1, Kind: types.NotifyError, Message: "⚠️ Please upload an image first"},
				visible:      true,
			},
			contains: []string{"⚠️ Please upload an image first"},
		},
		{
			name:     "picker replaces the drop zone",
			model:    &mockModel{screen: render.View{Phase: types.Idle, DropZone: true}, picking: true},
			contains: []string{"Choose a leaf image", "picker-list"},
			excludes: []string{"Drop a leaf image here"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderMainView(tt.model)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}
