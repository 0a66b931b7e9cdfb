package common

import (
	"leafscan/internal/render"
	"leafscan/internal/tui/styles"
	"leafscan/pkg/types"
)

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Screen() render.View
	Display() *render.Display
	Notification() (types.Notification, bool)
	Thumbnail() string
	ShowHelp() bool
	Picking() bool
	Styles() styles.Styles

	DropInputView() string
	PickerView() string
	StatusView() string
	ResultView() string
	HelpView() string
}
