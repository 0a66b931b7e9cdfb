package messages

import (
	"leafscan/internal/upload"
	"leafscan/pkg/types"
)

// ErrorMsg carries an error from a command
type ErrorMsg struct {
	Err error
}

// FileLoadedMsg is the result of reading a dropped or picked file
type FileLoadedMsg struct {
	Path      string
	File      *types.UploadedFile
	Thumbnail string
	Err       error
}

// PredictionMsg delivers the outcome of an analysis request
type PredictionMsg struct {
	Outcome upload.Outcome
}

// AnimationStepMsg fires when the step at Index of result animation Seq is due
type AnimationStepMsg struct {
	Seq   int
	Index int
}

// NotificationExpiredMsg fires when the notification with ID should hide
type NotificationExpiredMsg struct {
	ID uint64
}

// ClipboardMsg reports the outcome of copying the result
type ClipboardMsg struct {
	Err error
}
