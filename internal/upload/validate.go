package upload

import (
	"leafscan/internal/errors"
	"leafscan/pkg/types"
)

// MaxFileSize is the largest accepted upload, 10 MiB.
const MaxFileSize int64 = 10 * 1024 * 1024

// Notification texts
const (
	MsgLoaded   = `✓ Image loaded successfully! Click "Analyze with AI" to continue.`
	MsgNotImage = "⚠️ Please upload an image file (JPG, PNG, GIF)"
	MsgTooLarge = "⚠️ Image size should be less than 10MB"
	MsgRemoved  = "ℹ️ Image removed. Upload a new one to analyze."
	MsgNoFile   = "⚠️ Please upload an image first"
	MsgComplete = "✓ Analysis complete!"
	MsgFailed   = "❌ Error analyzing image. Please try again."
)

// Validate rejects files whose media type is not an image, then files larger
// than MaxFileSize. These checks are client-side only; the service must
// validate again.
func Validate(file *types.UploadedFile) error {
	if file == nil {
		return errors.ErrNoFileLoaded
	}
	if !file.IsImage() {
		return errors.NewValidationError("not an image", errors.InvalidMediaType).
			WithFile(file.MediaType, file.Size)
	}
	if file.Size > MaxFileSize {
		return errors.NewValidationError("image exceeds 10MB", errors.FileTooLarge).
			WithFile(file.MediaType, file.Size)
	}
	return nil
}

// MessageFor returns the notification text for a validation error
func MessageFor(err error) string {
	switch errors.KindOf(err) {
	case errors.InvalidMediaType:
		return MsgNotImage
	case errors.FileTooLarge:
		return MsgTooLarge
	case errors.NoFileLoaded:
		return MsgNoFile
	}
	return MsgFailed
}
