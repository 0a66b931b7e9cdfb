package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// ImageMeta holds the optional metadata extracted from an image while loading it.
type ImageMeta struct {
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	CameraModel string `json:"camera_model,omitempty"`
	TakenAt     string `json:"taken_at,omitempty"`
}

// UploadedFile is the single image held by the upload machine.
type UploadedFile struct {
	Name      string    `json:"name"`
	Path      string    `json:"path,omitempty"`
	MediaType string    `json:"media_type"`
	Size      int64     `json:"size"`
	Data      []byte    `json:"-"`
	Meta      ImageMeta `json:"meta,omitempty"`
}

// HumanSize returns the file size formatted for display, e.g. "2.4 MB".
func (f *UploadedFile) HumanSize() string {
	if f.Size < 0 {
		return humanize.Bytes(0)
	}
	return humanize.Bytes(uint64(f.Size))
}

// IsImage reports whether the declared media type is an image type.
func (f *UploadedFile) IsImage() bool {
	return strings.HasPrefix(f.MediaType, "image/")
}

// Dimensions returns "WxH" when known.
func (f *UploadedFile) Dimensions() string {
	if f.Meta.Width == 0 || f.Meta.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", f.Meta.Width, f.Meta.Height)
}

// ToJSON converts the file description to a JSON string
func (f *UploadedFile) ToJSON() string {
	jsonBytes, _ := json.Marshal(f)
	return string(jsonBytes)
}

// String returns a human-readable representation
func (f *UploadedFile) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File: %s\n", f.Name))
	sb.WriteString(fmt.Sprintf("Type: %s\n", f.MediaType))
	sb.WriteString(fmt.Sprintf("Size: %s\n", f.HumanSize()))
	if dim := f.Dimensions(); dim != "" {
		sb.WriteString(fmt.Sprintf("Dimensions: %s\n", dim))
	}
	if f.Meta.CameraModel != "" {
		sb.WriteString(fmt.Sprintf("Camera: %s\n", f.Meta.CameraModel))
	}
	if f.Meta.TakenAt != "" {
		sb.WriteString(fmt.Sprintf("Taken: %s\n", f.Meta.TakenAt))
	}
	return sb.String()
}
