//go:build !nogui

package gui

import (
	"strings"

	"leafscan/internal/render"
	"leafscan/pkg/types"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// imageExtensions are offered by the file dialog
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tif", ".tiff"}

// imageFilter limits the file dialog to image extensions, in either case
func imageFilter() storage.FileFilter {
	exts := make([]string, 0, len(imageExtensions)*2)
	for _, e := range imageExtensions {
		exts = append(exts, e, strings.ToUpper(e))
	}
	return storage.NewExtensionFileFilter(exts)
}

// localPaths keeps the file:// URIs of a drop, in order
func localPaths(uris []fyne.URI) []string {
	var paths []string
	for _, u := range uris {
		if u == nil || u.Scheme() != "file" {
			continue
		}
		paths = append(paths, u.Path())
	}
	return paths
}

// previewText describes the held image below its preview
func previewText(f *render.PreviewView) string {
	parts := []string{f.Name, f.Size, f.MediaType}
	if f.Dimensions != "" {
		parts = append(parts, f.Dimensions)
	}
	text := strings.Join(parts, " · ")
	if f.Camera != "" {
		text += "\nCamera: " + f.Camera
	}
	if f.TakenAt != "" {
		text += "\nTaken: " + f.TakenAt
	}
	return text
}

// bulletList renders list items one per line
func bulletList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return "• " + strings.Join(items, "\n• ")
}

// setVisible shows or hides a region
func setVisible(o fyne.CanvasObject, visible bool) {
	if visible {
		o.Show()
	} else {
		o.Hide()
	}
}

// styleImportance maps a render style onto label importance
func styleImportance(s render.Style) widget.Importance {
	switch s {
	case render.StyleSuccess:
		return widget.SuccessImportance
	case render.StyleWarning:
		return widget.WarningImportance
	case render.StyleDanger:
		return widget.DangerImportance
	}
	return widget.MediumImportance
}

// kindImportance maps a notification kind onto label importance
func kindImportance(k types.NotificationKind) widget.Importance {
	switch k {
	case types.NotifySuccess:
		return widget.SuccessImportance
	case types.NotifyError:
		return widget.DangerImportance
	}
	return widget.MediumImportance
}
