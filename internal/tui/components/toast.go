package components

import (
	"leafscan/internal/tui/styles"
	"leafscan/pkg/types"
)

// RenderToast renders the visible notification, or an empty line
func RenderToast(s styles.Styles, n types.Notification, visible bool) string {
	if !visible {
		return ""
	}
	return s.Toast(n.Kind).Render(n.Message)
}
