package types

import "time"

// NotificationKind selects the notification style.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Notification is a transient on-screen message.
type Notification struct {
	ID        uint64
	Kind      NotificationKind
	Message   string
	ShownAt   time.Time
	ExpiresAt time.Time
}
