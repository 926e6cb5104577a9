package domain

import "time"

// NotificationType classifies notifications.
type NotificationType string

const (
	NotificationInfo   NotificationType = "info"
	NotificationUpdate NotificationType = "update"
	NotificationMatch  NotificationType = "match"
)

// Notification is a message addressed to one user about one item.
type Notification struct {
	ID        int64
	Message   string
	Type      NotificationType
	UserID    int64
	ItemID    int64
	Read      bool
	CreatedAt time.Time
}
