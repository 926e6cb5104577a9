package domain

import "time"

// MessageStatus tracks admin handling of contact messages.
type MessageStatus string

const (
	MessageStatusSent     MessageStatus = "sent"
	MessageStatusArchived MessageStatus = "archived"
)

// ContactMessage is sent by a user to the reporter of an item.
type ContactMessage struct {
	ID          int64
	ItemID      int64
	SenderID    int64
	RecipientID int64
	Body        string
	Status      MessageStatus
	CreatedAt   time.Time
}
