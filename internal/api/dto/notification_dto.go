package dto

import (
	"time"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

// NotificationResponse is a notification as sent to its recipient.
type NotificationResponse struct {
	ID        int64                   `json:"id"`
	Message   string                  `json:"message"`
	Type      domain.NotificationType `json:"type"`
	UserID    int64                   `json:"userId"`
	ItemID    int64                   `json:"itemId"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"createdAt"`
}

// NewNotificationList converts notifications.
func NewNotificationList(list []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			Type:      n.Type,
			UserID:    n.UserID,
			ItemID:    n.ItemID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

// ContactRequest sends a message about an item.
type ContactRequest struct {
	ItemID  int64  `json:"itemId"`
	Message string `json:"message"`
}

// MessageResponse is a stored contact message.
type MessageResponse struct {
	ID          int64                `json:"id"`
	ItemID      int64                `json:"itemId"`
	SenderID    int64                `json:"senderId"`
	RecipientID int64                `json:"recipientId"`
	Message     string               `json:"message"`
	Status      domain.MessageStatus `json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// NewMessageResponse converts a contact message.
func NewMessageResponse(m *domain.ContactMessage) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		ItemID:      m.ItemID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Message:     m.Body,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
	}
}

// NewMessageList converts contact messages.
func NewMessageList(list []domain.ContactMessage) []MessageResponse {
	out := make([]MessageResponse, 0, len(list))
	for i := range list {
		out = append(out, NewMessageResponse(&list[i]))
	}
	return out
}
