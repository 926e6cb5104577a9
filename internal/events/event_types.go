package events

import (
	"time"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventItemReported      EventType = "item_reported"
	EventItemStatusChanged EventType = "item_status_changed"
	EventItemClaimed       EventType = "item_claimed"
	EventItemDeleted       EventType = "item_deleted"
	EventMatchFound        EventType = "match_found"
	EventMessageSent       EventType = "message_sent"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventItemReported,
	EventItemStatusChanged,
	EventItemClaimed,
	EventItemDeleted,
	EventMatchFound,
	EventMessageSent,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ItemID    int64     `json:"item_id"`
	ActorID   int64     `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// ItemReportedPayload payload.
type ItemReportedPayload struct {
	ReporterID  int64           `json:"reporter_id"`
	Type        domain.ItemType `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// ItemStatusChangedPayload payload.
type ItemStatusChangedPayload struct {
	ReporterID  int64             `json:"reporter_id"`
	Description string            `json:"description"`
	OldStatus   domain.ItemStatus `json:"old_status"`
	NewStatus   domain.ItemStatus `json:"new_status"`
}

// ItemClaimedPayload payload.
type ItemClaimedPayload struct {
	ReporterID  int64  `json:"reporter_id"`
	ClaimedBy   int64  `json:"claimed_by"`
	Description string `json:"description"`
}

// ItemDeletedPayload payload.
type ItemDeletedPayload struct {
	ReporterID int64 `json:"reporter_id"`
	ByAdmin    bool  `json:"by_admin"`
}

// MatchFoundPayload carries both sides of a potential match. The event's
// ItemID is the Found item.
type MatchFoundPayload struct {
	LostItemID       int64  `json:"lost_item_id"`
	FoundItemID      int64  `json:"found_item_id"`
	LostOwnerID      int64  `json:"lost_owner_id"`
	FoundDescription string `json:"found_description"`
}

// MessageSentPayload payload.
type MessageSentPayload struct {
	MessageID   int64  `json:"message_id"`
	SenderID    int64  `json:"sender_id"`
	RecipientID int64  `json:"recipient_id"`
	BodyPreview string `json:"body_preview"`
}
