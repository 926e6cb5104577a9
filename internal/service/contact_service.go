package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/events"
	"github.com/spec-kit/lostfound-service/internal/repository"
	"github.com/spec-kit/lostfound-service/internal/validation"
	apperrors "github.com/spec-kit/lostfound-service/pkg/util/errorutil"
)

const (
	maxMessageLength = 2000
	previewLength    = 80
)

// ContactService relays messages from users to item reporters.
type ContactService struct {
	messages   repository.MessageRepository
	items      repository.ItemRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ContactDependencies bundles collaborators for the contact service.
type ContactDependencies struct {
	MessageRepo repository.MessageRepository
	ItemRepo    repository.ItemRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewContactService constructs the service.
func NewContactService(deps ContactDependencies) *ContactService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		messages:   deps.MessageRepo,
		items:      deps.ItemRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Send delivers body to the reporter of itemID.
func (s *ContactService) Send(ctx context.Context, senderID, itemID int64, body string) (*domain.ContactMessage, error) {
	body = strings.TrimSpace(body)
	switch {
	case body == "":
		return nil, validationError(validation.Errors{{Field: "message", Message: "message is required"}})
	case utf8.RuneCountInString(body) > maxMessageLength:
		return nil, validationError(validation.Errors{{Field: "message", Message: "message too long"}})
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err, apperrors.NewItemNotFound(itemID))
	}
	if item.ReportedByUserID == senderID {
		return nil, validationError(validation.Errors{{Field: "itemId", Message: "cannot contact yourself"}})
	}
	if _, err := s.users.GetByID(ctx, item.ReportedByUserID); err != nil {
		return nil, notFound(err, apperrors.NewUserNotFound(item.ReportedByUserID))
	}

	msg := &domain.ContactMessage{
		ItemID:      itemID,
		SenderID:    senderID,
		RecipientID: item.ReportedByUserID,
		Body:        body,
		Status:      domain.MessageStatusSent,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, s.now(), events.Event{
		Type:    events.EventMessageSent,
		ItemID:  itemID,
		ActorID: senderID,
		Payload: events.MessageSentPayload{
			MessageID:   msg.ID,
			SenderID:    senderID,
			RecipientID: msg.RecipientID,
			BodyPreview: preview(body),
		},
	})
	s.logger.Info("contact message sent", zap.Int64("message_id", msg.ID), zap.Int64("item_id", itemID))
	return msg, nil
}

// Inbox lists messages received by userID.
func (s *ContactService) Inbox(ctx context.Context, userID int64) ([]domain.ContactMessage, error) {
	list, err := s.messages.List(ctx, repository.MessageFilter{RecipientID: &userID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// List returns every message, optionally narrowed to one status.
func (s *ContactService) List(ctx context.Context, status *domain.MessageStatus) ([]domain.ContactMessage, error) {
	list, err := s.messages.List(ctx, repository.MessageFilter{Status: status})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// Archive hides a message from the active list.
func (s *ContactService) Archive(ctx context.Context, id int64) error {
	if err := s.messages.UpdateStatus(ctx, id, domain.MessageStatusArchived); err != nil {
		return notFound(err, apperrors.NewNotFound("message", map[string]any{"message_id": id}))
	}
	return nil
}

// Delete removes a message.
func (s *ContactService) Delete(ctx context.Context, id int64) error {
	if err := s.messages.Delete(ctx, id); err != nil {
		return notFound(err, apperrors.NewNotFound("message", map[string]any{"message_id": id}))
	}
	return nil
}

func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLength {
		return body
	}
	return string(runes[:previewLength]) + "…"
}
