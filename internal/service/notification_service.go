package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/lostfound-service/internal/config"
	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/events"
	"github.com/spec-kit/lostfound-service/internal/repository"
	apperrors "github.com/spec-kit/lostfound-service/pkg/util/errorutil"
)

const webhookTimeout = 5 * time.Second

// NotificationService turns domain events into per-user notifications.
type NotificationService struct {
	dispatcher    events.Dispatcher
	notifications repository.NotificationRepository
	logger        *zap.Logger
	cfg           config.NotificationConfig
	metrics       Metrics
	httpClient    *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifications repository.NotificationRepository, logger *zap.Logger, cfg config.NotificationConfig, metrics Metrics) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &NotificationService{
		dispatcher:    dispatcher,
		notifications: notifications,
		logger:        logger,
		cfg:           cfg,
		metrics:       metrics,
		httpClient:    &http.Client{Timeout: webhookTimeout},
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventItemReported, n.handleItemReported)
	n.dispatcher.Subscribe(events.EventItemStatusChanged, n.handleItemStatusChanged)
	n.dispatcher.Subscribe(events.EventItemClaimed, n.handleItemClaimed)
	n.dispatcher.Subscribe(events.EventMatchFound, n.handleMatchFound)
	n.dispatcher.Subscribe(events.EventMessageSent, n.handleMessageSent)
}

func (n *NotificationService) handleItemReported(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ItemReportedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	kind := "lost"
	if payload.Type == domain.ItemTypeFound {
		kind = "found"
	}
	msg := fmt.Sprintf("Your %s item report \"%s\" was received and is awaiting review", kind, payload.Description)
	return n.create(ctx, payload.ReporterID, event.ItemID, domain.NotificationInfo, msg)
}

func (n *NotificationService) handleItemStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ItemStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	msg := fmt.Sprintf("The status of \"%s\" changed from %s to %s", payload.Description, payload.OldStatus, payload.NewStatus)
	return n.create(ctx, payload.ReporterID, event.ItemID, domain.NotificationUpdate, msg)
}

func (n *NotificationService) handleItemClaimed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ItemClaimedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	if payload.ReporterID == payload.ClaimedBy {
		return nil
	}
	msg := fmt.Sprintf("The item \"%s\" has been claimed", payload.Description)
	return n.create(ctx, payload.ReporterID, event.ItemID, domain.NotificationUpdate, msg)
}

func (n *NotificationService) handleMatchFound(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MatchFoundPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	msg := fmt.Sprintf("A found item may match what you lost: \"%s\"", payload.FoundDescription)
	if err := n.create(ctx, payload.LostOwnerID, payload.FoundItemID, domain.NotificationMatch, msg); err != nil {
		return err
	}
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleMessageSent(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MessageSentPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	msg := fmt.Sprintf("New message about one of your items: %s", payload.BodyPreview)
	return n.create(ctx, payload.RecipientID, event.ItemID, domain.NotificationInfo, msg)
}

func (n *NotificationService) create(ctx context.Context, userID, itemID int64, kind domain.NotificationType, message string) error {
	notification := &domain.Notification{
		Message: message,
		Type:    kind,
		UserID:  userID,
		ItemID:  itemID,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		return err
	}
	n.metrics.RecordNotification(string(kind))
	n.logger.Debug("notification stored",
		zap.Int64("user_id", userID),
		zap.Int64("item_id", itemID),
		zap.String("type", string(kind)))
	return nil
}

// sendWebhook forwards match events to the configured endpoint. Failures
// are logged only.
func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("encode webhook payload", zap.Error(err))
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.logger.Warn("build webhook request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", zap.String("url", url), zap.Error(err))
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		n.logger.Warn("webhook rejected", zap.String("url", url), zap.Int("status", resp.StatusCode))
	}
}

// ListForUser returns the user's notifications, newest first.
func (n *NotificationService) ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	list, err := n.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// UnreadCount returns how many notifications the user has not read.
func (n *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	count, err := n.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	if err := n.notifications.MarkRead(ctx, userID, id); err != nil {
		return notFound(err, apperrors.NewNotFound("notification", map[string]any{"notification_id": id}))
	}
	return nil
}

// MarkAllRead marks every notification of the user as read.
func (n *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return apperrors.MapError(n.notifications.MarkAllRead(ctx, userID))
}
