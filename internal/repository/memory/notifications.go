package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/repository"
)

// NotificationRepository is an in-memory repository.NotificationRepository.
type NotificationRepository struct {
	mu            sync.RWMutex
	notifications []domain.Notification
	nextID        int64
	now           func() time.Time
}

// NewNotificationRepository returns an empty repository.
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{nextID: 1, now: time.Now}
}

func (r *NotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID = r.nextID
	r.nextID++
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.now()
	}
	r.notifications = append(r.notifications, *n)
	return nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepository) ListByUser(_ context.Context, userID int64) ([]domain.Notification, error) {
	r.mu.RLock()
	result := []domain.Notification{}
	for _, n := range r.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, userID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].UserID == userID {
			r.notifications[i].Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.notifications {
		if r.notifications[i].UserID == userID {
			r.notifications[i].Read = true
		}
	}
	return nil
}
