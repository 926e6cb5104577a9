package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/repository"
)

// MessageRepository is an in-memory repository.MessageRepository.
type MessageRepository struct {
	mu       sync.RWMutex
	messages map[int64]domain.ContactMessage
	nextID   int64
	now      func() time.Time
}

// NewMessageRepository returns an empty repository.
func NewMessageRepository() *MessageRepository {
	return &MessageRepository{messages: make(map[int64]domain.ContactMessage), nextID: 1, now: time.Now}
}

func (r *MessageRepository) Create(_ context.Context, msg *domain.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg.ID = r.nextID
	r.nextID++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = r.now()
	}
	r.messages[msg.ID] = *msg
	return nil
}

func (r *MessageRepository) GetByID(_ context.Context, id int64) (*domain.ContactMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msg, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &msg, nil
}

func (r *MessageRepository) List(_ context.Context, filter repository.MessageFilter) ([]domain.ContactMessage, error) {
	r.mu.RLock()
	result := []domain.ContactMessage{}
	for _, msg := range r.messages {
		if filter.RecipientID != nil && msg.RecipientID != *filter.RecipientID {
			continue
		}
		if filter.SenderID != nil && msg.SenderID != *filter.SenderID {
			continue
		}
		if filter.Status != nil && msg.Status != *filter.Status {
			continue
		}
		result = append(result, msg)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *MessageRepository) UpdateStatus(_ context.Context, id int64, status domain.MessageStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, ok := r.messages[id]
	if !ok {
		return repository.ErrNotFound
	}
	msg.Status = status
	r.messages[id] = msg
	return nil
}

func (r *MessageRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.messages, id)
	return nil
}
