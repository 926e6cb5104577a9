package memory

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/repository"
)

// PasswordResetRepository is an in-memory repository.PasswordResetRepository.
type PasswordResetRepository struct {
	mu      sync.Mutex
	byToken map[string]*domain.PasswordReset
	nextID  int64
	now     func() time.Time
}

// NewPasswordResetRepository returns an empty repository.
func NewPasswordResetRepository() *PasswordResetRepository {
	return &PasswordResetRepository{byToken: make(map[string]*domain.PasswordReset), nextID: 1, now: time.Now}
}

func (r *PasswordResetRepository) Create(_ context.Context, token *domain.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byToken[token.Token]; exists {
		return repository.ErrDuplicate
	}
	token.ID = r.nextID
	r.nextID++
	token.CreatedAt = r.now()
	stored := *token
	r.byToken[token.Token] = &stored
	return nil
}

func (r *PasswordResetRepository) GetByToken(_ context.Context, token string) (*domain.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byToken[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *stored
	return &out, nil
}

func (r *PasswordResetRepository) MarkUsed(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.byToken {
		if stored.ID == id && stored.UsedAt == nil {
			now := r.now()
			stored.UsedAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}
