package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/repository"
)

// UserRepository is an in-memory repository.UserRepository. Emails are
// unique case-insensitively.
type UserRepository struct {
	mu     sync.RWMutex
	users  map[int64]domain.User
	nextID int64
	now    func() time.Time
}

// NewUserRepository returns an empty repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]domain.User), nextID: 1, now: time.Now}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if r.emailTaken(user.Email, 0) {
		return repository.ErrDuplicate
	}
	if user.ID == 0 {
		user.ID = r.nextID
	} else if _, exists := r.users[user.ID]; exists {
		return repository.ErrDuplicate
	}
	if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	now := r.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if r.emailTaken(user.Email, user.ID) {
		return repository.ErrDuplicate
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = r.now()
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneUser(user)
	return &out, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			out := cloneUser(user)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

// List returns every user ordered by id.
func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, cloneUser(user))
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// emailTaken must be called with the lock held.
func (r *UserRepository) emailTaken(email string, except int64) bool {
	for id, user := range r.users {
		if id != except && user.Email == email {
			return true
		}
	}
	return false
}

func cloneUser(user domain.User) domain.User {
	if user.LastLogin != nil {
		t := *user.LastLogin
		user.LastLogin = &t
	}
	return user
}
