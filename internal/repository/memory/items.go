package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/repository"
	"github.com/spec-kit/lostfound-service/internal/search"
)

// ItemRepository is an in-memory repository.ItemRepository.
type ItemRepository struct {
	mu     sync.RWMutex
	items  map[int64]domain.Item
	nextID int64
	now    func() time.Time
}

// NewItemRepository returns an empty repository.
func NewItemRepository() *ItemRepository {
	return &ItemRepository{items: make(map[int64]domain.Item), nextID: 1, now: time.Now}
}

func (r *ItemRepository) Create(_ context.Context, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == 0 {
		item.ID = r.nextID
	} else if _, exists := r.items[item.ID]; exists {
		return repository.ErrDuplicate
	}
	if item.ID >= r.nextID {
		r.nextID = item.ID + 1
	}
	now := r.now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	r.items[item.ID] = cloneItem(*item)
	return nil
}

func (r *ItemRepository) Update(_ context.Context, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[item.ID]
	if !ok {
		return repository.ErrNotFound
	}
	item.CreatedAt = current.CreatedAt
	item.ReportedByUserID = current.ReportedByUserID
	item.UpdatedAt = r.now()
	r.items[item.ID] = cloneItem(*item)
	return nil
}

func (r *ItemRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ItemRepository) Claim(_ context.Context, id, claimerID int64, at time.Time) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if item.Status == domain.ItemStatusClaimed || item.Status == domain.ItemStatusReturned {
		return nil, repository.ErrConflict
	}
	item.Status = domain.ItemStatusClaimed
	item.ClaimedByUserID = &claimerID
	item.ClaimedDate = &at
	item.UpdatedAt = r.now()
	r.items[id] = cloneItem(item)

	out := cloneItem(item)
	return &out, nil
}

func (r *ItemRepository) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneItem(item)
	return &out, nil
}

// List returns matching items, newest report first.
func (r *ItemRepository) List(_ context.Context, filter repository.ItemFilter) ([]domain.Item, error) {
	f := search.Filter{
		Statuses:   filter.Statuses,
		Types:      filter.Types,
		Categories: filter.Categories,
		ReportedBy: filter.ReportedBy,
	}

	r.mu.RLock()
	result := make([]domain.Item, 0, len(r.items))
	for _, item := range r.items {
		if f.Match(item) {
			result = append(result, cloneItem(item))
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].ReportedDate.Equal(result[j].ReportedDate) {
			return result[i].ReportedDate.After(result[j].ReportedDate)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func cloneItem(item domain.Item) domain.Item {
	if item.ClaimedByUserID != nil {
		id := *item.ClaimedByUserID
		item.ClaimedByUserID = &id
	}
	if item.ClaimedDate != nil {
		d := *item.ClaimedDate
		item.ClaimedDate = &d
	}
	return item
}
