package service

import (
	"context"
	"time"

	"github.com/spec-kit/lostfound-service/internal/repository"
	"github.com/spec-kit/lostfound-service/internal/stats"
	apperrors "github.com/spec-kit/lostfound-service/pkg/util/errorutil"
)

// StatsService recomputes statistics from the full item collection.
type StatsService struct {
	items repository.ItemRepository
	now   func() time.Time
}

// NewStatsService constructs the service.
func NewStatsService(items repository.ItemRepository) *StatsService {
	return &StatsService{items: items, now: time.Now}
}

// Summary aggregates every item as of now.
func (s *StatsService) Summary(ctx context.Context) (stats.Summary, error) {
	items, err := s.items.List(ctx, repository.ItemFilter{})
	if err != nil {
		return stats.Summary{}, apperrors.MapError(err)
	}
	return stats.Summarize(items, s.now()), nil
}
