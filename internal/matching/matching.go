// Package matching pairs Lost items with Found items whose descriptions overlap.
package matching

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

// DefaultThreshold is the similarity a candidate must exceed to be a match.
const DefaultThreshold = 0.7

// Notifier receives one call per proposed match.
type Notifier interface {
	NotifyPotentialMatch(ctx context.Context, lost, found domain.Item) error
}

// Similarity counts the words of a that also occur in b and divides by the
// word count of the longer description. Comparison is case-insensitive and
// words are split on whitespace. Duplicated words in a are counted each time,
// so Similarity(a, b) may differ from Similarity(b, a).
func Similarity(a, b string) float64 {
	words1 := strings.Fields(strings.ToLower(a))
	words2 := strings.Fields(strings.ToLower(b))

	longest := len(words1)
	if len(words2) > longest {
		longest = len(words2)
	}
	if longest == 0 {
		return 0
	}

	present := make(map[string]struct{}, len(words2))
	for _, w := range words2 {
		present[w] = struct{}{}
	}

	common := 0
	for _, w := range words1 {
		if _, ok := present[w]; ok {
			common++
		}
	}
	return float64(common) / float64(longest)
}

// IsCandidate reports whether other may be proposed as a match for item,
// ignoring description similarity.
func IsCandidate(item, other domain.Item) bool {
	return other.ID != item.ID &&
		other.Type != item.Type &&
		other.Category == item.Category
}

// Engine evaluates candidates and notifies owners of Lost items.
type Engine struct {
	threshold float64
	notifier  Notifier
	logger    *zap.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// NewEngine builds an engine. notifier may be nil.
func NewEngine(notifier Notifier, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{threshold: DefaultThreshold, notifier: notifier, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold returns the configured similarity threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// FindPotentialMatches returns the candidates that plausibly pair with item.
// For each match the owner of the Lost side is notified. Inputs are not
// modified.
func (e *Engine) FindPotentialMatches(ctx context.Context, item domain.Item, candidates []domain.Item) []domain.Item {
	matches := e.Match(item, candidates)
	for _, match := range matches {
		lost, found := item, match
		if item.Type != domain.ItemTypeLost {
			lost, found = match, item
		}
		e.notify(ctx, lost, found)
	}
	return matches
}

// Match is FindPotentialMatches without notifications.
func (e *Engine) Match(item domain.Item, candidates []domain.Item) []domain.Item {
	matches := make([]domain.Item, 0)
	for _, candidate := range candidates {
		if !IsCandidate(item, candidate) {
			continue
		}
		if Similarity(item.Description, candidate.Description) <= e.threshold {
			continue
		}
		matches = append(matches, candidate)
	}
	return matches
}

func (e *Engine) notify(ctx context.Context, lost, found domain.Item) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.NotifyPotentialMatch(ctx, lost, found); err != nil {
		e.logger.Warn("match notification failed",
			zap.Int64("lost_item_id", lost.ID),
			zap.Int64("found_item_id", found.ID),
			zap.Error(err))
	}
}
