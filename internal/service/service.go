// Package service implements the lost-and-found use cases over the
// repositories.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/lostfound-service/internal/events"
	"github.com/spec-kit/lostfound-service/internal/repository"
	"github.com/spec-kit/lostfound-service/internal/validation"
	apperrors "github.com/spec-kit/lostfound-service/pkg/util/errorutil"
)

// Metrics receives domain counters. *observability.Metrics satisfies it.
type Metrics interface {
	RecordItemReported(itemType string)
	RecordMatches(n int)
	RecordNotification(kind string)
}

type nopMetrics struct{}

func (nopMetrics) RecordItemReported(string) {}
func (nopMetrics) RecordMatches(int)         {}
func (nopMetrics) RecordNotification(string) {}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, now time.Time, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}
	_ = dispatcher.Publish(ctx, event)
}

func validationError(errs validation.Errors) error {
	if len(errs) == 0 {
		return nil
	}
	return apperrors.NewValidationError("validation failed", errs.Details())
}

// notFound maps repository.ErrNotFound to the given domain error.
func notFound(err error, domainErr error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domainErr
	}
	return apperrors.MapError(err)
}

var errNoImageStore = errors.New("image storage not configured")
