package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/lostfound-service/internal/config"
	"github.com/spec-kit/lostfound-service/internal/domain"
	"github.com/spec-kit/lostfound-service/internal/events"
	"github.com/spec-kit/lostfound-service/internal/repository/memory"
	"github.com/spec-kit/lostfound-service/internal/service"
)

func TestStartNotificationWorkerSubscribes(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	notifications := memory.NewNotificationRepository()
	svc := service.NewNotificationService(dispatcher, notifications, zap.NewNop(), config.NotificationConfig{}, nil)

	StartNotificationWorker(dispatcher, svc, nil)

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:   events.EventMatchFound,
		ItemID: 7,
		Payload: events.MatchFoundPayload{
			LostItemID:       3,
			FoundItemID:      7,
			LostOwnerID:      2,
			FoundDescription: "Clé USB",
		},
	}))

	list, err := notifications.ListByUser(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.NotificationMatch, list[0].Type)
	assert.Equal(t, int64(7), list[0].ItemID)
}

func TestStartNotificationWorkerNilSafe(t *testing.T) {
	assert.NotPanics(t, func() { StartNotificationWorker(nil, nil, nil) })
}
