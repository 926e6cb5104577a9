package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())
	var calls []string
	d.Subscribe(EventItemReported, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventItemReported, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventItemDeleted, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventItemReported}))
	assert.Equal(t, []string{"first", "second"}, calls)
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	deadline bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	_, f.deadline = ctx.Deadline()
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error { return nil }

func TestAMQPPublisherHandle(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{channel: ch, exchange: "lostfound.events", logger: zap.NewNop()}

	event := Event{
		ID:        "evt-1",
		Type:      EventMatchFound,
		ItemID:    2,
		Timestamp: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		Payload:   MatchFoundPayload{LostItemID: 1, FoundItemID: 2, LostOwnerID: 2},
	}
	require.NoError(t, p.Handle(context.Background(), event))

	assert.Equal(t, "lostfound.events", ch.exchange)
	assert.Equal(t, "match.found", ch.key)
	assert.True(t, ch.deadline)
	assert.Equal(t, "evt-1", ch.msg.MessageId)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "match_found", decoded["type"])
	assert.Equal(t, float64(1), decoded["payload"].(map[string]any)["lost_item_id"])
}

func TestAMQPPublisherHandleError(t *testing.T) {
	p := &AMQPPublisher{channel: &fakeChannel{err: errors.New("channel closed")}, exchange: "x", logger: zap.NewNop()}
	err := p.Handle(context.Background(), Event{Type: EventItemDeleted})
	assert.ErrorContains(t, err, "item.deleted")
}

func TestAMQPPublisherRegister(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{channel: ch, exchange: "x", logger: zap.NewNop()}
	d := NewInMemoryDispatcher(nil)
	p.Register(d)

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventMessageSent}))
	assert.Equal(t, "message.sent", ch.key)
	assert.Error(t, p.HealthCheck())
}
