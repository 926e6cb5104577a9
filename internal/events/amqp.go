package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// amqpChannel is the subset of *amqp.Channel the publisher needs.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher forwards domain events to a RabbitMQ topic exchange so
// other services can react to item activity.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	logger   *zap.Logger
}

// NewAMQPPublisher dials RabbitMQ and declares the topic exchange.
func NewAMQPPublisher(url, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info("rabbitmq publisher initialized", zap.String("exchange", exchange))
	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange, logger: logger}, nil
}

// RoutingKey maps an event type to its topic, e.g. item_reported -> item.reported.
func RoutingKey(eventType EventType) string {
	return strings.ReplaceAll(string(eventType), "_", ".")
}

// Handle publishes the event as persistent JSON.
func (p *AMQPPublisher) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	key := RoutingKey(event.Type)
	err = p.channel.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    event.Timestamp,
		MessageId:    event.ID,
		Type:         string(event.Type),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}

	p.logger.Debug("event published",
		zap.String("routing_key", key),
		zap.String("exchange", p.exchange),
		zap.Int("body_size", len(body)))
	return nil
}

// Register subscribes the publisher to every event type.
func (p *AMQPPublisher) Register(dispatcher Dispatcher) {
	for _, eventType := range AllEventTypes {
		dispatcher.Subscribe(eventType, p.Handle)
	}
}

// HealthCheck verifies the connection is still open.
func (p *AMQPPublisher) HealthCheck() error {
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Warn("close rabbitmq channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
