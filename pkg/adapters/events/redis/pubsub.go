package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aescanero/demo-backend/pkg/domain"
	"github.com/aescanero/demo-backend/pkg/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PubSubEventBus implements EventBus using Redis Pub/Sub.
// Delivery is at-most-once; events published while nobody listens are lost.
type PubSubEventBus struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

var _ ports.EventBus = (*PubSubEventBus)(nil)

// NewPubSubEventBus creates a new Redis Pub/Sub event bus
func NewPubSubEventBus(client *redis.Client, prefix string, logger *zap.Logger) *PubSubEventBus {
	return &PubSubEventBus{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

// Publish publishes an event on the topic channel
func (e *PubSubEventBus) Publish(ctx context.Context, topic string, event domain.Event) error {
	channel := e.channel(topic)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := e.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	e.logger.Debug("event published",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("channel", channel))

	return nil
}

// Subscribe listens on the topic channel until ctx is cancelled
func (e *PubSubEventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	channel := e.channel(topic)

	sub := e.client.Subscribe(ctx, channel)
	// Wait for the subscription confirmation so publishes after return are seen
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	e.logger.Info("subscribed to event channel", zap.String("channel", channel))

	go e.readChannel(ctx, sub, handler)

	return nil
}

func (e *PubSubEventBus) readChannel(ctx context.Context, sub *redis.PubSub, handler ports.EventHandler) {
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			e.processMessage(ctx, msg, handler)
		}
	}
}

func (e *PubSubEventBus) processMessage(ctx context.Context, msg *redis.Message, handler ports.EventHandler) {
	var event domain.Event
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		e.logger.Error("failed to unmarshal event",
			zap.String("channel", msg.Channel),
			zap.Error(err))
		return
	}

	if err := handler(ctx, event); err != nil {
		e.logger.Error("handler error",
			zap.String("channel", msg.Channel),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

// Close is a no-op; subscriptions close with their contexts and the
// Redis client is closed by the caller
func (e *PubSubEventBus) Close() error {
	return nil
}

func (e *PubSubEventBus) channel(topic string) string {
	return fmt.Sprintf("%s:events:%s", e.prefix, topic)
}
