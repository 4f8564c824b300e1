package ports

import (
	"context"

	"github.com/aescanero/demo-backend/pkg/domain"
)

// TopicCatalog carries record creation events
const TopicCatalog = "catalog.events"

// EventHandler processes a single event
type EventHandler func(ctx context.Context, event domain.Event) error

// EventBus publishes and delivers domain events.
// Subscriptions end when the subscribe context is cancelled.
type EventBus interface {
	Publish(ctx context.Context, topic string, event domain.Event) error
	Subscribe(ctx context.Context, topic string, handler EventHandler) error
	Close() error
}
