package memory

import (
	"context"
	"sync"

	"github.com/aescanero/demo-backend/pkg/domain"
	"github.com/aescanero/demo-backend/pkg/ports"
	"go.uber.org/zap"
)

// EventBus implements ports.EventBus using in-memory handlers
type EventBus struct {
	subscribers map[string]map[uint64]ports.EventHandler
	nextID      uint64
	logger      *zap.Logger
	mu          sync.RWMutex
	// deliverMu keeps publishes from interleaving
	deliverMu sync.Mutex
}

var _ ports.EventBus = (*EventBus)(nil)

// NewEventBus creates a new in-memory event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string]map[uint64]ports.EventHandler),
		logger:      logger,
	}
}

// Publish delivers an event to all subscribers of a topic, in publish order.
// Handlers run on the publisher's goroutine and must not block.
func (e *EventBus) Publish(ctx context.Context, topic string, event domain.Event) error {
	e.mu.RLock()
	handlers := make([]ports.EventHandler, 0, len(e.subscribers[topic]))
	for _, h := range e.subscribers[topic] {
		handlers = append(handlers, h)
	}
	e.mu.RUnlock()

	e.deliverMu.Lock()
	defer e.deliverMu.Unlock()

	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			e.logger.Debug("event handler error",
				zap.String("topic", topic),
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}

	return nil
}

// Subscribe registers handler until ctx is cancelled
func (e *EventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	e.mu.Lock()
	if e.subscribers[topic] == nil {
		e.subscribers[topic] = make(map[uint64]ports.EventHandler)
	}
	e.nextID++
	id := e.nextID
	e.subscribers[topic][id] = handler
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.unsubscribe(topic, id)
	}()

	return nil
}

// Close drops all subscribers
func (e *EventBus) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.subscribers = make(map[string]map[uint64]ports.EventHandler)
	return nil
}

// subscriberCount is used by tests
func (e *EventBus) subscriberCount(topic string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.subscribers[topic])
}

func (e *EventBus) unsubscribe(topic string, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.subscribers[topic], id)
	if len(e.subscribers[topic]) == 0 {
		delete(e.subscribers, topic)
	}
}
