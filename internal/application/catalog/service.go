package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/aescanero/demo-backend/pkg/domain"
	"github.com/aescanero/demo-backend/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	kindUser = "user"
	kindItem = "item"
)

// Service exposes the user and item collections
type Service struct {
	store    ports.Store
	eventBus ports.EventBus
	metrics  ports.MetricsCollector
	logger   *zap.Logger
}

// NewService creates a new catalog service
func NewService(
	store ports.Store,
	eventBus ports.EventBus,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:    store,
		eventBus: eventBus,
		metrics:  metrics,
		logger:   logger,
	}
}

// Seed inserts the default users and items into empty collections
func (s *Service) Seed(ctx context.Context) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		for _, u := range domain.SeedUsers() {
			if _, err := s.store.CreateUser(ctx, u); err != nil {
				return fmt.Errorf("failed to seed user: %w", err)
			}
		}
	}

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}
	if len(items) == 0 {
		for _, it := range domain.SeedItems() {
			if _, err := s.store.CreateItem(ctx, it); err != nil {
				return fmt.Errorf("failed to seed item: %w", err)
			}
		}
	}

	s.refreshSizes(ctx)
	s.logger.Info("catalog seeded")
	return nil
}

// ListUsers returns all users in insertion order
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

// GetUser returns a user or an error wrapping ports.ErrNotFound
func (s *Service) GetUser(ctx context.Context, id int) (*domain.User, error) {
	return s.store.GetUser(ctx, id)
}

// CreateUser applies defaults, stores the user and announces it
func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	user, err := s.store.CreateUser(ctx, req.ToUser())
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", zap.Int("user_id", user.ID))
	s.afterCreate(ctx, kindUser, domain.EventTypeUserCreated, user)
	return user, nil
}

// ListItems returns all items in insertion order
func (s *Service) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.store.ListItems(ctx)
}

// GetItem returns an item or an error wrapping ports.ErrNotFound
func (s *Service) GetItem(ctx context.Context, id int) (*domain.Item, error) {
	return s.store.GetItem(ctx, id)
}

// CreateItem applies defaults, stores the item and announces it
func (s *Service) CreateItem(ctx context.Context, req domain.CreateItemRequest) (domain.Item, error) {
	item, err := s.store.CreateItem(ctx, req.ToItem())
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Info("item created", zap.Int("item_id", item.ID))
	s.afterCreate(ctx, kindItem, domain.EventTypeItemCreated, item)
	return item, nil
}

// afterCreate records metrics and publishes the creation event.
// Publish failures are logged only; the record already exists.
func (s *Service) afterCreate(ctx context.Context, kind string, eventType domain.EventType, record interface{}) {
	s.metrics.IncEntitiesCreated(kind)
	s.refreshSizes(ctx)

	if s.eventBus == nil {
		return
	}

	event := domain.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      record,
	}

	status := "ok"
	if err := s.eventBus.Publish(ctx, ports.TopicCatalog, event); err != nil {
		status = "error"
		s.logger.Error("failed to publish event",
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
	s.metrics.IncEventsPublished(string(eventType), status)
}

func (s *Service) refreshSizes(ctx context.Context) {
	if users, err := s.store.ListUsers(ctx); err == nil {
		s.metrics.SetStoreSize(kindUser, len(users))
	}
	if items, err := s.store.ListItems(ctx); err == nil {
		s.metrics.SetStoreSize(kindItem, len(items))
	}
}
