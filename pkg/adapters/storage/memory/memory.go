package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aescanero/demo-backend/pkg/domain"
	"github.com/aescanero/demo-backend/pkg/ports"
)

// collection keeps records in insertion order with an id index.
// Ids are max+1 so a record appended out of order still gets a fresh id.
type collection[T any] struct {
	records []T
	index   map[int]int // id -> position in records
	maxID   int
	setID   func(*T, int)
}

func newCollection[T any](setID func(*T, int)) *collection[T] {
	return &collection[T]{
		index: make(map[int]int),
		setID: setID,
	}
}

func (c *collection[T]) list() []T {
	out := make([]T, len(c.records))
	copy(out, c.records)
	return out
}

func (c *collection[T]) get(id int) (T, bool) {
	var zero T
	pos, ok := c.index[id]
	if !ok {
		return zero, false
	}
	return c.records[pos], true
}

func (c *collection[T]) add(rec T) T {
	id := c.maxID + 1
	c.setID(&rec, id)
	c.index[id] = len(c.records)
	c.records = append(c.records, rec)
	c.maxID = id
	return rec
}

// Store implements ports.Store with in-memory collections
type Store struct {
	users *collection[domain.User]
	items *collection[domain.Item]
	mu    sync.RWMutex
}

var _ ports.Store = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users: newCollection(func(u *domain.User, id int) { u.ID = id }),
		items: newCollection(func(i *domain.Item, id int) { i.ID = id }),
	}
}

// ListUsers returns a copy of all users in insertion order
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.users.list(), nil
}

// GetUser retrieves a user by id
func (s *Store) GetUser(ctx context.Context, id int) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.get(id)
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ports.ErrNotFound)
	}
	return &u, nil
}

// CreateUser appends a user under the next id; any id on the input is ignored
func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.users.add(user), nil
}

// ListItems returns a copy of all items in insertion order
func (s *Store) ListItems(ctx context.Context) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.items.list(), nil
}

// GetItem retrieves an item by id
func (s *Store) GetItem(ctx context.Context, id int) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items.get(id)
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, ports.ErrNotFound)
	}
	return &it, nil
}

// CreateItem appends an item under the next id
func (s *Store) CreateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.items.add(item), nil
}
