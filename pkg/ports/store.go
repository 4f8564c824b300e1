package ports

import (
	"context"
	"errors"

	"github.com/aescanero/demo-backend/pkg/domain"
)

// Store errors
var (
	ErrNotFound = errors.New("record not found")
)

// Store holds the user and item collections.
// Listing order is insertion order; ids are assigned on create.
type Store interface {
	// ListUsers returns all users in insertion order.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// GetUser returns the first user with the given id or ErrNotFound.
	GetUser(ctx context.Context, id int) (*domain.User, error)

	// CreateUser assigns the next id (max+1, or 1 when empty) and appends.
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)

	ListItems(ctx context.Context) ([]domain.Item, error)
	GetItem(ctx context.Context, id int) (*domain.Item, error)
	CreateItem(ctx context.Context, item domain.Item) (domain.Item, error)
}
