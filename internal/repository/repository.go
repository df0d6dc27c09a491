// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage is the concrete implementation; tests
// substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/storefront/internal/model"
)

// ListOptions controls pagination for catalog listings.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository manages user records.
type UserRepository interface {
	// CreateUser inserts a new user; the repository fills ID and timestamps.
	// Returns apperror.ErrConflict if the email is already registered.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGoogle links or creates a user from a Google profile, keyed by
	// email: an existing account (password or Google) gains the Google ID
	// and fresh profile fields; a missing one is created.
	UpsertGoogle(ctx context.Context, user *model.User) error
}

// CartRepository manages a user's cart lines. Insertion order is preserved
// across all reads.
type CartRepository interface {
	// AddItem inserts the line or, when a line with the same
	// (productID, size) already exists for the user, atomically adds the
	// quantities. Concurrent adds must not lose increments.
	AddItem(ctx context.Context, userID string, item *model.CartItem) error
	// UpdateQuantity sets the quantity of the user's line. Returns
	// apperror.ErrNotFound if the line does not belong to the user.
	UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) error
	// RemoveItem deletes the user's line; ErrNotFound if absent.
	RemoveItem(ctx context.Context, userID, lineID string) error
	GetCart(ctx context.Context, userID string) ([]model.CartItem, error)
}

// OrderRepository manages placed orders.
type OrderRepository interface {
	// CreateAndClearCart persists the order (with its item snapshot) and
	// empties the user's cart in a single transaction — either both happen
	// or neither does.
	CreateAndClearCart(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	// ListAll returns every order, newest first, with the owning user's
	// email and username joined in for the admin view.
	ListAll(ctx context.Context) ([]model.Order, error)
	// UpdateStatus sets the order's status; ErrNotFound if absent.
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error
}

// ProductRepository manages the catalog.
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, opts ListOptions) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
}
