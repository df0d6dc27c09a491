package service

// In-memory fakes for the repository interfaces, shared across the service
// tests in this package. Hand-written fakes (not a mock framework) keep the
// tests dependency-free and easy to read — each method does exactly what
// the interface contract promises, nothing more.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// =========================================================================
// USER REPOSITORY FAKE
// =========================================================================

type fakeUserRepo struct {
	users  map[string]*model.User // keyed by ID
	nextID int
	// set to simulate storage failures
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) UpsertGoogle(_ context.Context, user *model.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			existing.GoogleID = user.GoogleID
			existing.Username = user.Username
			existing.AvatarURL = user.AvatarURL
			if user.IsAdmin {
				existing.IsAdmin = true
			}
			if user.PasswordHash != "" && existing.PasswordHash == "" {
				existing.PasswordHash = user.PasswordHash
			}
			existing.UpdatedAt = time.Now()
			*user = *existing
			return nil
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

// =========================================================================
// PRODUCT REPOSITORY FAKE
// =========================================================================

type fakeProductRepo struct {
	products map[string]*model.Product
	order    []string // insertion order of IDs, newest last
	nextID   int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*model.Product)}
}

func (f *fakeProductRepo) CreateProduct(_ context.Context, product *model.Product) error {
	f.nextID++
	product.ID = fmt.Sprintf("prod-%d", f.nextID)
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	copied := *product
	f.products[product.ID] = &copied
	f.order = append(f.order, product.ID)
	return nil
}

func (f *fakeProductRepo) GetProductByID(_ context.Context, id string) (*model.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperror.NotFound("product", id)
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepo) ListProducts(_ context.Context, opts repository.ListOptions) ([]model.Product, error) {
	// Newest first, like the real repository.
	result := make([]model.Product, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		result = append(result, *f.products[f.order[i]])
	}
	if opts.Offset >= len(result) {
		return []model.Product{}, nil
	}
	result = result[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (f *fakeProductRepo) Update(_ context.Context, product *model.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return apperror.NotFound("product", product.ID)
	}
	product.UpdatedAt = time.Now()
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return apperror.NotFound("product", id)
	}
	delete(f.products, id)
	for i, pid := range f.order {
		if pid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

// =========================================================================
// CART REPOSITORY FAKE
// =========================================================================

type fakeCartRepo struct {
	lines  map[string][]model.CartItem // keyed by user ID, insertion order
	nextID int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{lines: make(map[string][]model.CartItem)}
}

func (f *fakeCartRepo) AddItem(_ context.Context, userID string, item *model.CartItem) error {
	cart := f.lines[userID]
	for i := range cart {
		if cart[i].ProductID == item.ProductID && cart[i].Size == item.Size {
			// Merge, like the SQL upsert does.
			cart[i].Quantity += item.Quantity
			*item = cart[i]
			return nil
		}
	}
	f.nextID++
	item.ID = fmt.Sprintf("line-%d", f.nextID)
	f.lines[userID] = append(cart, *item)
	return nil
}

func (f *fakeCartRepo) UpdateQuantity(_ context.Context, userID, lineID string, quantity int) error {
	cart := f.lines[userID]
	for i := range cart {
		if cart[i].ID == lineID {
			cart[i].Quantity = quantity
			return nil
		}
	}
	return apperror.NotFound("cart item", lineID)
}

func (f *fakeCartRepo) RemoveItem(_ context.Context, userID, lineID string) error {
	cart := f.lines[userID]
	for i := range cart {
		if cart[i].ID == lineID {
			f.lines[userID] = append(cart[:i:i], cart[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("cart item", lineID)
}

func (f *fakeCartRepo) GetCart(_ context.Context, userID string) ([]model.CartItem, error) {
	cart := f.lines[userID]
	result := make([]model.CartItem, len(cart))
	copy(result, cart)
	return result, nil
}

// =========================================================================
// ORDER REPOSITORY FAKE
// =========================================================================

type fakeOrderRepo struct {
	orders []*model.Order // append order = creation order
	carts  *fakeCartRepo  // cleared atomically with order creation
	nextID int
	// set to simulate a failed transaction
	createErr error
}

func newFakeOrderRepo(carts *fakeCartRepo) *fakeOrderRepo {
	return &fakeOrderRepo{carts: carts}
}

func (f *fakeOrderRepo) CreateAndClearCart(_ context.Context, order *model.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	order.ID = fmt.Sprintf("order-%d", f.nextID)
	order.CreatedAt = time.Now()
	copied := *order
	f.orders = append(f.orders, &copied)
	delete(f.carts.lines, order.UserID)
	return nil
}

func (f *fakeOrderRepo) GetOrderByID(_ context.Context, id string) (*model.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			copied := *o
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("order", id)
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID string) ([]model.Order, error) {
	var result []model.Order
	for i := len(f.orders) - 1; i >= 0; i-- {
		if f.orders[i].UserID == userID {
			result = append(result, *f.orders[i])
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) ListAll(_ context.Context) ([]model.Order, error) {
	result := make([]model.Order, 0, len(f.orders))
	for i := len(f.orders) - 1; i >= 0; i-- {
		result = append(result, *f.orders[i])
	}
	return result, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id string, status model.OrderStatus) error {
	for _, o := range f.orders {
		if o.ID == id {
			o.Status = status
			return nil
		}
	}
	return apperror.NotFound("order", id)
}

// =========================================================================
// SHARED FIXTURES
// =========================================================================

// seedProduct inserts a product directly into the fake catalog.
func seedProduct(t *testing.T, repo *fakeProductRepo, name string, price float64, sizes []string) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:     name,
		Price:    price,
		Images:   []string{"https://img.example.com/" + name + ".jpg"},
		Category: "tops",
		Sizes:    sizes,
	}
	if err := repo.CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("seeding product: %v", err)
	}
	return p
}
