// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept primitives and domain types, never HTTP types, and they
// return apperror-wrapped domain errors, never status codes. Each service
// takes its repositories as interfaces so tests can inject in-memory fakes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

// CartService handles the per-user cart: adding, updating, removing and
// reading lines.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCartService creates a CartService.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *slog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// AddItem puts quantity units of a product (in the given size) into the
// user's cart and returns the updated cart.
//
// The line stores a snapshot of the product's name, price, and first image
// as they are RIGHT NOW — later catalog edits don't reprice carts. If the
// user already has a line for the same (product, size), the repository
// merges quantities atomically instead of appending a duplicate.
//
// Size rules: sized products require a size from their size set (compared
// case-insensitively, stored upper-cased); for unsized products any
// submitted size is ignored.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int, size string) ([]model.CartItem, error) {
	if quantity < 1 {
		return nil, apperror.ValidationFailed("quantity", "quantity must be at least 1")
	}

	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err // already a proper apperror on missing product
	}

	size = strings.ToUpper(strings.TrimSpace(size))
	if len(product.Sizes) > 0 {
		if size == "" {
			return nil, apperror.ValidationFailed("size", "size is required for this product")
		}
		if !product.HasSize(size) {
			return nil, apperror.ValidationFailed("size",
				fmt.Sprintf("size %q is not available for this product", size))
		}
	} else {
		size = ""
	}

	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0]
	}

	item := &model.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     image,
		Quantity:  quantity,
		Size:      size,
	}

	if err := s.carts.AddItem(ctx, userID, item); err != nil {
		s.logger.Error("failed to add cart item",
			slog.String("userID", userID),
			slog.String("productID", productID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding cart item: %w", err)
	}

	s.logger.Info("cart item added",
		slog.String("userID", userID),
		slog.String("productID", productID),
		slog.Int("quantity", quantity),
		slog.String("size", size),
	)

	return s.carts.GetCart(ctx, userID)
}

// UpdateQuantity sets a line's quantity and returns the updated cart.
//
// A quantity below 1 is an implicit removal, not an error — the storefront
// UI's "minus" button drives quantity to 0 to delete a line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) ([]model.CartItem, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, userID, lineID)
	}

	if err := s.carts.UpdateQuantity(ctx, userID, lineID, quantity); err != nil {
		return nil, err
	}

	return s.carts.GetCart(ctx, userID)
}

// RemoveItem deletes a line from the user's cart and returns the updated
// cart. Returns apperror.ErrNotFound if the line isn't in this user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, lineID string) ([]model.CartItem, error) {
	if err := s.carts.RemoveItem(ctx, userID, lineID); err != nil {
		return nil, err
	}

	s.logger.Info("cart item removed",
		slog.String("userID", userID),
		slog.String("lineID", lineID),
	)

	return s.carts.GetCart(ctx, userID)
}

// Get returns the user's cart, insertion order preserved.
func (s *CartService) Get(ctx context.Context, userID string) ([]model.CartItem, error) {
	return s.carts.GetCart(ctx, userID)
}
