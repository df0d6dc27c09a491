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

// OrderService converts carts into orders and advances orders through
// their status lifecycle.
type OrderService struct {
	orders repository.OrderRepository
	carts  repository.CartRepository
	logger *slog.Logger
}

// NewOrderService creates an OrderService.
func NewOrderService(orders repository.OrderRepository, carts repository.CartRepository, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		carts:  carts,
		logger: logger,
	}
}

// Place checks out the user's cart: it freezes the current cart lines into
// an immutable order snapshot with status "pending" and clears the cart.
//
// Preconditions, checked in order:
//   - all four address fields and the phone are non-empty → InvalidInput
//   - the cart is non-empty → InvalidState
//
// Validation happens BEFORE any write, so a rejected checkout leaves the
// cart exactly as it was. Creation and cart-clearing then run in one
// repository transaction — a crash between the two cannot leave an order
// without a cleared cart or vice versa.
func (s *OrderService) Place(ctx context.Context, userID string, address model.Address, phone string) (*model.Order, error) {
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	if strings.TrimSpace(phone) == "" {
		return nil, apperror.ValidationFailed("phone", "phone number is required")
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading cart for checkout: %w", err)
	}
	if len(cart) == 0 {
		return nil, apperror.InvalidState("cart is empty")
	}

	// Total is computed once, here, from the cart snapshot — never
	// recomputed from the catalog, never updated afterwards.
	var total float64
	items := make([]model.OrderItem, len(cart))
	for i, line := range cart {
		total += line.Price * float64(line.Quantity)
		items[i] = model.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Image:     line.Image,
			Quantity:  line.Quantity,
			Size:      line.Size,
		}
	}

	order := &model.Order{
		UserID:      userID,
		Items:       items,
		TotalAmount: total,
		Address:     address,
		Phone:       strings.TrimSpace(phone),
		Status:      model.StatusPending,
	}

	if err := s.orders.CreateAndClearCart(ctx, order); err != nil {
		s.logger.Error("failed to place order",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("placing order: %w", err)
	}

	s.logger.Info("order placed",
		slog.String("orderID", order.ID),
		slog.String("userID", userID),
		slog.Float64("total", total),
		slog.Int("items", len(items)),
	)

	return order, nil
}

// UpdateStatus sets an order's status (admin-gated at the route).
//
// Any of the five statuses may be set from any current status — the
// transition graph is deliberately unconstrained. Unknown values are
// rejected before the order is even looked up, so an invalid request
// leaves the stored status untouched.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*model.Order, error) {
	st := model.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, apperror.ValidationFailed("status",
			"status must be one of: pending, processing, shipped, delivered, cancelled")
	}

	if err := s.orders.UpdateStatus(ctx, orderID, st); err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		slog.String("orderID", orderID),
		slog.String("status", string(st)),
	)

	return s.orders.GetOrderByID(ctx, orderID)
}

// ListForUser returns the user's orders, newest first.
// An empty history is reported as NotFound, matching the API contract.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %s: %w", userID, err)
	}
	if len(orders) == 0 {
		return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "no orders found for this user"}
	}
	return orders, nil
}

// ListAll returns every order, newest first, for the admin dashboard.
func (s *OrderService) ListAll(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing all orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "no orders found"}
	}
	return orders, nil
}

func validateAddress(a model.Address) error {
	switch {
	case strings.TrimSpace(a.Street) == "":
		return apperror.ValidationFailed("address.street", "street is required")
	case strings.TrimSpace(a.City) == "":
		return apperror.ValidationFailed("address.city", "city is required")
	case strings.TrimSpace(a.PostalCode) == "":
		return apperror.ValidationFailed("address.postalCode", "postal code is required")
	case strings.TrimSpace(a.Country) == "":
		return apperror.ValidationFailed("address.country", "country is required")
	}
	return nil
}
