package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/auth"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/service"
)

// OrderHandler exposes checkout and the order lifecycle.
//
// Customer routes (RequireUser): place order, list own orders.
// Admin routes (RequireUser + RequireAdmin): list all orders, update status.
type OrderHandler struct {
	orders *service.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orders *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type placeOrderRequest struct {
	Address model.Address `json:"address"`
	Phone   string        `json:"phone"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// HandlePlaceOrder checks out the current cart.
//
// HTTP: POST /api/orders
// BODY: {"address": {"street": "...", "city": "...", "postalCode": "...", "country": "..."}, "phone": "..."}
func (h *OrderHandler) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("please log in first"))
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid place-order JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	order, err := h.orders.Place(r.Context(), p.UserID, req.Address, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "order placed successfully",
		"order":   order,
	})
}

// HandleListOwn returns the caller's orders, newest first.
//
// HTTP: GET /api/orders
func (h *OrderHandler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("please log in first"))
		return
	}

	orders, err := h.orders.ListForUser(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// HandleListAll returns every order for the admin dashboard.
//
// HTTP: GET /api/admin/orders
func (h *OrderHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// HandleUpdateStatus sets an order's status.
//
// HTTP: PATCH /api/admin/orders/{orderID}
// BODY: {"status": "shipped"}
func (h *OrderHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderID")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "order status updated",
		"order":   order,
	})
}
