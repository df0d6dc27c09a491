package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/auth"
	"github.com/sakif/storefront/internal/service"
)

// CartHandler exposes the per-user cart. Every route is mounted behind
// RequireUser, so a principal is always present in the context.
type CartHandler struct {
	carts  *service.CartService
	logger *slog.Logger
}

// NewCartHandler creates a CartHandler.
func NewCartHandler(carts *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// HandleGet returns the current cart.
//
// HTTP: GET /api/cart
func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("please log in first"))
		return
	}

	cart, err := h.carts.Get(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

// HandleAddItem adds a product to the cart.
//
// HTTP: POST /api/cart/items
// BODY: {"productId": "...", "quantity": 2, "size": "M"}
func (h *CartHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("please log in first"))
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid add-item JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	cart, err := h.carts.AddItem(r.Context(), p.UserID, req.ProductID, req.Quantity, req.Size)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "product added to cart",
		"cart":    cart,
	})
}

// HandleUpdateItem changes a line's quantity. A quantity below 1 removes
// the line.
//
// HTTP: PATCH /api/cart/items/{itemID}
func (h *CartHandler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("please log in first"))
		return
	}

	itemID := r.PathValue("itemID")

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	cart, err := h.carts.UpdateQuantity(r.Context(), p.UserID, itemID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "cart item updated",
		"cart":    cart,
	})
}

// HandleRemoveItem deletes a line from the cart.
//
// HTTP: DELETE /api/cart/items/{itemID}
func (h *CartHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("please log in first"))
		return
	}

	itemID := r.PathValue("itemID")

	cart, err := h.carts.RemoveItem(r.Context(), p.UserID, itemID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "item removed from cart",
		"cart":    cart,
	})
}
