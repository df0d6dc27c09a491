package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/storefront/internal/service"
)

// ProductHandler exposes the catalog. Reads are public; writes are mounted
// behind the admin gate.
type ProductHandler struct {
	products *service.ProductService
	logger   *slog.Logger
}

// NewProductHandler creates a ProductHandler.
func NewProductHandler(products *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

// HandleList returns catalog entries, newest first.
//
// HTTP: GET /api/products?limit=20&offset=0
func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	// Bad pagination values fall back to defaults rather than erroring —
	// the service clamps them anyway.
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	products, err := h.products.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

// HandleGetByID returns a single catalog entry.
//
// HTTP: GET /api/products/{productID}
func (h *ProductHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetByID(r.Context(), r.PathValue("productID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

// HandleCreate adds a catalog entry (admin only).
//
// HTTP: POST /api/admin/products
func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid product JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	product, err := h.products.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "product created successfully",
		"product": product,
	})
}

// HandleUpdate edits a catalog entry (admin only, partial update).
//
// HTTP: PUT /api/admin/products/{productID}
func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	product, err := h.products.Update(r.Context(), r.PathValue("productID"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "product updated successfully",
		"product": product,
	})
}

// HandleDelete removes a catalog entry (admin only).
//
// HTTP: DELETE /api/admin/products/{productID}
func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("productID")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted successfully"})
}
