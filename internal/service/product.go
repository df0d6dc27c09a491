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

const (
	MaxProductNameLength = 120
	DefaultListLimit     = 20
	MaxListLimit         = 100
)

// ProductService handles the catalog. Reads are public; writes are
// admin-gated at the route layer.
type ProductService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewProductService creates a ProductService.
func NewProductService(products repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		products: products,
		logger:   logger,
	}
}

// ProductInput is the write payload for Create and Update. For Update,
// zero-valued fields mean "don't change" (except Bestseller, which is
// always applied — a bool can't distinguish absent from false, and
// toggling bestseller off is a real operation the dashboard needs).
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory"`
	Sizes       []string `json:"sizes"`
	Bestseller  bool     `json:"bestseller"`
}

// Create validates and saves a new catalog entry.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "product name is required")
	}
	if len(name) > MaxProductNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("product name must be %d characters or fewer", MaxProductNameLength))
	}
	if in.Price <= 0 {
		return nil, apperror.ValidationFailed("price", "price must be greater than zero")
	}
	if len(in.Images) == 0 {
		return nil, apperror.ValidationFailed("images", "at least one image is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, apperror.ValidationFailed("category", "category is required")
	}

	product := &model.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Images:      in.Images,
		Category:    strings.TrimSpace(in.Category),
		SubCategory: strings.TrimSpace(in.SubCategory),
		Sizes:       normalizeSizes(in.Sizes),
		Bestseller:  in.Bestseller,
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		s.logger.Error("failed to create product",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating product: %w", err)
	}

	s.logger.Info("product created",
		slog.String("id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// GetByID returns one catalog entry.
func (s *ProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "product ID is required")
	}
	return s.products.GetProductByID(ctx, id)
}

// List returns catalog entries, newest first, with the limit clamped to a
// sane range so a caller can't request a million rows.
func (s *ProductService) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.products.ListProducts(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("failed to list products", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing products: %w", err)
	}

	return products, nil
}

// Update applies a partial edit: fetch, merge the provided fields, save.
// Fetch-then-update keeps "not found" handling in one place and returns
// the full updated record to the caller.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		if len(name) > MaxProductNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("product name must be %d characters or fewer", MaxProductNameLength))
		}
		product.Name = name
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		product.Description = desc
	}
	if in.Price != 0 {
		if in.Price < 0 {
			return nil, apperror.ValidationFailed("price", "price must be greater than zero")
		}
		product.Price = in.Price
	}
	if len(in.Images) > 0 {
		product.Images = in.Images
	}
	if c := strings.TrimSpace(in.Category); c != "" {
		product.Category = c
	}
	if sc := strings.TrimSpace(in.SubCategory); sc != "" {
		product.SubCategory = sc
	}
	if len(in.Sizes) > 0 {
		product.Sizes = normalizeSizes(in.Sizes)
	}
	product.Bestseller = in.Bestseller

	if err := s.products.Update(ctx, product); err != nil {
		s.logger.Error("failed to update product",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating product: %w", err)
	}

	s.logger.Info("product updated", slog.String("id", product.ID))

	return product, nil
}

// Delete removes a catalog entry. Existing cart lines and orders keep
// their denormalized snapshot of it.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "product ID is required")
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("product deleted", slog.String("id", id))
	return nil
}

// normalizeSizes upper-cases and de-duplicates the size list so cart
// additions can compare sizes with plain equality.
func normalizeSizes(sizes []string) []string {
	out := make([]string, 0, len(sizes))
	seen := make(map[string]bool, len(sizes))
	for _, s := range sizes {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
