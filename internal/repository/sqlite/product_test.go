package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/repository"
)

// =========================================================================
// CREATE / GET TESTS
// =========================================================================

func TestCreateProductAndGet(t *testing.T) {
	db := newTestDB(t)

	p := createTestProduct(t, db, "hoodie", 59.90, []string{"S", "M", "L"})
	if p.ID == "" {
		t.Error("CreateProduct() did not assign an ID")
	}

	got, err := db.GetProductByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetProductByID() error = %v", err)
	}
	if got.Name != "hoodie" {
		t.Errorf("Name = %q, want %q", got.Name, "hoodie")
	}
	if got.Price != 59.90 {
		t.Errorf("Price = %v, want 59.90", got.Price)
	}
	// Images and sizes survive the JSON round trip through TEXT columns.
	if len(got.Images) != 1 {
		t.Errorf("Images = %v, want 1 entry", got.Images)
	}
	if len(got.Sizes) != 3 || got.Sizes[0] != "S" || got.Sizes[2] != "L" {
		t.Errorf("Sizes = %v, want [S M L]", got.Sizes)
	}
}

func TestGetProductByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetProductByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCreateProduct_NoSizes(t *testing.T) {
	db := newTestDB(t)

	p := createTestProduct(t, db, "mug", 12.50, nil)

	got, err := db.GetProductByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetProductByID() error = %v", err)
	}
	if len(got.Sizes) != 0 {
		t.Errorf("Sizes = %v, want empty", got.Sizes)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestListProducts_NewestFirstWithPagination(t *testing.T) {
	db := newTestDB(t)

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		p := createTestProduct(t, db, name, 10, nil)
		ids = append(ids, p.ID)
	}

	got, err := db.ListProducts(context.Background(), repository.ListOptions{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d products, want 2", len(got))
	}
	if got[0].ID != ids[2] || got[1].ID != ids[1] {
		t.Errorf("order = [%s %s], want newest first [%s %s]", got[0].ID, got[1].ID, ids[2], ids[1])
	}

	rest, err := db.ListProducts(context.Background(), repository.ListOptions{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(rest) != 1 || rest[0].ID != ids[0] {
		t.Errorf("offset page = %v, want just the oldest product", rest)
	}
}

func TestListProducts_Empty(t *testing.T) {
	db := newTestDB(t)

	got, err := db.ListProducts(context.Background(), repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListProducts() = %v, want empty non-nil slice", got)
	}
}

// =========================================================================
// UPDATE / DELETE TESTS
// =========================================================================

func TestUpdateProduct(t *testing.T) {
	db := newTestDB(t)

	p := createTestProduct(t, db, "hoodie", 50, []string{"M"})
	p.Price = 79.90
	p.Bestseller = true
	p.Sizes = []string{"M", "L"}

	if err := db.Update(context.Background(), p); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.GetProductByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetProductByID() error = %v", err)
	}
	if got.Price != 79.90 {
		t.Errorf("Price = %v, want 79.90", got.Price)
	}
	if !got.Bestseller {
		t.Error("Bestseller = false, want true")
	}
	if len(got.Sizes) != 2 {
		t.Errorf("Sizes = %v, want [M L]", got.Sizes)
	}
}

func TestUpdateProduct_NotFound(t *testing.T) {
	db := newTestDB(t)

	p := createTestProduct(t, db, "hoodie", 50, nil)
	p.ID = "missing"

	if err := db.Update(context.Background(), p); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteProduct(t *testing.T) {
	db := newTestDB(t)

	p := createTestProduct(t, db, "hoodie", 50, nil)

	if err := db.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.GetProductByID(context.Background(), p.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetProductByID after delete error = %v, want ErrNotFound", err)
	}
	if err := db.Delete(context.Background(), p.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
