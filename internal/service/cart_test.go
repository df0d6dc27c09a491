package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/storefront/internal/apperror"
)

func newTestCartService(t *testing.T) (*CartService, *fakeCartRepo, *fakeProductRepo) {
	t.Helper()
	carts := newFakeCartRepo()
	products := newFakeProductRepo()
	return NewCartService(carts, products, testLogger()), carts, products
}

// =========================================================================
// ADD ITEM TESTS
// =========================================================================

func TestAddItem_SnapshotsProductFields(t *testing.T) {
	svc, _, products := newTestCartService(t)
	p := seedProduct(t, products, "hoodie", 59.90, []string{"S", "M", "L"})

	cart, err := svc.AddItem(context.Background(), "u1", p.ID, 2, "M")
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	if len(cart) != 1 {
		t.Fatalf("cart has %d lines, want 1", len(cart))
	}
	line := cart[0]
	if line.Name != "hoodie" {
		t.Errorf("Name = %q, want %q", line.Name, "hoodie")
	}
	if line.Price != 59.90 {
		t.Errorf("Price = %v, want 59.90", line.Price)
	}
	if line.Image == "" {
		t.Error("Image snapshot missing")
	}
	if line.Quantity != 2 {
		t.Errorf("Quantity = %d, want 2", line.Quantity)
	}
	if line.Size != "M" {
		t.Errorf("Size = %q, want %q", line.Size, "M")
	}
}

func TestAddItem_MergesSameProductAndSize(t *testing.T) {
	svc, _, products := newTestCartService(t)
	p := seedProduct(t, products, "hoodie", 59.90, []string{"M"})

	if _, err := svc.AddItem(context.Background(), "u1", p.ID, 2, "M"); err != nil {
		t.Fatalf("first AddItem() error = %v", err)
	}
	cart, err := svc.AddItem(context.Background(), "u1", p.ID, 3, "M")
	if err != nil {
		t.Fatalf("second AddItem() error = %v", err)
	}

	if len(cart) != 1 {
		t.Fatalf("cart has %d lines, want 1 merged line", len(cart))
	}
	if cart[0].Quantity != 5 {
		t.Errorf("Quantity = %d, want 5 (2+3 merged)", cart[0].Quantity)
	}
}

func TestAddItem_DifferentSizesAreSeparateLines(t *testing.T) {
	svc, _, products := newTestCartService(t)
	p := seedProduct(t, products, "hoodie", 59.90, []string{"S", "M"})

	if _, err := svc.AddItem(context.Background(), "u1", p.ID, 1, "S"); err != nil {
		t.Fatalf("AddItem(S) error = %v", err)
	}
	cart, err := svc.AddItem(context.Background(), "u1", p.ID, 1, "M")
	if err != nil {
		t.Fatalf("AddItem(M) error = %v", err)
	}

	if len(cart) != 2 {
		t.Errorf("cart has %d lines, want 2 (one per size)", len(cart))
	}
}

func TestAddItem_SizeIsCaseInsensitive(t *testing.T) {
	svc, _, products := newTestCartService(t)
	p := seedProduct(t, products, "hoodie", 59.90, []string{"M"})

	cart, err := svc.AddItem(context.Background(), "u1", p.ID, 1, "m")
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if cart[0].Size != "M" {
		t.Errorf("Size = %q, want normalized %q", cart[0].Size, "M")
	}

	// "m" and "M" land on the same line
	cart, err = svc.AddItem(context.Background(), "u1", p.ID, 1, "M")
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if len(cart) != 1 || cart[0].Quantity != 2 {
		t.Errorf("cart = %+v, want one line with quantity 2", cart)
	}
}

func TestAddItem_SizedProductRequiresSize(t *testing.T) {
	svc, _, products := newTestCartService(t)
	p := seedProduct(t, products, "hoodie", 59.90, []string{"S", "M"})

	_, err := svc.AddItem(context.Background(), "u1", p.ID, 1, "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation for missing size", err)
	}
}

func TestAddItem_UnknownSizeRejected(t *testing.T) {
	svc, _, products := newTestCartService(t)
	p := seedProduct(t, products, "hoodie", 59.90, []string{"S", "M"})

	_, err := svc.AddItem(context.Background(), "u1", p.ID, 1, "XXL")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation for unavailable size", err)
	}
}

func TestAddItem_UnsizedProductIgnoresSize(t *testing.T) {
	svc, _, products := newTestCartService(t)
	p := seedProduct(t, products, "mug", 12.50, nil)

	cart, err := svc.AddItem(context.Background(), "u1", p.ID, 1, "M")
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if cart[0].Size != "" {
		t.Errorf("Size = %q, want empty for unsized product", cart[0].Size)
	}
}

func TestAddItem_QuantityBelowOne(t *testing.T) {
	svc, _, products := newTestCartService(t)
	p := seedProduct(t, products, "mug", 12.50, nil)

	for _, q := range []int{0, -3} {
		_, err := svc.AddItem(context.Background(), "u1", p.ID, q, "")
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("AddItem(quantity=%d) error = %v, want ErrValidation", q, err)
		}
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc, _, _ := newTestCartService(t)

	_, err := svc.AddItem(context.Background(), "u1", "nope", 1, "")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// UPDATE / REMOVE TESTS
// =========================================================================

func TestUpdateQuantity_SetsNewValue(t *testing.T) {
	svc, _, products := newTestCartService(t)
	p := seedProduct(t, products, "mug", 12.50, nil)

	cart, err := svc.AddItem(context.Background(), "u1", p.ID, 1, "")
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	cart, err = svc.UpdateQuantity(context.Background(), "u1", cart[0].ID, 7)
	if err != nil {
		t.Fatalf("UpdateQuantity() error = %v", err)
	}
	if cart[0].Quantity != 7 {
		t.Errorf("Quantity = %d, want 7", cart[0].Quantity)
	}
}

func TestUpdateQuantity_BelowOneRemovesLine(t *testing.T) {
	svc, _, products := newTestCartService(t)
	p := seedProduct(t, products, "mug", 12.50, nil)

	cart, err := svc.AddItem(context.Background(), "u1", p.ID, 3, "")
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	cart, err = svc.UpdateQuantity(context.Background(), "u1", cart[0].ID, 0)
	if err != nil {
		t.Fatalf("UpdateQuantity(0) error = %v", err)
	}
	if len(cart) != 0 {
		t.Errorf("cart has %d lines after quantity 0, want 0", len(cart))
	}
}

func TestUpdateQuantity_OtherUsersLine(t *testing.T) {
	svc, _, products := newTestCartService(t)
	p := seedProduct(t, products, "mug", 12.50, nil)

	cart, err := svc.AddItem(context.Background(), "u1", p.ID, 1, "")
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	// u2 cannot touch u1's line
	_, err = svc.UpdateQuantity(context.Background(), "u2", cart[0].ID, 5)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for foreign line", err)
	}
}

func TestRemoveItem_UnknownLine(t *testing.T) {
	svc, _, _ := newTestCartService(t)

	_, err := svc.RemoveItem(context.Background(), "u1", "nope")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGet_PreservesInsertionOrder(t *testing.T) {
	svc, _, products := newTestCartService(t)
	a := seedProduct(t, products, "alpha", 1, nil)
	b := seedProduct(t, products, "beta", 2, nil)
	c := seedProduct(t, products, "gamma", 3, nil)

	for _, p := range []string{a.ID, b.ID, c.ID} {
		if _, err := svc.AddItem(context.Background(), "u1", p, 1, ""); err != nil {
			t.Fatalf("AddItem(%s) error = %v", p, err)
		}
	}

	cart, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := []string{"alpha", "beta", "gamma"}
	for i, name := range want {
		if cart[i].Name != name {
			t.Errorf("cart[%d].Name = %q, want %q", i, cart[i].Name, name)
		}
	}
}
