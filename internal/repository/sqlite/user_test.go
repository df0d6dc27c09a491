package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	u := &model.User{Email: "Alice@Example.com", Username: "alice", PasswordHash: "hash"}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if u.ID == "" {
		t.Error("CreateUser() did not assign an ID")
	}
	if u.Email != "alice@example.com" {
		t.Errorf("Email = %q, want lower-cased", u.Email)
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "a@b.com")

	err := db.CreateUser(context.Background(), &model.User{Email: "A@B.com", Username: "other", PasswordHash: "x"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict (emails are case-insensitively unique)", err)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestGetUserByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "a@b.com")

	got, err := db.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Email != "a@b.com" {
		t.Errorf("Email = %q, want %q", got.Email, "a@b.com")
	}

	if _, err := db.GetUserByID(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "a@b.com")

	got, err := db.GetUserByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.Username != "tester" {
		t.Errorf("Username = %q, want %q", got.Username, "tester")
	}

	if _, err := db.GetUserByEmail(context.Background(), "nobody@b.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// GOOGLE UPSERT TESTS
// =========================================================================

func TestUpsertGoogle_CreatesNewUser(t *testing.T) {
	db := newTestDB(t)

	u := &model.User{Email: "g@b.com", Username: "Gina", GoogleID: "sub-1", AvatarURL: "https://a/p.jpg"}
	if err := db.UpsertGoogle(context.Background(), u); err != nil {
		t.Fatalf("UpsertGoogle() error = %v", err)
	}
	if u.ID == "" {
		t.Error("no ID assigned")
	}

	got, err := db.GetUserByEmail(context.Background(), "g@b.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.GoogleID != "sub-1" {
		t.Errorf("GoogleID = %q, want %q", got.GoogleID, "sub-1")
	}
}

func TestUpsertGoogle_LinksExistingAccount(t *testing.T) {
	db := newTestDB(t)
	existing := createTestUser(t, db, "a@b.com")

	u := &model.User{Email: "a@b.com", Username: "Alice G", GoogleID: "sub-9"}
	if err := db.UpsertGoogle(context.Background(), u); err != nil {
		t.Fatalf("UpsertGoogle() error = %v", err)
	}

	// Linked, not duplicated: same ID, google_id attached, password kept.
	if u.ID != existing.ID {
		t.Errorf("ID = %q, want existing %q", u.ID, existing.ID)
	}
	if u.GoogleID != "sub-9" {
		t.Errorf("GoogleID = %q, want %q", u.GoogleID, "sub-9")
	}
	if u.PasswordHash != "x" {
		t.Errorf("PasswordHash = %q, want preserved %q", u.PasswordHash, "x")
	}
}

func TestUpsertGoogle_PromotesAdminNeverDemotes(t *testing.T) {
	db := newTestDB(t)
	existing := createTestUser(t, db, "admin@shop.com")

	// Profile carrying the admin identity promotes the record.
	promote := &model.User{Email: "admin@shop.com", Username: "Boss", GoogleID: "sub-1", IsAdmin: true}
	if err := db.UpsertGoogle(context.Background(), promote); err != nil {
		t.Fatalf("UpsertGoogle() error = %v", err)
	}
	if !promote.IsAdmin {
		t.Error("IsAdmin = false, want promoted")
	}

	// A later plain profile must not revoke the flag.
	plain := &model.User{Email: "admin@shop.com", Username: "Boss", GoogleID: "sub-1"}
	if err := db.UpsertGoogle(context.Background(), plain); err != nil {
		t.Fatalf("UpsertGoogle() error = %v", err)
	}
	got, err := db.GetUserByID(context.Background(), existing.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if !got.IsAdmin {
		t.Error("IsAdmin = false, want still true after plain upsert")
	}
}
