package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

// Compile-time check that *DB implements repository.UserRepository.
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, username, avatar_url, password_hash,
	COALESCE(google_id, ''), is_admin, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.AvatarURL,
		&u.PasswordHash,
		&u.GoogleID,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user. The email is stored lower-cased so the UNIQUE
// constraint enforces case-insensitive uniqueness. A conflicting email
// surfaces as apperror.ErrConflict, not a raw driver error.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now

	var googleID any
	if user.GoogleID != "" {
		googleID = user.GoogleID
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, username, avatar_url, password_hash, google_id, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Username,
		user.AvatarURL,
		user.PasswordHash,
		googleID,
		user.IsAdmin,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// GetUserByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email (case-insensitive).
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email %s: %w", email, err)
	}
	return u, nil
}

// UpsertGoogle links or creates a user from a Google profile.
//
// KEYED BY EMAIL, NOT GOOGLE ID:
// A customer who registered with a password and later clicks "sign in with
// Google" (same address) must land in their existing account, not a
// duplicate. So we look up by email; on a hit we attach the Google ID and
// refresh the profile fields, on a miss we insert. The caller's struct is
// updated in place with the canonical record either way.
func (db *DB) UpsertGoogle(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	existing, err := db.GetUserByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("sqlite: looking up user by email %s: %w", user.Email, err)
	}

	if existing != nil {
		existing.GoogleID = user.GoogleID
		if user.Username != "" {
			existing.Username = user.Username
		}
		if user.AvatarURL != "" {
			existing.AvatarURL = user.AvatarURL
		}
		// Promote-only: a Google profile carrying the admin identity grants
		// the flag, but a plain profile never revokes it. Same for the
		// password hash — fill it in if the account has none.
		if user.IsAdmin {
			existing.IsAdmin = true
		}
		if user.PasswordHash != "" && existing.PasswordHash == "" {
			existing.PasswordHash = user.PasswordHash
		}
		existing.UpdatedAt = time.Now()

		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET google_id = ?, username = ?, avatar_url = ?, is_admin = ?, password_hash = ?, updated_at = ?
			 WHERE id = ?`,
			existing.GoogleID,
			existing.Username,
			existing.AvatarURL,
			existing.IsAdmin,
			existing.PasswordHash,
			existing.UpdatedAt,
			existing.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: linking google account for user %s: %w", existing.ID, err)
		}

		*user = *existing
		return nil
	}

	return db.CreateUser(ctx, user)
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite does not export a typed error for this, so
// we match the stable message prefix ("constraint failed: UNIQUE ...").
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
