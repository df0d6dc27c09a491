// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Users can arrive through two doors: email/password signup or Google OAuth.
// Both end up in the same row — the only structural difference is which of
// PasswordHash / GoogleID is populated.
//
// WHY PasswordHash string AND GoogleID string (both optional)?
// A password user has a bcrypt hash and an empty GoogleID. A Google user has
// a GoogleID and an empty hash. A user who signed up with a password and
// later logs in with Google (same email) ends up with both. Empty string is
// the "absent" value — simpler than nullable pointers and safe to compare.
//
// PasswordHash is json:"-" so it can never leak into an API response,
// no matter how carelessly a handler encodes the struct.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"` // unique, stored lower-cased
	Username     string    `json:"username"  db:"username"`
	AvatarURL    string    `json:"avatarUrl" db:"avatar_url"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	GoogleID     string    `json:"-"         db:"google_id"` // Google's "sub" claim, stable per account
	IsAdmin      bool      `json:"isAdmin"   db:"is_admin"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// HasPassword reports whether this account carries a local credential.
// OAuth-only accounts return false — the admin gate uses this to decide
// whether a password re-check is even possible.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
