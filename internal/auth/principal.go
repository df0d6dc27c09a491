package auth

import (
	"context"

	"github.com/sakif/storefront/internal/model"
)

// Source identifies which credential path established a session.
//
// Exactly one source is authoritative per request: a principal resolved
// from the OAuth session never falls back to the local session cookie,
// and vice versa. The admin gate uses the source to decide whether a
// password re-check applies.
type Source string

const (
	SourcePassword Source = "password"
	SourceGoogle   Source = "google"
)

// Principal is the resolved identity attached to a request.
//
// STALENESS CONTRACT:
// By default the fields are a snapshot captured at login time (they ride in
// the session token), so profile or admin-flag changes made after login are
// not visible until re-login. The Resolver can be configured with
// WithRefresh to trade a DB lookup per request for freshness. The admin
// gate NEVER trusts this snapshot — it always re-fetches (see admin.go).
type Principal struct {
	UserID   string
	Email    string
	Username string
	IsAdmin  bool
	Source   Source
}

// FromUser builds a Principal snapshot from a user record.
func FromUser(u *model.User, src Source) *Principal {
	return &Principal{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
		Source:   src,
	}
}

// contextKey is an unexported type used for context keys in this package.
// A package-private key type means only this package can read or write
// principal values in the context — no collisions with other packages.
type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal returns a context carrying the given principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the resolved principal from the request
// context. Returns (nil, false) if the request is anonymous.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
