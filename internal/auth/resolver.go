package auth

import (
	"context"
	"net/http"

	"github.com/sakif/storefront/internal/model"
)

// UserSource is the narrow slice of the user repository the auth package
// needs: fetch-by-id. Accepting a one-method interface here (instead of
// the full repository) keeps this package testable with a trivial fake and
// avoids a dependency on the storage layer's package.
type UserSource interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Resolver turns an incoming request into at most one Principal.
//
// PRECEDENCE:
// The federated cookie ("oauth_session") is checked first. If it holds a
// valid token, it is authoritative — the local "session" cookie is not
// consulted at all, even if present. Otherwise the local cookie is tried.
// If neither yields a valid token, the request is anonymous.
//
// One identity per request, always: the two sources never merge.
type Resolver struct {
	tokens *TokenService

	// users is non-nil only when WithRefresh was applied. When set, the
	// snapshot in the token is used solely to find the user ID, and the
	// principal is rebuilt from the current database record on every
	// request. Default is nil: trust the snapshot, accept the staleness
	// window until re-login.
	users UserSource
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRefresh makes the resolver re-fetch the user record by ID on every
// resolution instead of trusting the login-time snapshot. Costs one lookup
// per request; buys immediate visibility of profile and admin-flag changes.
func WithRefresh(users UserSource) ResolverOption {
	return func(r *Resolver) {
		r.users = users
	}
}

// NewResolver creates a Resolver over the given token service.
func NewResolver(tokens *TokenService, opts ...ResolverOption) *Resolver {
	r := &Resolver{tokens: tokens}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces the request's principal, or nil if the request carries
// no valid session. Absence of identity is not an error here — whether
// anonymity is acceptable is the route's decision (RequireUser vs
// OptionalUser).
func (r *Resolver) Resolve(req *http.Request) *Principal {
	if p := r.fromCookie(req, OAuthSessionCookie); p != nil {
		return p
	}
	return r.fromCookie(req, SessionCookie)
}

func (r *Resolver) fromCookie(req *http.Request, name string) *Principal {
	cookie, err := req.Cookie(name)
	if err != nil || cookie.Value == "" {
		return nil
	}

	p, err := r.tokens.Validate(cookie.Value)
	if err != nil {
		// Expired or tampered cookie — treat as anonymous rather than
		// failing the request; the route decides whether to 401.
		return nil
	}

	if r.users != nil {
		fresh, err := r.users.GetUserByID(req.Context(), p.UserID)
		if err != nil {
			// Valid token for a user that no longer exists.
			return nil
		}
		refreshed := FromUser(fresh, p.Source)
		return refreshed
	}

	return p
}

// denyJSON writes a middleware rejection body. http.Error would reset the
// Content-Type to text/plain, so the body is written by hand.
func denyJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// RequireUser is a middleware that enforces authentication on protected
// routes. It resolves the principal and stores it in the request context;
// anonymous requests get 401 and the chain stops.
func RequireUser(resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p := resolver.Resolve(req)
			if p == nil {
				denyJSON(w, http.StatusUnauthorized, `{"error":"unauthenticated","message":"please log in first"}`)
				return
			}

			ctx := WithPrincipal(req.Context(), p)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// OptionalUser resolves the principal if a valid session is present but
// does NOT block anonymous requests. Used on routes like /api/user/check-auth
// where "not logged in" is a normal answer, not a failure.
func OptionalUser(resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if p := resolver.Resolve(req); p != nil {
				req = req.WithContext(WithPrincipal(req.Context(), p))
			}
			next.ServeHTTP(w, req)
		})
	}
}
