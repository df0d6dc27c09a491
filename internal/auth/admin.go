package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/storefront/internal/apperror"
)

// AdminPolicy decides whether a principal may perform administrator-only
// operations (order status changes, product writes).
//
// The policy is a single object evaluated once per request, fed by a
// freshly loaded user record — it never trusts the session snapshot, which
// may predate an admin-flag change. Its inputs (admin email and password)
// are injected at construction, so the policy is testable with fixtures
// and no business code reads the environment.
//
// POLICY (all must hold):
//  1. A principal was resolved (else Unauthenticated, never Forbidden).
//  2. The persisted user record exists and carries the admin flag.
//  3. The record's email equals the configured admin email.
//  4. If the record has a password credential, the configured admin
//     password verifies against it. OAuth-only admins have no password
//     hash and are exempt from this check.
//
// Failing 2–4 is Forbidden. The two rejection modes are deliberately
// distinct status codes; nothing ever silently downgrades to non-admin
// behavior.
type AdminPolicy struct {
	users         UserSource
	passwords     *PasswordService
	adminEmail    string
	adminPassword string
}

// NewAdminPolicy creates the policy with its configured admin identity.
func NewAdminPolicy(users UserSource, passwords *PasswordService, adminEmail, adminPassword string) *AdminPolicy {
	return &AdminPolicy{
		users:         users,
		passwords:     passwords,
		adminEmail:    strings.ToLower(strings.TrimSpace(adminEmail)),
		adminPassword: adminPassword,
	}
}

// Authorize checks the principal against the admin policy.
// Returns nil if the principal is the administrator, an apperror otherwise.
func (a *AdminPolicy) Authorize(ctx context.Context, p *Principal) error {
	if p == nil {
		return apperror.Unauthenticated("please log in first")
	}

	if a.adminEmail == "" {
		// No administrator configured — every admin request is rejected.
		return apperror.Forbidden("admin access is not configured")
	}

	// Re-fetch: the session snapshot's admin flag may be stale, and a
	// revoked admin must lose access without needing to log out.
	user, err := a.users.GetUserByID(ctx, p.UserID)
	if err != nil {
		return apperror.Forbidden("admin access required")
	}

	if !user.IsAdmin {
		return apperror.Forbidden("admin access required")
	}
	if strings.ToLower(user.Email) != a.adminEmail {
		return apperror.Forbidden("admin access required")
	}

	// Password-credentialed admins must still match the configured admin
	// password. Google-only admins can't — they have no hash to check.
	if user.HasPassword() {
		if err := a.passwords.Verify(user.PasswordHash, a.adminPassword); err != nil {
			return apperror.Forbidden("admin access required")
		}
	}

	return nil
}

// RequireAdmin is a middleware enforcing the admin policy. Mount it after
// RequireUser so the principal is already in the context.
func RequireAdmin(policy *AdminPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p, _ := PrincipalFromContext(req.Context())

			if err := policy.Authorize(req.Context(), p); err != nil {
				if p == nil {
					denyJSON(w, http.StatusUnauthorized, `{"error":"unauthenticated","message":"please log in first"}`)
				} else {
					denyJSON(w, http.StatusForbidden, `{"error":"forbidden","message":"admin access required"}`)
				}
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}
