// Package auth provides credential handling for the storefront API:
// bcrypt password hashing, signed session tokens, the Google OAuth flow,
// request-scoped principal resolution, and the admin authorization policy.
//
// SESSION MODEL:
// A successful login (either path) issues a signed JWT stored in an
// HttpOnly cookie. The token's claims embed a snapshot of the user taken
// at login time — id, email, username, admin flag, and which credential
// source produced it. Subsequent requests are authenticated by validating
// the cookie; no server-side session table is needed.
//
// Two cookies exist because two credential sources exist:
//
//	"session"       — set by signup / login / admin-login (password path)
//	"oauth_session" — set by the Google OAuth callback     (federated path)
//
// The Resolver (resolver.go) gives the federated cookie precedence.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookie is set by the password login paths.
	SessionCookie = "session"
	// OAuthSessionCookie is set by the Google OAuth callback.
	OAuthSessionCookie = "oauth_session"

	// SessionTTL is how long a login lasts before the user must
	// re-authenticate.
	SessionTTL = 24 * time.Hour

	issuer = "storefront"
)

// SessionClaims is the JWT payload for both session cookies.
//
// Beyond the registered claims ("sub" holds the user ID), it carries the
// login-time user snapshot. This is deliberately the same shape the
// Principal exposes — validating a token IS resolving a principal, minus
// the optional freshness re-fetch.
type SessionClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
	Src      string `json:"src"` // "password" or "google"
	jwt.RegisteredClaims
}

// TokenService signs and validates session tokens.
//
// It holds the HMAC secret used for both operations. The same secret must
// be used to sign and verify — keep it safe, rotate it periodically.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Generate creates and signs a session token for the given principal.
// The full snapshot rides in the claims; lifetime is SessionTTL.
func (s *TokenService) Generate(p *Principal) (string, error) {
	return s.GenerateWithDuration(p, SessionTTL)
}

// GenerateWithDuration creates a token with a custom expiry. Used in tests
// to exercise expiry handling without waiting a day.
func (s *TokenService) GenerateWithDuration(p *Principal, d time.Duration) (string, error) {
	now := time.Now()

	c := SessionClaims{
		Email:    p.Email,
		Username: p.Username,
		Admin:    p.IsAdmin,
		Src:      string(p.Source),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token, returning the principal
// snapshot it encodes.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches (prevents tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm-confusion attacks — without
//     WithValidMethods an attacker could send an alg:"none" token)
func (s *TokenService) Validate(tokenStr string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&SessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return &Principal{
		UserID:   c.Subject,
		Email:    c.Email,
		Username: c.Username,
		IsAdmin:  c.Admin,
		Source:   Source(c.Src),
	}, nil
}
