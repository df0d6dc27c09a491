// Package service — authentication business logic.
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ TokenService (sessions) ↘ PasswordService (bcrypt)
//
// Two credential paths converge here: email/password (Register, Login,
// AdminLogin) and Google OAuth (LoginOrRegisterGoogle). Each issues a
// session token tagged with its source, so the resolver and the admin
// policy always know which door the user came through.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/auth"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

const (
	MinPasswordLength = 6
	MaxUsernameLength = 60
)

// AdminCredentials is the configured administrator identity, injected at
// startup. Registration and admin-login compare against it; the zero
// value means "no administrator exists".
type AdminCredentials struct {
	Email    string
	Password string
}

// AuthService handles registration, login and Google sign-in.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	admin     AdminCredentials
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	admin AdminCredentials,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		admin: AdminCredentials{
			Email:    strings.ToLower(strings.TrimSpace(admin.Email)),
			Password: admin.Password,
		},
		logger: logger,
	}
}

// AuthResult bundles the user record and the issued session token so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a password account and logs it in.
//
// A registration that presents exactly the configured admin email AND
// admin password becomes the administrator account — this is how the
// admin identity bootstraps itself on a fresh database.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or fewer", MaxUsernameLength))
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	isAdmin := s.admin.Email != "" &&
		email == s.admin.Email &&
		password == s.admin.Password

	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err // Conflict on duplicate email propagates as-is
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
		slog.Bool("isAdmin", user.IsAdmin),
	)

	return s.issueSession(user, auth.SourcePassword)
}

// Login verifies an email/password pair and issues a session.
//
// Unknown email and wrong password produce the SAME error, so a caller
// can't probe which addresses are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("credentials", "invalid credentials")
		}
		return nil, fmt.Errorf("looking up user for login: %w", err)
	}

	if !user.HasPassword() {
		// Google-only account — there is no password to check.
		return nil, apperror.ValidationFailed("credentials", "invalid credentials")
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.ValidationFailed("credentials", "invalid credentials")
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return s.issueSession(user, auth.SourcePassword)
}

// AdminLogin authenticates directly against the configured admin
// credentials and ensures the admin account exists, creating it on first
// use. The resulting session is an ordinary password session — the admin
// gate still re-checks everything per request.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if s.admin.Email == "" || email != s.admin.Email || password != s.admin.Password {
		return nil, apperror.ValidationFailed("credentials", "invalid admin credentials")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("looking up admin user: %w", err)
		}

		hash, hashErr := s.passwords.Hash(password)
		if hashErr != nil {
			return nil, fmt.Errorf("hashing admin password: %w", hashErr)
		}

		user = &model.User{
			Email:        email,
			Username:     "Admin",
			PasswordHash: hash,
			IsAdmin:      true,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("creating admin user: %w", err)
		}

		s.logger.Info("admin account created", slog.String("userID", user.ID))
	}

	s.logger.Info("admin logged in", slog.String("userID", user.ID))

	return s.issueSession(user, auth.SourcePassword)
}

// LoginOrRegisterGoogle handles the Google OAuth callback: upsert the user
// by email (first login creates the account, later logins refresh the
// profile) and issue a federated session.
//
// A Google profile whose email is the configured admin email becomes the
// administrator. Because a Google account has no password of its own, the
// admin password is hashed in as the local credential so the admin gate's
// password re-check holds for this account too.
func (s *AuthService) LoginOrRegisterGoogle(ctx context.Context, gUser *auth.GoogleUser) (*AuthResult, error) {
	if gUser == nil {
		return nil, fmt.Errorf("service/auth: Google user must not be nil")
	}

	email := strings.ToLower(strings.TrimSpace(gUser.Email))

	user := &model.User{
		Email:     email,
		Username:  gUser.Name,
		AvatarURL: gUser.Picture,
		GoogleID:  gUser.Sub,
	}

	if s.admin.Email != "" && email == s.admin.Email {
		user.IsAdmin = true
		hash, err := s.passwords.Hash(s.admin.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing admin password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.UpsertGoogle(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting google user (sub=%s): %w", gUser.Sub, err)
	}

	s.logger.Info("user authenticated via Google",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return s.issueSession(user, auth.SourceGoogle)
}

// CurrentUser returns the fresh user record for a resolved principal.
// Used by check-auth so the client always sees current profile data, not
// the login-time snapshot riding in the cookie.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("please log in first")
	}
	return s.users.GetUserByID(ctx, userID)
}

func (s *AuthService) issueSession(user *model.User, src auth.Source) (*AuthResult, error) {
	token, err := s.tokens.Generate(auth.FromUser(user, src))
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating session for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
