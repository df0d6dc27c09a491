// Package config loads startup configuration from the environment.
//
// ALL configuration is read here, once, at startup. Business logic never
// touches os.Getenv — the admin policy, OAuth provider, and token service
// all receive their settings as plain struct fields. That keeps every
// policy decision testable with fixture values instead of ambient state.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable the server needs.
type Config struct {
	Addr   string `env:"ADDR" envDefault:":8080"`
	DBPath string `env:"DB_PATH" envDefault:"data/storefront.db"`

	// SessionSecret signs both session cookies (local and OAuth).
	// Must be at least 16 characters; generate with: openssl rand -hex 32
	SessionSecret string `env:"SESSION_SECRET"`

	// AdminEmail/AdminPassword define the single administrator identity.
	// The admin gate compares against these on every admin request.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// Google OAuth app credentials. When empty, the Google routes are not
	// registered and only email/password login is available.
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"`

	// ClientURL is where the OAuth callback redirects the browser after a
	// successful login (the storefront SPA).
	ClientURL string `env:"CLIENT_URL" envDefault:"/"`
}

// Load reads .env (if present) and then the process environment.
//
// A missing .env file is fine — in production the variables come from the
// deployment environment and there is no file at all.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("config: SESSION_SECRET is required")
	}
	if cfg.GoogleClientID != "" && cfg.GoogleCallbackURL == "" {
		return nil, errors.New("config: GOOGLE_CALLBACK_URL is required when GOOGLE_CLIENT_ID is set")
	}

	return cfg, nil
}

// GoogleEnabled reports whether the Google OAuth routes should be wired.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
