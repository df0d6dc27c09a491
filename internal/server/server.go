// Package server wires the application together: database, services,
// handlers, middleware, and routes.
//
// This is the composition root — every dependency is assembled here, in
// one place, and each layer only receives what it needs. Handlers never
// touch the database; services never touch HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/storefront/internal/auth"
	"github.com/sakif/storefront/internal/config"
	"github.com/sakif/storefront/internal/handler"
	"github.com/sakif/storefront/internal/middleware"
	sqliteRepo "github.com/sakif/storefront/internal/repository/sqlite"
	"github.com/sakif/storefront/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed before exit.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with all dependencies wired.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Session plumbing. The resolver trusts the login-time snapshot in the
	// cookie; the admin policy re-verifies against the database on every
	// admin request, so a revoked admin flag takes effect immediately even
	// though an old cookie is still valid.
	tokens, err := auth.NewTokenService(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	resolver := auth.NewResolver(tokens)
	adminPolicy := auth.NewAdminPolicy(s.db, passwords, s.config.AdminEmail, s.config.AdminPassword)

	var google *auth.GoogleProvider
	if s.config.GoogleEnabled() {
		google = auth.NewGoogleProvider(
			s.config.GoogleClientID,
			s.config.GoogleClientSecret,
			s.config.GoogleCallbackURL,
		)
	}

	adminCreds := service.AdminCredentials{
		Email:    s.config.AdminEmail,
		Password: s.config.AdminPassword,
	}
	authService := service.NewAuthService(s.db, passwords, tokens, adminCreds, s.logger)
	productService := service.NewProductService(s.db, s.logger)
	cartService := service.NewCartService(s.db, s.db, s.logger)
	orderService := service.NewOrderService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, google, s.config.ClientURL, s.logger)
	productHandler := handler.NewProductHandler(productService, s.logger)
	cartHandler := handler.NewCartHandler(cartService, s.logger)
	orderHandler := handler.NewOrderHandler(orderService, s.logger)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Public: account lifecycle and catalog reads.
		r.Route("/user", func(r chi.Router) {
			r.Post("/signup", authHandler.HandleSignup)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/admin-login", authHandler.HandleAdminLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.With(auth.OptionalUser(resolver)).Get("/check-auth", authHandler.HandleCheckAuth)
		})

		if google != nil {
			r.Get("/auth/google", authHandler.HandleGoogleLogin)
			r.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
		}

		r.Get("/products", productHandler.HandleList)
		r.Get("/products/{productID}", productHandler.HandleGetByID)

		// Authenticated: cart and own orders.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(resolver))

			r.Get("/cart", cartHandler.HandleGet)
			r.Post("/cart/items", cartHandler.HandleAddItem)
			r.Patch("/cart/items/{itemID}", cartHandler.HandleUpdateItem)
			r.Delete("/cart/items/{itemID}", cartHandler.HandleRemoveItem)

			r.Post("/orders", orderHandler.HandlePlaceOrder)
			r.Get("/orders", orderHandler.HandleListOwn)
		})

		// Admin: catalog writes and order management.
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireUser(resolver))
			r.Use(auth.RequireAdmin(adminPolicy))

			r.Post("/products", productHandler.HandleCreate)
			r.Put("/products/{productID}", productHandler.HandleUpdate)
			r.Delete("/products/{productID}", productHandler.HandleDelete)

			r.Get("/orders", orderHandler.HandleListAll)
			r.Patch("/orders/{orderID}", orderHandler.HandleUpdateStatus)
		})
	})

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for up
// to 30 seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", s.config.Addr),
			slog.String("database", s.config.DBPath),
			slog.Bool("google_oauth", s.config.GoogleEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
