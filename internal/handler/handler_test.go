package handler_test

// Shared wiring for handler tests. Handlers are exercised over real
// services backed by an in-memory SQLite database — the fastest setup that
// still covers the JSON and status-code contract end to end.

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sakif/storefront/internal/auth"
	"github.com/sakif/storefront/internal/handler"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository/sqlite"
	"github.com/sakif/storefront/internal/service"
)

const (
	testAdminEmail    = "admin@shop.com"
	testAdminPassword = "admin-secret"
)

type testEnv struct {
	db       *sqlite.DB
	auth     *handler.AuthHandler
	cart     *handler.CartHandler
	order    *handler.OrderHandler
	product  *handler.ProductHandler
	authSvc  *service.AuthService
	cartSvc  *service.CartService
	prodSvc  *service.ProductService
	orderSvc *service.OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(4)
	admin := service.AdminCredentials{Email: testAdminEmail, Password: testAdminPassword}

	env := &testEnv{db: db}
	env.authSvc = service.NewAuthService(db, passwords, tokens, admin, logger)
	env.cartSvc = service.NewCartService(db, db, logger)
	env.prodSvc = service.NewProductService(db, logger)
	env.orderSvc = service.NewOrderService(db, db, logger)

	env.auth = handler.NewAuthHandler(env.authSvc, nil, "/", logger)
	env.cart = handler.NewCartHandler(env.cartSvc, logger)
	env.order = handler.NewOrderHandler(env.orderSvc, logger)
	env.product = handler.NewProductHandler(env.prodSvc, logger)

	return env
}

// registerUser creates an account through the service and returns its
// record.
func (e *testEnv) registerUser(t *testing.T, email string) *model.User {
	t.Helper()
	result, err := e.authSvc.Register(context.Background(), email, "tester", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return result.User
}

func (e *testEnv) seedProduct(t *testing.T, name string, price float64, sizes []string) *model.Product {
	t.Helper()
	p, err := e.prodSvc.Create(context.Background(), service.ProductInput{
		Name:     name,
		Price:    price,
		Images:   []string{"https://img.example.com/" + name + ".jpg"},
		Category: "tops",
		Sizes:    sizes,
	})
	if err != nil {
		t.Fatalf("seeding product: %v", err)
	}
	return p
}

// jsonRequest builds a request with a JSON body and optional principal in
// the context (standing in for the RequireUser middleware).
func jsonRequest(method, target string, body string, p *auth.Principal) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	}
	return req
}

func principalFor(u *model.User) *auth.Principal {
	return auth.FromUser(u, auth.SourcePassword)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return body
}

func testLoggerForHandlers() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newAuthHandlerWithGoogle(env *testEnv, google *auth.GoogleProvider, logger *slog.Logger) *handler.AuthHandler {
	return handler.NewAuthHandler(env.authSvc, google, "/", logger)
}

// cookieByName finds a Set-Cookie entry in the recorded response.
func cookieByName(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
