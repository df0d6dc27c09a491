package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rs/xid"
	"github.com/sakif/storefront/internal/auth"
	"github.com/sakif/storefront/internal/service"
)

// AuthHandler manages both login flows and session cookies.
//
//   - HandleSignup / HandleLogin / HandleAdminLogin → password path,
//     sets the "session" cookie
//   - HandleGoogleLogin / HandleGoogleCallback → OAuth path,
//     sets the "oauth_session" cookie
//   - HandleLogout → clears both cookies
//   - HandleCheckAuth → reports who (if anyone) is logged in
//
// Cookie writing lives HERE, not in the service — cookies are an HTTP
// concern; the service only produces the token string.
type AuthHandler struct {
	authService *service.AuthService
	google      *auth.GoogleProvider // nil when Google login is not configured
	clientURL   string
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler. google may be nil, in which case
// the Google routes should not be registered.
func NewAuthHandler(authService *service.AuthService, google *auth.GoogleProvider, clientURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		google:      google,
		clientURL:   clientURL,
		logger:      logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleSignup registers a new password account.
//
// HTTP: POST /api/user/signup
// BODY: {"email": "...", "username": "...", "password": "..."}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid signup JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	result, err := h.authService.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, auth.SessionCookie, result.Token)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "registered successfully",
		"user":    result.User,
	})
}

// HandleLogin authenticates a password account.
//
// HTTP: POST /api/user/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, auth.SessionCookie, result.Token)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "logged in successfully",
		"user":    result.User,
	})
}

// HandleAdminLogin authenticates against the configured admin credentials.
//
// HTTP: POST /api/user/admin-login
func (h *AuthHandler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	result, err := h.authService.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, auth.SessionCookie, result.Token)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "admin logged in successfully",
		"user":    result.User,
	})
}

// HandleLogout clears both session cookies.
//
// HTTP: POST /api/user/logout
//
// WHY POST AND NOT GET?
// Logout is state-changing. GET would be vulnerable to CSRF and to
// browsers pre-fetching the URL.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w, auth.SessionCookie)
	h.clearSessionCookie(w, auth.OAuthSessionCookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// HandleCheckAuth reports the current identity.
//
// HTTP: GET /api/user/check-auth (behind OptionalUser)
//
// Anonymous is a normal answer here, not a failure: the storefront calls
// this on every page load to decide what to render, so it gets a 200 with
// {"user": null} rather than a 401.
func (h *AuthHandler) HandleCheckAuth(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil, "message": "not authenticated"})
		return
	}

	// Serve the fresh record, not the cookie snapshot — check-auth is the
	// one place clients expect current profile data.
	user, err := h.authService.CurrentUser(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// HandleGoogleLogin redirects the browser to Google's consent screen.
//
// HTTP: GET /api/auth/google
//
// CSRF PROTECTION VIA STATE:
// A random state value is stored in a short-lived cookie before the
// redirect; the callback verifies Google echoed the same value back.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes — long enough to approve, short enough to limit risk
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the OAuth flow.
//
// HTTP: GET /api/auth/google/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a Google profile
//  3. Upsert the user and issue the federated session cookie
//  4. Redirect to the storefront
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("google callback: missing state cookie")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid OAuth state"})
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("google callback: state mismatch")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid OAuth state"})
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// The user may have denied the consent screen.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("google callback: authorization denied", slog.String("error", errParam))
		http.Redirect(w, r, h.clientURL+"?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "missing OAuth code"})
		return
	}

	gUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google callback: exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "authentication failed"})
		return
	}

	result, err := h.authService.LoginOrRegisterGoogle(r.Context(), gUser)
	if err != nil {
		h.logger.Error("google callback: login failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "authentication failed"})
		return
	}

	// A fresh federated login supersedes any local session still in the
	// browser — clear it so exactly one credential source remains.
	h.clearSessionCookie(w, auth.SessionCookie)
	h.setSessionCookie(w, auth.OAuthSessionCookie, result.Token)

	http.Redirect(w, r, h.clientURL, http.StatusSeeOther)
}

// setSessionCookie stores a session token in an HttpOnly cookie.
// HttpOnly = JavaScript cannot read it (XSS protection). SameSite=Lax =
// sent on top-level navigations but not cross-site POSTs. Secure should
// be true behind HTTPS in production.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, name, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // delete immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
