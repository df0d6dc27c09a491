package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// userinfoURL is Google's OpenID Connect userinfo endpoint.
const userinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleUser is the portion of the userinfo response we care about.
// Google returns a larger object — we only unmarshal the fields we need.
type GoogleUser struct {
	Sub     string `json:"sub"`     // Google's stable account ID — never changes
	Email   string `json:"email"`   // primary email
	Name    string `json:"name"`    // display name
	Picture string `json:"picture"` // avatar URL
}

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization
// Code flow.
//
// FLOW:
//  1. We redirect the user to Google's authorization endpoint with our
//     ClientID and the requested scopes.
//  2. The user approves (or denies) on Google's consent screen.
//  3. Google redirects back to our CallbackURL with a short-lived "code".
//  4. We exchange the code for an access token (server-to-server, using
//     the ClientSecret — the token never touches the browser).
//  5. We call the userinfo endpoint with the token to get the profile.
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a GoogleProvider with the given credentials.
//
// You get ClientID and ClientSecret from the Google Cloud console
// ("APIs & Services" → "Credentials" → "OAuth client ID"). callbackURL
// must exactly match an authorized redirect URI configured there.
//
// Scopes: "openid email profile" — enough for identity, nothing more.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the URL to redirect the user to for authorization.
//
// The state is a random string we generate and store in a cookie before
// redirecting. When Google calls back, we verify the returned state matches
// the cookie — this prevents CSRF attacks where an attacker tricks a
// browser into completing an OAuth flow for the attacker's account.
func (p *GoogleProvider) AuthURL(state string) string {
	// prompt=select_account forces the account chooser even when the user
	// has a single active Google session, matching the storefront's
	// "switch account" affordance.
	return p.config.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange completes the OAuth flow: trades the authorization code for a
// Google user profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that adds the
	// "Authorization: Bearer <token>" header to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo returned status %d", resp.StatusCode)
	}

	var gUser GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gUser); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo response: %w", err)
	}

	if gUser.Sub == "" || gUser.Email == "" {
		return nil, fmt.Errorf("auth: Google returned an incomplete profile")
	}

	return &gUser, nil
}
