package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const mockCodeTTL = 10 * time.Minute

// MockOIDCProvider is a self-contained OIDC stand-in for local
// development. Instead of redirecting to Google it serves a consent page
// where the developer types an email to sign in as, so the full login
// flow works in --no-oidc mode.
type MockOIDCProvider struct {
	baseURL string

	mu    sync.Mutex
	codes map[string]pendingCode
}

type pendingCode struct {
	email     string
	createdAt time.Time
}

// NewMockOIDCProvider creates the mock provider. baseURL is the server's
// own origin, where the consent routes are mounted.
func NewMockOIDCProvider(baseURL string) *MockOIDCProvider {
	return &MockOIDCProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		codes:   make(map[string]pendingCode),
	}
}

// SetBaseURL updates the origin. Used in tests where the server URL is
// not known until httptest starts.
func (p *MockOIDCProvider) SetBaseURL(baseURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.baseURL = strings.TrimRight(baseURL, "/")
}

// GetAuthURL points at the local consent page instead of Google.
func (p *MockOIDCProvider) GetAuthURL(state string) string {
	p.mu.Lock()
	base := p.baseURL
	p.mu.Unlock()
	return fmt.Sprintf("%s/auth/mock-oidc/authorize?state=%s", base, url.QueryEscape(state))
}

// ExchangeCode redeems a code issued by the consent form. Codes are
// single-use and expire after ten minutes.
func (p *MockOIDCProvider) ExchangeCode(_ context.Context, code string) (*Claims, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending, ok := p.codes[code]
	if !ok {
		return nil, ErrCodeExchangeFailed
	}
	delete(p.codes, code)

	if time.Since(pending.createdAt) > mockCodeTTL {
		return nil, ErrCodeExchangeFailed
	}

	return &Claims{
		Sub:           "mock-" + pending.email,
		Email:         pending.email,
		Name:          "Test User",
		EmailVerified: true,
	}, nil
}

// RegisterRoutes mounts the consent page and its form handler.
func (p *MockOIDCProvider) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/mock-oidc/authorize", p.handleAuthorize)
	mux.HandleFunc("POST /auth/mock-oidc/authorize", p.handleConsent)
}

func (p *MockOIDCProvider) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		http.Error(w, "Missing state parameter", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><title>Mock Google Sign-In</title>
<style>
body { font-family: system-ui; max-width: 400px; margin: 80px auto; padding: 0 20px; }
h1 { font-size: 1.3em; color: #333; }
.note { background: #fff3cd; border: 1px solid #ffc107; border-radius: 8px; padding: 12px; margin: 16px 0; font-size: 0.9em; }
input[type=email] { width: 100%%; padding: 10px; border: 1px solid #ccc; border-radius: 6px; font-size: 1em; box-sizing: border-box; }
button { width: 100%%; padding: 10px; background: #4285F4; color: white; border: none; border-radius: 6px; font-size: 1em; cursor: pointer; margin-top: 12px; }
</style></head>
<body>
<h1>Mock Google Sign-In</h1>
<div class="note">This is a local mock. In production, this redirects to Google.</div>
<form method="POST" action="/auth/mock-oidc/authorize">
<input type="hidden" name="state" value="%s">
<label for="email">Sign in as:</label><br><br>
<input type="email" id="email" name="email" value="test@example.com" required autofocus>
<button type="submit">Sign In</button>
</form>
</body></html>`, state)
}

func (p *MockOIDCProvider) handleConsent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	state := r.FormValue("state")
	email := r.FormValue("email")
	if state == "" || email == "" {
		http.Error(w, "Missing state or email", http.StatusBadRequest)
		return
	}

	codeBytes := make([]byte, 32)
	if _, err := rand.Read(codeBytes); err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	code := hex.EncodeToString(codeBytes)

	p.mu.Lock()
	p.codes[code] = pendingCode{email: email, createdAt: time.Now()}
	p.mu.Unlock()

	callbackURL := fmt.Sprintf("/auth/google/callback?code=%s&state=%s",
		url.QueryEscape(code), url.QueryEscape(state))
	http.Redirect(w, r, callbackURL, http.StatusFound)
}
