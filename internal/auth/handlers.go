package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/inkpad/inkpad/internal/obs"
)

const stateCookieName = "oauth_state"

// Handler serves the sign-in, callback, and logout routes.
type Handler struct {
	oidc          OIDCClient
	users         *UserService
	sessions      *SessionService
	secureCookies bool
}

// NewHandler creates the auth HTTP handler.
func NewHandler(oidc OIDCClient, users *UserService, sessions *SessionService, secureCookies bool) *Handler {
	return &Handler{
		oidc:          oidc,
		users:         users,
		sessions:      sessions,
		secureCookies: secureCookies,
	}
}

// RegisterRoutes mounts the auth routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/google/login", h.HandleLogin)
	mux.HandleFunc("GET /auth/google/callback", h.HandleCallback)
	mux.HandleFunc("POST /auth/logout", h.HandleLogout)
	mux.HandleFunc("GET /auth/whoami", h.HandleWhoami)
}

// HandleLogin starts the OIDC flow with a fresh CSRF state.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	http.Redirect(w, r, h.oidc.GetAuthURL(state), http.StatusFound)
}

// HandleCallback completes the OIDC flow: verifies state, exchanges the
// code, provisions the user, and starts a session.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}
	if state := r.URL.Query().Get("state"); state == "" || state != stateCookie.Value {
		http.Error(w, ErrInvalidState.Error(), http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		http.Error(w, "Authentication failed: "+errParam, http.StatusUnauthorized)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	claims, err := h.oidc.ExchangeCode(r.Context(), code)
	if err != nil {
		obs.From(r.Context()).Warn("oidc_exchange_failed", "pkg", "auth", "error", err)
		http.Error(w, "Failed to exchange code", http.StatusUnauthorized)
		return
	}

	user, err := h.users.Provision(r.Context(), claims)
	if err != nil {
		obs.From(r.Context()).Error("user_provision_failed", "pkg", "auth", "error", err)
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	sessionID, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	h.sessions.SetCookie(w, sessionID)

	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLogout ends the current session.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sessionID, err := SessionIDFromRequest(r); err == nil {
		_ = h.sessions.Delete(r.Context(), sessionID)
	}
	h.sessions.ClearCookie(w)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Logged out successfully"})
}

// WhoamiResponse describes the current session.
type WhoamiResponse struct {
	UserID        string `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

// HandleWhoami reports whether the request carries a valid session.
func (h *Handler) HandleWhoami(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	sessionID, err := SessionIDFromRequest(r)
	if err != nil {
		json.NewEncoder(w).Encode(WhoamiResponse{Authenticated: false})
		return
	}
	userID, err := h.sessions.Validate(r.Context(), sessionID)
	if err != nil {
		json.NewEncoder(w).Encode(WhoamiResponse{Authenticated: false})
		return
	}

	resp := WhoamiResponse{UserID: userID, Authenticated: true}
	if user, err := h.users.db.GetUserByID(r.Context(), userID); err == nil {
		resp.Email = user.Email
	}
	json.NewEncoder(w).Encode(resp)
}

func generateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
