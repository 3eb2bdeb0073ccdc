package auth

import (
	"context"
	"net/http"

	"github.com/inkpad/inkpad/internal/db"
	"github.com/inkpad/inkpad/internal/obs"
)

type contextKey string

const userKey contextKey = "user"

// Middleware authenticates requests from the session cookie and attaches
// the user row to the request context.
type Middleware struct {
	sessions *SessionService
	db       *db.DB
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(sessions *SessionService, database *db.DB) *Middleware {
	return &Middleware{sessions: sessions, db: database}
}

// RequireAuth rejects requests without a valid session with 401.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := m.resolve(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// OptionalAuth attaches the user when a valid session is present and
// continues anonymously otherwise.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := m.resolve(r); ok {
			r = r.WithContext(withUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) resolve(r *http.Request) (*db.User, bool) {
	sessionID, err := SessionIDFromRequest(r)
	if err != nil {
		return nil, false
	}
	userID, err := m.sessions.Validate(r.Context(), sessionID)
	if err != nil {
		return nil, false
	}
	user, err := m.db.GetUserByID(r.Context(), userID)
	if err != nil {
		return nil, false
	}
	return user, true
}

func withUser(ctx context.Context, user *db.User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return obs.WithUserID(ctx, user.ID)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *db.User {
	user, _ := ctx.Value(userKey).(*db.User)
	return user
}

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return user.ID
	}
	return ""
}

// IsAuthenticated reports whether the context carries a user.
func IsAuthenticated(ctx context.Context) bool {
	return UserFromContext(ctx) != nil
}
