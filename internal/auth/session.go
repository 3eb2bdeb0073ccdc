package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/inkpad/inkpad/internal/db"
	"github.com/inkpad/inkpad/internal/errs"
	"github.com/inkpad/inkpad/internal/obs"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

const (
	sessionIDBytes = 32 // 256 bits of entropy per session id

	// SessionCookieName is the cookie that carries the session id.
	SessionCookieName = "session_id"
)

// SessionService issues and validates cookie sessions backed by the
// sessions table.
type SessionService struct {
	db            *db.DB
	duration      time.Duration
	secureCookies bool
	now           func() time.Time
}

// NewSessionService creates a session service. secureCookies should be
// true everywhere except plain-HTTP local development.
func NewSessionService(database *db.DB, duration time.Duration, secureCookies bool) *SessionService {
	return &SessionService{
		db:            database,
		duration:      duration,
		secureCookies: secureCookies,
		now:           time.Now,
	}
}

// SetNowFunc overrides the clock for tests.
func (s *SessionService) SetNowFunc(now func() time.Time) { s.now = now }

// Create starts a session for a user and returns its id for the cookie.
func (s *SessionService) Create(ctx context.Context, userID string) (string, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return "", errs.Wrap(errs.Internal, "failed to generate session id", err)
	}

	now := s.now()
	err = s.db.CreateSession(ctx, &db.Session{
		SessionID: sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(s.duration).Unix(),
		CreatedAt: now.Unix(),
	})
	if err != nil {
		return "", errs.Wrap(errs.Unavailable, "failed to store session", err)
	}
	return sessionID, nil
}

// Validate resolves a session id to its user. Expired sessions are
// rejected and removed.
func (s *SessionService) Validate(ctx context.Context, sessionID string) (string, error) {
	session, err := s.db.GetSession(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", errs.Wrap(errs.Unavailable, "failed to read session", err)
	}

	if session.ExpiresAt <= s.now().Unix() {
		_ = s.db.DeleteSession(ctx, sessionID)
		return "", ErrSessionExpired
	}
	return session.UserID, nil
}

// Delete ends a session (logout).
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	if err := s.db.DeleteSession(ctx, sessionID); err != nil {
		return errs.Wrap(errs.Unavailable, "failed to delete session", err)
	}
	return nil
}

// Cleanup removes expired sessions and returns how many were dropped.
func (s *SessionService) Cleanup(ctx context.Context) (int64, error) {
	n, err := s.db.DeleteExpiredSessions(ctx, s.now().Unix())
	if err != nil {
		return 0, errs.Wrap(errs.Unavailable, "failed to sweep sessions", err)
	}
	return n, nil
}

// StartSweeper runs Cleanup on the given interval until ctx is canceled.
func (s *SessionService) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := s.Cleanup(ctx); err != nil {
					obs.From(ctx).Warn("session_sweep_failed", "pkg", "auth", "error", err)
				} else if n > 0 {
					obs.From(ctx).Debug("session_sweep", "pkg", "auth", "removed", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// SetCookie writes the session cookie on the response.
func (s *SessionService) SetCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.duration.Seconds()),
	})
}

// ClearCookie removes the session cookie.
func (s *SessionService) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// SessionIDFromRequest reads the session id cookie.
func SessionIDFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrSessionNotFound
		}
		return "", err
	}
	return cookie.Value, nil
}

func generateSessionID() (string, error) {
	bytes := make([]byte, sessionIDBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
