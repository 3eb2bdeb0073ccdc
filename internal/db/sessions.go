package db

import (
	"context"
	"fmt"
)

// CreateSession inserts a session row.
func (d *DB) CreateSession(ctx context.Context, s *Session) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`, s.SessionID, s.UserID, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession fetches a session by id. Returns sql.ErrNoRows if absent.
// Expiry is the caller's concern; expired rows are still returned.
func (d *DB) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	err := d.db.QueryRowContext(ctx, `
		SELECT session_id, user_id, expires_at, created_at
		FROM sessions WHERE session_id = ?
	`, sessionID).Scan(&s.SessionID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes a session row. Deleting a missing session is not an error.
func (d *DB) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before cutoff,
// returning the number of rows removed.
func (d *DB) DeleteExpiredSessions(ctx context.Context, cutoff int64) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
