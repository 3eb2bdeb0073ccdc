package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const noteColumns = `id, user_id, title, content, slug, image_url, created_at, updated_at`

func scanNote(row *sql.Row) (*Note, error) {
	var n Note
	err := row.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Content, &n.Slug,
		&n.ImageURL, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// InsertNote inserts a note row. A UNIQUE violation on slug or id is
// returned unwrapped so callers can retry with a fresh slug.
func (d *DB) InsertNote(ctx context.Context, n *Note) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, title, content, slug, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Title, n.Content, n.Slug, n.ImageURL, n.CreatedAt, n.UpdatedAt)
	return err
}

// InsertNoteIgnoringConflict inserts a note, silently skipping rows whose id
// already exists. Used for idempotent seeding of the welcome note.
func (d *DB) InsertNoteIgnoringConflict(ctx context.Context, n *Note) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO notes (id, user_id, title, content, slug, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Title, n.Content, n.Slug, n.ImageURL, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to seed note: %w", err)
	}
	return nil
}

// GetNoteForUser fetches a note by id scoped to its owner. Returns
// sql.ErrNoRows when the note does not exist or belongs to another user.
func (d *DB) GetNoteForUser(ctx context.Context, userID, noteID string) (*Note, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`, noteID, userID)
	return scanNote(row)
}

// GetNoteBySlug fetches a note by slug regardless of owner. Slug lookups
// back the public note pages.
func (d *DB) GetNoteBySlug(ctx context.Context, slug string) (*Note, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE slug = ?`, slug)
	return scanNote(row)
}

// ListNotesForUser returns the user's notes ordered by most recently updated.
func (d *DB) ListNotesForUser(ctx context.Context, userID string, limit, offset int64) ([]Note, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE user_id = ?
		ORDER BY updated_at DESC, id
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Title, &n.Content, &n.Slug,
			&n.ImageURL, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}
	return notes, nil
}

// CountNotesForUser returns how many notes the user owns.
func (d *DB) CountNotesForUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return count, nil
}

// UpdateNote writes the full field set of an existing note scoped to its
// owner. The caller computes the merged values. A UNIQUE violation on slug
// is returned unwrapped for retry handling.
func (d *DB) UpdateNote(ctx context.Context, n *Note) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE notes
		SET title = ?, content = ?, slug = ?, image_url = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, n.Title, n.Content, n.Slug, n.ImageURL, n.UpdatedAt, n.ID, n.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteNoteForUser removes a note scoped to its owner, returning the number
// of rows deleted.
func (d *DB) DeleteNoteForUser(ctx context.Context, userID, noteID string) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`, noteID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete note: %w", err)
	}
	return res.RowsAffected()
}

// SlugExists reports whether any note other than excludeID already uses
// slug. excludeID lets a title update keep the note's own current slug.
func (d *DB) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var one int
	err := d.db.QueryRowContext(ctx,
		`SELECT 1 FROM notes WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return true, nil
}

// NoteSearchResult is a single FTS search hit with a highlighted snippet.
type NoteSearchResult struct {
	ID        string
	Title     string
	Slug      string
	Snippet   string
	UpdatedAt int64
	Rank      float64
}

// SearchNotesForUser performs an FTS5 search over the user's notes.
// The query is user input and is escaped into prefix terms before matching.
// Title matches are weighted 5x over content matches.
func (d *DB) SearchNotesForUser(ctx context.Context, userID, query string, limit, offset int64) ([]NoteSearchResult, error) {
	escaped := EscapeFTSQuery(query)
	if escaped == "" {
		return nil, nil
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT n.id, n.title, n.slug,
		       snippet(fts_notes, -1, '**', '**', '...', 32) AS snippet,
		       n.updated_at,
		       bm25(fts_notes, 5.0, 1.0) AS rank
		FROM notes n
		JOIN fts_notes f ON n.rowid = f.rowid
		WHERE fts_notes MATCH ? AND n.user_id = ?
		ORDER BY rank
		LIMIT ? OFFSET ?
	`, escaped, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("FTS search failed: %w", err)
	}
	defer rows.Close()

	var results []NoteSearchResult
	for rows.Next() {
		var r NoteSearchResult
		var snippet sql.NullString
		if err := rows.Scan(&r.ID, &r.Title, &r.Slug, &snippet, &r.UpdatedAt, &r.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		if snippet.Valid {
			r.Snippet = snippet.String
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}
	return results, nil
}

// EscapeFTSQuery converts human search input into safe FTS5 MATCH syntax.
// Every word becomes a prefix term (pub -> pub*); characters that would be
// FTS5 operators are stripped. Returns "" when nothing searchable remains.
func EscapeFTSQuery(query string) string {
	query = strings.ReplaceAll(query, "\x00", "")

	var terms []string
	for _, word := range strings.Fields(query) {
		clean := sanitizeFTSWord(word)
		if clean != "" {
			terms = append(terms, clean+"*")
		}
	}
	return strings.Join(terms, " ")
}

// sanitizeFTSWord strips characters that cause FTS5 syntax errors.
// Keeps letters, digits, underscore, and non-ASCII runes.
func sanitizeFTSWord(word string) string {
	clean := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r > 127 {
			return r
		}
		return -1
	}, word)
	return strings.ToLower(clean)
}
