// Package notes implements note CRUD, slug assignment, welcome-note seeding,
// and full-text search on top of the db layer.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/inkpad/inkpad/internal/db"
	"github.com/inkpad/inkpad/internal/errs"
	"github.com/inkpad/inkpad/internal/obs"
	"github.com/inkpad/inkpad/internal/slug"
)

const (
	// DefaultLimit is the default number of notes to return in a list.
	DefaultLimit = 50

	// MaxLimit is the maximum number of notes to return in a list.
	MaxLimit = 1000

	// MaxTitleLen mirrors the schema CHECK on notes.title.
	MaxTitleLen = 200

	// MaxContentLen mirrors the schema CHECK on notes.content (1 MiB).
	MaxContentLen = 1 << 20

	// slugProbeLimit bounds the uniquifying suffix probe.
	slugProbeLimit = 10000

	// insertRetryLimit bounds slug-collision retries when concurrent creates
	// race past the existence probe.
	insertRetryLimit = 3
)

// Service handles note operations for all users.
type Service struct {
	db   *db.DB
	now  func() time.Time
	seed singleflight.Group
}

// NewService creates a new notes service.
func NewService(database *db.DB) *Service {
	return &Service{
		db:  database,
		now: time.Now,
	}
}

// SetNowFunc overrides the clock. Tests only.
func (s *Service) SetNowFunc(now func() time.Time) {
	s.now = now
}

func noteFromRow(n *db.Note) *Note {
	out := &Note{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Slug:      n.Slug,
		CreatedAt: time.Unix(n.CreatedAt, 0).UTC(),
		UpdatedAt: time.Unix(n.UpdatedAt, 0).UTC(),
	}
	if n.ImageURL.Valid {
		out.ImageURL = n.ImageURL.String
	}
	return out
}

func validateTitle(title string) error {
	if title == "" {
		return errs.New(errs.InvalidArgument, "title is required")
	}
	if len(title) > MaxTitleLen {
		return errs.New(errs.InvalidArgument, "title exceeds 200 characters")
	}
	return nil
}

func validateContent(content string) error {
	if len(content) > MaxContentLen {
		return errs.New(errs.InvalidArgument, "content exceeds 1MB")
	}
	return nil
}

// uniqueSlug probes for a free slug starting from the base and appending
// -1, -2, ... until one is unused. excludeID exempts the note being updated
// so a title edit that normalizes back to its own slug keeps it. The result
// can still lose a race with a concurrent insert; callers retry on a UNIQUE
// violation.
func (s *Service) uniqueSlug(ctx context.Context, base, excludeID string) (string, error) {
	for attempt := 0; attempt < slugProbeLimit; attempt++ {
		candidate := slug.WithSuffix(base, attempt)
		exists, err := s.db.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", errs.Wrap(errs.Unavailable, "failed to check slug", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", errs.New(errs.Internal, "could not find a free slug")
}

// Create creates a new note for the user, assigning a unique slug derived
// from the title.
func (s *Service) Create(ctx context.Context, userID string, params CreateNoteParams) (*Note, error) {
	if err := validateTitle(params.Title); err != nil {
		return nil, err
	}
	if err := validateContent(params.Content); err != nil {
		return nil, err
	}

	base := slug.Make(params.Title)
	now := s.now().UTC()

	var lastErr error
	for retry := 0; retry < insertRetryLimit; retry++ {
		assigned, err := s.uniqueSlug(ctx, base, "")
		if err != nil {
			return nil, err
		}

		row := &db.Note{
			ID:        uuid.New().String(),
			UserID:    userID,
			Title:     params.Title,
			Content:   params.Content,
			Slug:      assigned,
			ImageURL:  sql.NullString{String: params.ImageURL, Valid: params.ImageURL != ""},
			CreatedAt: now.Unix(),
			UpdatedAt: now.Unix(),
		}
		err = s.db.InsertNote(ctx, row)
		if err == nil {
			obs.From(ctx).Debug("note_created", "pkg", "notes", "note_id", row.ID, "slug", assigned)
			return noteFromRow(row), nil
		}
		if db.IsUniqueConstraintError(err) {
			// Lost the probe-to-insert race; probe again.
			lastErr = err
			continue
		}
		return nil, errs.Wrap(errs.Unavailable, "failed to create note", err)
	}
	return nil, errs.Wrap(errs.Conflict, "could not assign a unique slug", lastErr)
}

// Get retrieves a note by id, scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, noteID string) (*Note, error) {
	if noteID == "" {
		return nil, errs.New(errs.InvalidArgument, "note id is required")
	}
	row, err := s.db.GetNoteForUser(ctx, userID, noteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.NotFound, "note not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to read note", err)
	}
	return noteFromRow(row), nil
}

// GetBySlug retrieves a note by its public slug, regardless of owner.
func (s *Service) GetBySlug(ctx context.Context, noteSlug string) (*Note, error) {
	if noteSlug == "" {
		return nil, errs.New(errs.InvalidArgument, "slug is required")
	}
	row, err := s.db.GetNoteBySlug(ctx, noteSlug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.NotFound, "note not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to read note", err)
	}
	return noteFromRow(row), nil
}

// List returns the user's notes, most recently updated first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int64) (*NoteListResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	total, err := s.db.CountNotesForUser(ctx, userID)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to count notes", err)
	}
	if total == 0 {
		// First fetch for a new user plants the welcome note.
		if err := s.EnsureSeeded(ctx, userID); err != nil {
			return nil, err
		}
		total, err = s.db.CountNotesForUser(ctx, userID)
		if err != nil {
			return nil, errs.Wrap(errs.Unavailable, "failed to count notes", err)
		}
	}

	rows, err := s.db.ListNotesForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to list notes", err)
	}

	out := &NoteListResult{
		Notes:      make([]Note, 0, len(rows)),
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	}
	for i := range rows {
		out.Notes = append(out.Notes, *noteFromRow(&rows[i]))
	}
	return out, nil
}

// Update applies a partial update to a note. Fields absent from params keep
// their current value; setting title regenerates the slug. Last write wins
// when concurrent updates race.
func (s *Service) Update(ctx context.Context, userID, noteID string, params UpdateNoteParams) (*Note, error) {
	if noteID == "" {
		return nil, errs.New(errs.InvalidArgument, "note id is required")
	}

	existing, err := s.db.GetNoteForUser(ctx, userID, noteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.NotFound, "note not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to read note", err)
	}

	merged := *existing
	titleChanged := false
	if params.Title.Set {
		if !params.Title.Valid {
			return nil, errs.New(errs.InvalidArgument, "title cannot be null")
		}
		if err := validateTitle(params.Title.Value); err != nil {
			return nil, err
		}
		titleChanged = params.Title.Value != existing.Title
		merged.Title = params.Title.Value
	}
	if params.Content.Set {
		if !params.Content.Valid {
			return nil, errs.New(errs.InvalidArgument, "content cannot be null")
		}
		if err := validateContent(params.Content.Value); err != nil {
			return nil, err
		}
		merged.Content = params.Content.Value
	}
	if params.ImageURL.Set {
		if params.ImageURL.Valid {
			merged.ImageURL = sql.NullString{String: params.ImageURL.Value, Valid: true}
		} else {
			merged.ImageURL = sql.NullString{}
		}
	}

	merged.UpdatedAt = s.now().UTC().Unix()

	var lastErr error
	for retry := 0; retry < insertRetryLimit; retry++ {
		if titleChanged {
			base := slug.Make(merged.Title)
			assigned, err := s.uniqueSlug(ctx, base, merged.ID)
			if err != nil {
				return nil, err
			}
			merged.Slug = assigned
		}

		n, err := s.db.UpdateNote(ctx, &merged)
		if err == nil {
			if n == 0 {
				return nil, errs.New(errs.NotFound, "note not found")
			}
			return noteFromRow(&merged), nil
		}
		if titleChanged && db.IsUniqueConstraintError(err) {
			lastErr = err
			continue
		}
		return nil, errs.Wrap(errs.Unavailable, "failed to update note", err)
	}
	return nil, errs.Wrap(errs.Conflict, "could not assign a unique slug", lastErr)
}

// Delete removes a note, scoped to its owner.
func (s *Service) Delete(ctx context.Context, userID, noteID string) error {
	if noteID == "" {
		return errs.New(errs.InvalidArgument, "note id is required")
	}
	n, err := s.db.DeleteNoteForUser(ctx, userID, noteID)
	if err != nil {
		return errs.Wrap(errs.Unavailable, "failed to delete note", err)
	}
	if n == 0 {
		return errs.New(errs.NotFound, "note not found")
	}
	return nil
}

// Search runs a full-text search over the user's notes.
func (s *Service) Search(ctx context.Context, userID, query string, limit, offset int64) (*SearchResults, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	hits, err := s.db.SearchNotesForUser(ctx, userID, query, limit, offset)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "search failed", err)
	}

	out := &SearchResults{Query: query, Results: make([]SearchResult, 0, len(hits))}
	for _, h := range hits {
		out.Results = append(out.Results, SearchResult{
			ID:        h.ID,
			Title:     h.Title,
			Slug:      h.Slug,
			Snippet:   h.Snippet,
			UpdatedAt: time.Unix(h.UpdatedAt, 0).UTC(),
			Rank:      h.Rank,
		})
	}
	return out, nil
}
