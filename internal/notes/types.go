package notes

import (
	"bytes"
	"encoding/json"
	"time"
)

// Note represents a user's note with metadata.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Slug      string    `json:"slug"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteListResult represents a paginated list of notes.
type NoteListResult struct {
	Notes      []Note `json:"notes"`
	TotalCount int64  `json:"totalCount"`
	Limit      int64  `json:"limit"`
	Offset     int64  `json:"offset"`
}

// SearchResult is a single search hit with a highlighted snippet.
type SearchResult struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Snippet   string    `json:"snippet"`
	UpdatedAt time.Time `json:"updatedAt"`
	Rank      float64   `json:"rank"`
}

// SearchResults represents search results with metadata.
type SearchResults struct {
	Results []SearchResult `json:"results"`
	Query   string         `json:"query"`
}

// CreateNoteParams contains parameters for creating a note.
type CreateNoteParams struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Optional is a JSON field that distinguishes omitted, null, and set values.
// Set is true when the key appeared in the payload at all; Valid is true
// when the value was non-null.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// UnmarshalJSON is only invoked for keys present in the payload, which is
// what makes the omitted/null distinction possible.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON round-trips the wrapped value; unset fields marshal as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UpdateNoteParams contains parameters for a partial note update.
// Omitted fields keep their current value.
type UpdateNoteParams struct {
	Title    Optional[string] `json:"title"`
	Content  Optional[string] `json:"content"`
	ImageURL Optional[string] `json:"imageUrl"`
}
