package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/notes"
)

// ListNotes handles GET /api/notes. The first list for a new user seeds
// the welcome note.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	limit := queryInt64(r, "limit", notes.DefaultLimit)
	offset := queryInt64(r, "offset", 0)

	result, err := h.notes.List(r.Context(), auth.UserIDFromContext(r.Context()), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var params notes.CreateNoteParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeBadRequest(w, r, "invalid JSON body")
		return
	}
	if params.Title == "" {
		writeBadRequest(w, r, "title is required")
		return
	}

	note, err := h.notes.Create(r.Context(), auth.UserIDFromContext(r.Context()), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// GetNote handles GET /api/notes/{id}. A note owned by someone else is
// indistinguishable from a missing one.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.Get(r.Context(), auth.UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PUT /api/notes/{id}. Fields absent from the body
// keep their value; an explicit null clears imageUrl.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var params notes.UpdateNoteParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeBadRequest(w, r, "invalid JSON body")
		return
	}

	note, err := h.notes.Update(r.Context(), auth.UserIDFromContext(r.Context()), r.PathValue("id"), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	err := h.notes.Delete(r.Context(), auth.UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchRequest is the body for POST /api/notes/search.
type SearchRequest struct {
	Query  string `json:"query"`
	Limit  int64  `json:"limit,omitempty"`
	Offset int64  `json:"offset,omitempty"`
}

// SearchNotes handles POST /api/notes/search using full-text search.
func (h *Handler) SearchNotes(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeBadRequest(w, r, "query is required")
		return
	}

	results, err := h.notes.Search(r.Context(), auth.UserIDFromContext(r.Context()), req.Query, req.Limit, req.Offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func queryInt64(r *http.Request, key string, fallback int64) int64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
