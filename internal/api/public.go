package api

import (
	"net/http"

	"github.com/inkpad/inkpad/internal/obs"
	"github.com/inkpad/inkpad/internal/web"
)

// PublicNoteJSON handles GET /api/notes/public/{slug}. No authentication:
// slugs are the sharing capability.
func (h *Handler) PublicNoteJSON(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// PublicNotePage handles GET /p/{slug}: the HTML share view.
func (h *Handler) PublicNotePage(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := web.PublicNotePage(w, note); err != nil {
		obs.From(r.Context()).Error("public_page_render_failed", "pkg", "api",
			"slug", r.PathValue("slug"), "error", err)
	}
}
