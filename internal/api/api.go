// Package api exposes the JSON API: notes CRUD, search, AI suggestions,
// uploads, billing, and the public share page.
package api

import (
	"net/http"

	"github.com/inkpad/inkpad/internal/ai"
	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/billing"
	"github.com/inkpad/inkpad/internal/media"
	"github.com/inkpad/inkpad/internal/notes"
	"github.com/inkpad/inkpad/internal/ratelimit"
)

// Handler owns the HTTP surface over the domain services.
type Handler struct {
	notes    *notes.Service
	ai       ai.Suggester
	aiWindow *ratelimit.Window
	media    *media.Service
	billing  billing.Service
	auth     *auth.Middleware

	// baseURL is the fallback origin for checkout redirect URLs when
	// the request host is unusable.
	baseURL string
}

func NewHandler(
	notesService *notes.Service,
	suggester ai.Suggester,
	aiWindow *ratelimit.Window,
	mediaService *media.Service,
	billingService billing.Service,
	authMiddleware *auth.Middleware,
	baseURL string,
) *Handler {
	return &Handler{
		notes:    notesService,
		ai:       suggester,
		aiWindow: aiWindow,
		media:    mediaService,
		billing:  billingService,
		auth:     authMiddleware,
		baseURL:  baseURL,
	}
}

// RegisterRoutes mounts the API on mux. Owner-scoped routes sit behind
// the session middleware; public-share and webhook routes do not.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := func(fn http.HandlerFunc) http.Handler {
		return h.auth.RequireAuth(fn)
	}

	mux.Handle("GET /api/notes", requireAuth(h.ListNotes))
	mux.Handle("POST /api/notes", requireAuth(h.CreateNote))
	mux.Handle("GET /api/notes/{id}", requireAuth(h.GetNote))
	mux.Handle("PUT /api/notes/{id}", requireAuth(h.UpdateNote))
	mux.Handle("DELETE /api/notes/{id}", requireAuth(h.DeleteNote))
	mux.Handle("POST /api/notes/search", requireAuth(h.SearchNotes))

	mux.Handle("POST /api/ai-suggestion", requireAuth(h.AISuggestion))
	mux.Handle("POST /api/upload", requireAuth(h.Upload))

	mux.HandleFunc("GET /api/notes/public/{slug}", h.PublicNoteJSON)
	mux.HandleFunc("GET /p/{slug}", h.PublicNotePage)

	mux.Handle("POST /billing/checkout", requireAuth(h.BillingCheckout))
	mux.Handle("POST /billing/portal", requireAuth(h.BillingPortal))
	mux.HandleFunc("POST /billing/webhook", h.BillingWebhook)

	mux.HandleFunc("GET /healthz", h.Healthz)
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
