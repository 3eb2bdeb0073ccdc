package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/inkpad/inkpad/internal/ai"
	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/errs"
	"github.com/inkpad/inkpad/internal/ratelimit"
	"github.com/inkpad/inkpad/internal/urlutil"
)

// SuggestionRequest is the body for POST /api/ai-suggestion.
type SuggestionRequest struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}

// SuggestionResponse carries the generated text.
type SuggestionResponse struct {
	Suggestion string `json:"suggestion"`
}

// AISuggestion handles POST /api/ai-suggestion. The fixed-window limiter
// runs before any body parsing so blocked callers cost nothing upstream.
func (h *Handler) AISuggestion(w http.ResponseWriter, r *http.Request) {
	identity := ratelimit.Identity(auth.UserIDFromContext(r.Context()), urlutil.ClientIP(r))
	decision := h.aiWindow.Allow(identity)
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	if !decision.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfterSeconds(time.Now())))
		writeError(w, r, errs.New(errs.RateLimited, "too many AI requests, slow down"))
		return
	}

	var req SuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "invalid JSON body")
		return
	}

	kind, err := ai.ParseKind(req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}

	suggestion, err := h.ai.Suggest(r.Context(), req.Content, kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuggestionResponse{Suggestion: suggestion})
}
