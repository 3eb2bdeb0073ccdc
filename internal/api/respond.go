package api

import (
	"encoding/json"
	"net/http"

	"github.com/inkpad/inkpad/internal/errs"
	"github.com/inkpad/inkpad/internal/obs"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string    `json:"error"`
	Code  errs.Code `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps a coded error to its HTTP status. Unclassified errors
// surface as a generic internal message; the detail stays in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.CodeOf(err)
	status := errs.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		obs.From(r.Context()).Error("request_failed", "pkg", "api",
			"path", r.URL.Path, "code", string(code), "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: errs.MessageOf(err), Code: code})
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, errs.New(errs.InvalidArgument, message))
}
