package api

import (
	"io"
	"net/http"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/media"
)

// UploadResponse mirrors the shape editor clients expect from the upload
// endpoint.
type UploadResponse struct {
	Success bool       `json:"success"`
	Data    UploadData `json:"data"`
}

type UploadData struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Bytes     int    `json:"bytes"`
}

// Upload handles POST /api/upload: a multipart form with a single "file"
// part. The declared type is cross-checked against the sniffed one.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadBytes+4096)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, r, "multipart form must carry a \"file\" part")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeBadRequest(w, r, "upload exceeds the size limit")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	up, err := h.media.UploadImage(r.Context(), auth.UserIDFromContext(r.Context()), contentType, data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Data: UploadData{
			PublicID:  up.Key,
			SecureURL: up.URL,
			URL:       up.URL,
			Width:     up.Width,
			Height:    up.Height,
			Format:    up.Format,
			Bytes:     up.SizeBytes,
		},
	})
}
