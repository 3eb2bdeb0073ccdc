package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/inkpad/inkpad/internal/errs"
	"github.com/inkpad/inkpad/internal/obs"
)

// MaxUploadBytes caps a single image upload.
const MaxUploadBytes = 5 << 20

var extensionByType = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is the stored result of an accepted image.
type Upload struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SizeBytes int    `json:"size_bytes"`
}

// Service validates uploads and writes them to object storage.
type Service struct {
	storage *Storage
	newKey  func() string
}

func NewService(storage *Storage) *Service {
	return &Service{storage: storage, newKey: uuid.NewString}
}

// UploadImage stores an image for userID and returns its public URL.
// The declared content type must be an allowed image type and the payload
// must fit under MaxUploadBytes.
func (s *Service) UploadImage(ctx context.Context, userID, contentType string, data []byte) (*Upload, error) {
	if userID == "" {
		return nil, errs.New(errs.Unauthenticated, "upload requires a signed-in user")
	}
	ext, ok := extensionByType[contentType]
	if !ok {
		return nil, errs.New(errs.InvalidArgument, fmt.Sprintf("unsupported content type %q", contentType))
	}
	if len(data) == 0 {
		return nil, errs.New(errs.InvalidArgument, "empty upload")
	}
	if len(data) > MaxUploadBytes {
		return nil, errs.New(errs.InvalidArgument, "upload exceeds 5 MiB limit")
	}

	key := path.Join("uploads", userID, s.newKey()+ext)
	if err := s.storage.Put(ctx, key, data, contentType); err != nil {
		return nil, errs.Wrap(errs.ProviderError, "store upload", err)
	}

	// Dimensions are best effort; webp has no stdlib decoder and reports 0x0.
	width, height := 0, 0
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		width, height = cfg.Width, cfg.Height
	}

	obs.From(ctx).Info("image_uploaded", "pkg", "media",
		"user_id", userID, "key", key, "bytes", len(data))
	return &Upload{
		Key:       key,
		URL:       s.storage.PublicURL(key),
		Format:    strings.TrimPrefix(ext, "."),
		Width:     width,
		Height:    height,
		SizeBytes: len(data),
	}, nil
}
