package media_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkpad/inkpad/internal/errs"
	"github.com/inkpad/inkpad/internal/media"
)

// pngHeader is enough of a payload to look like a real file.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestUploadImage_RoundTrip(t *testing.T) {
	t.Parallel()
	storage := media.TestStorage(t, "notes-media")
	svc := media.NewService(storage)
	ctx := context.Background()

	up, err := svc.UploadImage(ctx, "user-1", "image/png", pngHeader)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(up.Key, "uploads/user-1/"))
	require.True(t, strings.HasSuffix(up.Key, ".png"))
	require.Equal(t, storage.PublicURL(up.Key), up.URL)
	require.Equal(t, len(pngHeader), up.SizeBytes)

	stored, err := storage.Get(ctx, up.Key)
	require.NoError(t, err)
	require.Equal(t, pngHeader, stored)
}

func TestUploadImage_KeysAreUnique(t *testing.T) {
	t.Parallel()
	svc := media.NewService(media.TestStorage(t, "notes-media"))
	ctx := context.Background()

	first, err := svc.UploadImage(ctx, "user-1", "image/jpeg", []byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	second, err := svc.UploadImage(ctx, "user-1", "image/jpeg", []byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	require.NotEqual(t, first.Key, second.Key)
}

func TestUploadImage_RejectsUnsupportedType(t *testing.T) {
	t.Parallel()
	svc := media.NewService(media.TestStorage(t, "notes-media"))

	_, err := svc.UploadImage(context.Background(), "user-1", "application/pdf", []byte("%PDF-"))
	require.Error(t, err)
	require.Equal(t, errs.InvalidArgument, errs.CodeOf(err))
}

func TestUploadImage_RejectsOversizedPayload(t *testing.T) {
	t.Parallel()
	svc := media.NewService(media.TestStorage(t, "notes-media"))

	big := bytes.Repeat([]byte{0x00}, media.MaxUploadBytes+1)
	_, err := svc.UploadImage(context.Background(), "user-1", "image/png", big)
	require.Error(t, err)
	require.Equal(t, errs.InvalidArgument, errs.CodeOf(err))
}

func TestUploadImage_RejectsEmptyPayloadAndAnonymous(t *testing.T) {
	t.Parallel()
	svc := media.NewService(media.TestStorage(t, "notes-media"))
	ctx := context.Background()

	_, err := svc.UploadImage(ctx, "user-1", "image/png", nil)
	require.Equal(t, errs.InvalidArgument, errs.CodeOf(err))

	_, err = svc.UploadImage(ctx, "", "image/png", pngHeader)
	require.Equal(t, errs.Unauthenticated, errs.CodeOf(err))
}

func TestStorage_DeleteAndMissingObject(t *testing.T) {
	t.Parallel()
	storage := media.TestStorage(t, "notes-media")
	ctx := context.Background()

	require.NoError(t, storage.Put(ctx, "uploads/u/x.png", pngHeader, "image/png"))
	require.NoError(t, storage.Delete(ctx, "uploads/u/x.png"))

	_, err := storage.Get(ctx, "uploads/u/x.png")
	require.ErrorIs(t, err, media.ErrObjectNotFound)
}
