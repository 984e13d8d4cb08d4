package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"github.com/fathima-sithara/quickchat/internal/apperr"
)

type fakeStorage struct {
	key         string
	contentType string
	data        []byte
	calls       int
}

func (f *fakeStorage) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	f.key = key
	f.contentType = contentType
	f.data = data
	f.calls++
	return "https://cdn.test/" + key, nil
}

func pngDataURI(t *testing.T, width, height int) string {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 40, G: 80, B: 120, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestUploadDataURI_RejectsMalformedURIs(t *testing.T) {
	req := require.New(t)
	store := &fakeStorage{}
	u := NewUploader(store)
	ctx := context.Background()

	for _, in := range []string{
		"",
		"https://example.com/pic.png",
		"data:image/png,no-encoding-marker",
		"data:image/png;base64,!!!not-base64!!!",
		"data:image/png;base64,", // empty payload
	} {
		_, err := u.UploadDataURI(ctx, "u1", in)
		req.ErrorIs(err, apperr.ErrInvalidImage, "input %q", in)
	}
	req.Zero(store.calls)
}

func TestUploadDataURI_RejectsDisallowedContentType(t *testing.T) {
	req := require.New(t)
	store := &fakeStorage{}
	u := NewUploader(store)

	payload := base64.StdEncoding.EncodeToString([]byte("GIF89a"))
	_, err := u.UploadDataURI(context.Background(), "u1", "data:image/gif;base64,"+payload)
	req.ErrorIs(err, apperr.ErrInvalidImage)
	req.Zero(store.calls)
}

func TestUploadDataURI_RejectsOversizedPayload(t *testing.T) {
	req := require.New(t)
	store := &fakeStorage{}
	u := NewUploader(store)

	// size gate trips before any decode, so content does not matter
	payload := base64.StdEncoding.EncodeToString(make([]byte, maxImageBytes+1))
	_, err := u.UploadDataURI(context.Background(), "u1", "data:image/png;base64,"+payload)
	req.ErrorIs(err, apperr.ErrInvalidImage)
	req.Zero(store.calls)
}

func TestUploadDataURI_RejectsUndecodableImage(t *testing.T) {
	req := require.New(t)
	store := &fakeStorage{}
	u := NewUploader(store)

	payload := base64.StdEncoding.EncodeToString([]byte("not a real png"))
	_, err := u.UploadDataURI(context.Background(), "u1", "data:image/png;base64,"+payload)
	req.ErrorIs(err, apperr.ErrInvalidImage)
	req.Zero(store.calls)
}

func TestUploadDataURI_StoresSmallImageAsIs(t *testing.T) {
	req := require.New(t)
	store := &fakeStorage{}
	u := NewUploader(store)

	url, err := u.UploadDataURI(context.Background(), "u1", pngDataURI(t, 120, 80))
	req.NoError(err)
	req.Equal("https://cdn.test/"+store.key, url)
	req.True(strings.HasPrefix(store.key, "chat-images/u1/"), "key %q", store.key)
	req.True(strings.HasSuffix(store.key, ".png"), "key %q", store.key)
	req.Equal("image/png", store.contentType)

	img, err := imaging.Decode(bytes.NewReader(store.data))
	req.NoError(err)
	req.Equal(120, img.Bounds().Dx())
	req.Equal(80, img.Bounds().Dy())
}

func TestUploadDataURI_DownscalesWideImages(t *testing.T) {
	req := require.New(t)
	store := &fakeStorage{}
	u := NewUploader(store)

	_, err := u.UploadDataURI(context.Background(), "u1", pngDataURI(t, 2000, 500))
	req.NoError(err)

	img, err := imaging.Decode(bytes.NewReader(store.data))
	req.NoError(err)
	req.Equal(maxImageWidth, img.Bounds().Dx())
	// aspect ratio preserved: 2000x500 scales to 1600x400
	req.Equal(400, img.Bounds().Dy())
}

func TestUploadDataURI_JPEGKeepsJPGExtension(t *testing.T) {
	req := require.New(t)
	store := &fakeStorage{}
	u := NewUploader(store)

	img := imaging.New(60, 60, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	req.NoError(imaging.Encode(&buf, img, imaging.JPEG))
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	_, err := u.UploadDataURI(context.Background(), "u1", uri)
	req.NoError(err)
	req.True(strings.HasSuffix(store.key, ".jpg"), "key %q", store.key)
	req.Equal("image/jpeg", store.contentType)
}
