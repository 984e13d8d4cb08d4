package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/fathima-sithara/quickchat/internal/apperr"
)

const (
	maxImageBytes = 10 * 1024 * 1024
	maxImageWidth = 1600
)

var allowedTypes = map[string]imaging.Format{
	"image/png":  imaging.PNG,
	"image/jpeg": imaging.JPEG,
	"image/jpg":  imaging.JPEG,
}

// Uploader turns client-supplied data URIs into stored object URLs.
type Uploader struct {
	store Storage
}

func NewUploader(store Storage) *Uploader {
	return &Uploader{store: store}
}

// decodeDataURI splits "data:<type>;base64,<payload>" into its parts.
func decodeDataURI(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, apperr.ErrInvalidImage
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, apperr.ErrInvalidImage
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, apperr.ErrInvalidImage
	}
	return contentType, data, nil
}

// UploadDataURI validates, downscales if oversized, and stores the image.
// Returns the public URL of the stored object.
func (u *Uploader) UploadDataURI(ctx context.Context, userID, dataURI string) (string, error) {
	contentType, data, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	format, ok := allowedTypes[contentType]
	if !ok || len(data) == 0 || len(data) > maxImageBytes {
		return "", apperr.ErrInvalidImage
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", apperr.ErrInvalidImage
	}
	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return "", err
	}

	ext := "jpg"
	if format == imaging.PNG {
		ext = "png"
	}
	key := fmt.Sprintf("chat-images/%s/%d-%s.%s", userID, time.Now().Unix(), uuid.NewString(), ext)
	return u.store.Upload(ctx, key, contentType, buf.Bytes())
}
