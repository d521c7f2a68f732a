package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gullrabia/Chat-app/pkg/storage"
)

var ErrInvalidImage = errors.New("invalid image payload")

const urlTTL = 7 * 24 * time.Hour

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// uploadDataURL decodes a base64 data URL, writes it to blob storage under
// the given prefix, and returns a serving URL. The web client sends images
// inline as data URLs.
func uploadDataURL(ctx context.Context, store storage.Storage, prefix, dataURL string) (string, error) {
	contentType, payload, ok := strings.Cut(strings.TrimPrefix(dataURL, "data:"), ";base64,")
	if !ok || !strings.HasPrefix(dataURL, "data:") {
		return "", ErrInvalidImage
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported content type %s", ErrInvalidImage, contentType)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidImage, err)
	}

	key := fmt.Sprintf("%s/%s.%s", prefix, uuid.New().String(), ext)
	if err := store.Write(ctx, key, bytes.NewReader(raw), int64(len(raw)), contentType); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return store.GetURL(ctx, key, urlTTL)
}
