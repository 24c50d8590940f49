// Package media relays post images to an external host and returns the
// public URL. Nothing is written to local disk. The uploaders here satisfy
// services.Uploader.
package media

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/anonto42/codecircle/backend/internal/apperror"
)

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// CheckImage rejects uploads that are not images or exceed maxBytes.
func CheckImage(contentType string, size, maxBytes int64) error {
	if _, ok := imageTypes[strings.ToLower(contentType)]; !ok {
		return apperror.NewInvalidArgument("image must be a JPEG, PNG, GIF or WebP file")
	}
	if size > maxBytes {
		return apperror.NewInvalidArgument("image is too large")
	}
	return nil
}

// ObjectName builds a collision-free object key for an uploaded file.
func ObjectName(original, contentType string) string {
	ext := strings.ToLower(path.Ext(original))
	if ext == "" {
		ext = imageTypes[strings.ToLower(contentType)]
	}
	return "posts/" + uuid.New().String() + ext
}

// NopUploader is used when no media backend is configured.
type NopUploader struct{}

func (NopUploader) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", apperror.NewUpstream("image uploads are not configured", nil)
}
