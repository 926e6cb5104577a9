// Package storage keeps uploaded item images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

var (
	// ErrUnsupportedType rejects files that are not JPEG, PNG or WebP.
	ErrUnsupportedType = errors.New("image must be JPEG, PNG, or WebP")
	// ErrTooLarge rejects files above MaxImageSize.
	ErrTooLarge = errors.New("image exceeds 5MB")
	// ErrNotFound is returned for unknown object keys.
	ErrNotFound = errors.New("image not found")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageStore persists an image and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, filename, contentType string, size int64) (string, error)
}

// ValidateImage checks type and size before anything is stored.
func ValidateImage(contentType string, size int64) error {
	if _, ok := allowedTypes[strings.ToLower(contentType)]; !ok {
		return ErrUnsupportedType
	}
	if size > MaxImageSize {
		return ErrTooLarge
	}
	return nil
}

// ObjectKey builds a unique key grouped by upload day.
func ObjectKey(filename, contentType string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = allowedTypes[strings.ToLower(contentType)]
	}
	return fmt.Sprintf("uploads/%s/%s%s", now.Format("2006-01-02"), uuid.NewString(), ext)
}
