// Package storage keeps uploaded applicant documents on disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("stored file not found")
	ErrInvalidKey = errors.New("invalid storage key")
)

// FileStorage stores uploaded files under generated keys
type FileStorage interface {
	// Save stores the upload and returns its key, "<prefix>/<uuid><ext>"
	Save(ctx context.Context, prefix string, fileHeader *multipart.FileHeader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewKey generates a storage key; the client-supplied name only contributes its extension
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String() + ext
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// validateKey rejects keys that could escape the storage root
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
