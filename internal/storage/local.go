package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"

	"recruitment_portal/internal/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")
	return &LocalStorage{basePath: basePath}, nil
}

func (ls *LocalStorage) fullPath(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(key)), nil
}

// Save copies the upload into <basePath>/<prefix>/<uuid><ext>
func (ls *LocalStorage) Save(_ context.Context, prefix string, fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("no file provided")
	}

	key := NewKey(prefix, fileHeader.Filename)
	dstPath, err := ls.fullPath(key)
	if err != nil {
		return "", err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Debug().Str("filename", fileHeader.Filename).Str("key", key).Msg("File saved")
	return key, nil
}

// Open returns the stored file; ErrNotFound when absent
func (ls *LocalStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := ls.fullPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	return f, nil
}

// Delete removes the stored file. Missing files are not an error.
func (ls *LocalStorage) Delete(_ context.Context, key string) error {
	p, err := ls.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
