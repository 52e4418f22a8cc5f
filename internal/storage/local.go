package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// LocalStorage keeps blobs as files below a root directory
type LocalStorage struct {
	root string
}

// NewLocalStorage creates the root directory if needed and returns a LocalStorage
func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		root = constants.DefaultLocalStoragePath
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage path: %w", err)
	}

	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{root: abs}, nil
}

// Root returns the absolute storage directory
func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) resolve(locator string) (string, error) {
	cleaned, err := cleanLocator(locator)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// Store writes data to a temporary file next to its destination and renames
// it into place, so a reader never sees a partial blob.
func (s *LocalStorage) Store(ctx context.Context, data io.Reader, filename string, name NamingPolicy) (string, error) {
	locator, err := cleanLocator(name(utils.DottedExtension(filename)))
	if err != nil {
		return "", err
	}
	target, err := s.resolve(locator)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = io.Copy(tmp, contextReader{ctx: ctx, r: data}); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close blob: %w", err)
	}
	if err = os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("failed to move blob into place: %w", err)
	}

	log.Debug().
		Str("category", constants.LogCategoryStorage).
		Str("locator", locator).
		Msg("Blob stored")

	return locator, nil
}

// Open opens a stored blob for reading
func (s *LocalStorage) Open(_ context.Context, locator string) (io.ReadCloser, error) {
	target, err := s.resolve(locator)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

// Delete removes a stored blob
func (s *LocalStorage) Delete(_ context.Context, locator string) error {
	target, err := s.resolve(locator)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// contextReader stops a copy once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
