// Package storage provides the blob storage backends used for uploads.
//
// A backend stores a stream under a name chosen by a NamingPolicy and hands
// back a locator. The locator is the only thing persisted by callers, and
// the same backend resolves it again in Open and Delete.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/yasinhessnawi1/taskmanager/internal/config"
	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// Storage errors
var (
	ErrInvalidLocator = errors.New(constants.MsgInvalidBlobLocator)
	ErrBlobNotFound   = errors.New("blob not found")
)

// NamingPolicy chooses the locator of a new blob from its dotted extension
type NamingPolicy func(ext string) string

// BlobStorage stores and retrieves opaque blobs
type BlobStorage interface {
	// Store writes data under the name chosen by name for the extension of
	// filename and returns the resulting locator.
	Store(ctx context.Context, data io.Reader, filename string, name NamingPolicy) (string, error)

	// Open returns the content of a stored blob. The caller closes it.
	Open(ctx context.Context, locator string) (io.ReadCloser, error)

	// Delete removes a stored blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, locator string) error
}

// AvatarName names the avatar of userID. A user has at most one avatar per
// extension, and uploading again with the same extension overwrites it.
func AvatarName(userID string) NamingPolicy {
	return func(ext string) string {
		return path.Join(constants.AvatarPrefix, constants.AvatarNamePrefix+userID+ext)
	}
}

// DocumentName gives every document a fresh random name
func DocumentName() NamingPolicy {
	return func(ext string) string {
		return path.Join(constants.DocumentPrefix, uuid.NewString()+ext)
	}
}

// ContentTypeFor returns the content type served for a stored blob
func ContentTypeFor(locator string) string {
	switch utils.FileExtension(locator) {
	case "png":
		return constants.ContentTypePNG
	case "jpg", "jpeg":
		return constants.ContentTypeJPEG
	default:
		return constants.ContentTypeOctetStream
	}
}

// cleanLocator normalizes a locator and rejects any that is absolute or
// climbs out of the storage root.
func cleanLocator(locator string) (string, error) {
	if locator == "" || strings.HasPrefix(locator, "/") || strings.Contains(locator, "\\") {
		return "", ErrInvalidLocator
	}
	cleaned := path.Clean(locator)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidLocator
	}
	return cleaned, nil
}

// New creates the backend selected by the storage settings.
//
// Parameters:
//   - ctx: Context for loading the AWS configuration
//   - cfg: The storage settings
//
// Returns:
//   - The configured BlobStorage
//   - An error for an unknown driver or a backend that cannot be set up
func New(ctx context.Context, cfg *config.StorageSettings) (BlobStorage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", constants.StorageDriverLocal:
		return NewLocalStorage(cfg.LocalPath)
	case constants.StorageDriverS3:
		return NewS3Storage(ctx, &cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
