package service

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/storage"
)

// DocumentService provides document uploads.
type DocumentService struct {
	blobs storage.BlobStorage
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(blobs storage.BlobStorage) *DocumentService {
	return &DocumentService{blobs: blobs}
}

// Upload checks a document against the document policy and stores it under a
// fresh name.
//
// Returns:
//   - The locator of the stored document
//   - A 400 AppError if the file breaks the policy
//   - An error matching ErrStorageUnavailable if the backend failed
func (s *DocumentService) Upload(ctx context.Context, ownerID, filename string, size int64, data io.Reader) (string, error) {
	if err := storage.DocumentPolicy.Check(filename, size); err != nil {
		return "", err
	}

	locator, err := s.blobs.Store(ctx, data, filename, storage.DocumentName())
	if err != nil {
		return "", newStorageError(err)
	}

	log.Info().
		Str("category", constants.LogCategoryStorage).
		Str(constants.LogFieldUserID, ownerID).
		Str("locator", locator).
		Int64("size", size).
		Msg("Document uploaded")

	return locator, nil
}
