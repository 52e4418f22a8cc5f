package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// ErrStorageUnavailable marks a failure of the blob storage backend.
// Handlers answer it with a bare 500.
var ErrStorageUnavailable = errors.New("blob storage unavailable")

// newStorageError wraps a backend failure so it matches ErrStorageUnavailable
func newStorageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

// newNoAvatarError is the 404 answered when a user has no avatar
func newNoAvatarError() *utils.AppError {
	return utils.New(utils.ErrNotFound, http.StatusNotFound, constants.MsgNoAvatarFound)
}
