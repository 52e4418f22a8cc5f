// user_interfaces.go

// Package handlers provides HTTP request handlers and service interfaces for the task manager.
// This file defines the service interface the user handlers depend on, so the
// handlers can be tested against mocked implementations.
package handlers

import (
	"context"
	"encoding/json"
	"io"

	"github.com/yasinhessnawi1/taskmanager/internal/auth"
	"github.com/yasinhessnawi1/taskmanager/internal/models"
)

// UserServiceInterface defines the methods required from UserService.
// Every operation on the caller's own account takes the identity resolved by
// the authorization gate as an explicit argument.
type UserServiceInterface interface {
	// SignUp registers a new user and issues the first session token.
	//
	// Parameters:
	//   - ctx: The request context
	//   - signup: The decoded signup body
	//
	// Returns:
	//   - The stored user together with its token
	//   - A validation error for bad input or an email that is already in use
	SignUp(ctx context.Context, signup *models.UserSignup) (*models.AuthResponse, error)

	// Login checks the credentials and issues a new session token.
	//
	// Returns:
	//   - The user together with the new token
	//   - An AuthError when the email is unknown or the password is wrong
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)

	// Logout revokes the token the principal authenticated with.
	Logout(ctx context.Context, principal *auth.Principal) error

	// LogoutAll revokes every token of the principal's user.
	LogoutAll(ctx context.Context, principal *auth.Principal) error

	// List returns every registered user.
	List(ctx context.Context) ([]*models.User, error)

	// GetByID returns one user. A malformed or unknown id is NotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdateProfile applies a partial update to the profile of userID.
	//
	// Parameters:
	//   - ctx: The request context
	//   - userID: The authenticated user
	//   - updates: The raw JSON values keyed by field name
	//
	// Returns:
	//   - The updated user
	//   - A validation error if a key is not allowed or a value is invalid
	UpdateProfile(ctx context.Context, userID string, updates map[string]json.RawMessage) (*models.User, error)

	// DeleteAccount removes the principal's user with all of its tasks and tokens.
	//
	// Returns:
	//   - The deleted user
	//   - An error if the removal failed, in which case nothing was removed
	DeleteAccount(ctx context.Context, principal *auth.Principal) (*models.User, error)

	// UploadAvatar stores a new avatar for userID.
	//
	// Parameters:
	//   - ctx: The request context
	//   - userID: The owner of the avatar
	//   - filename: The client file name
	//   - size: The declared size in bytes
	//   - data: The image content
	//
	// Returns:
	//   - A 400 AppError if the file breaks the avatar policy
	//   - An error matching service.ErrStorageUnavailable if the backend failed
	UploadAvatar(ctx context.Context, userID, filename string, size int64, data io.Reader) error

	// DeleteAvatar removes the avatar of userID, or reports that there is none.
	DeleteAvatar(ctx context.Context, userID string) error

	// OpenAvatar returns the avatar content of userID and its content type.
	// The caller closes the reader.
	OpenAvatar(ctx context.Context, userID string) (io.ReadCloser, string, error)
}
