package auth

import (
	"context"

	"github.com/yasinhessnawi1/taskmanager/internal/models"
)

// TokenVerifier verifies a presented session token
type TokenVerifier interface {
	Verify(tokenString string) (*Claims, error)
}

// UserLoader loads the user named by a verified token
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// TokenSet reports whether a token is still in the live token set of a user
type TokenSet interface {
	Exists(ctx context.Context, userID, token string) (bool, error)
}
