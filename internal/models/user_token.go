package models

import (
	"time"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
)

// UserToken is one entry of a user's set of live session tokens.
// A bearer token is only accepted while its row exists, so removing the row
// revokes the token even though its signature stays valid.
type UserToken struct {
	// ID is the unique identifier for this token row
	ID string `json:"-" db:"token_id"`

	// UserID references the user who owns this token
	UserID string `json:"-" db:"user_id"`

	// Token is the signed bearer token itself
	Token string `json:"-" db:"token"`

	CreatedAt time.Time `json:"-" db:"created_at"`
}

// TableName returns the database table name for the UserToken model.
func (t *UserToken) TableName() string {
	return constants.TableUserTokens
}

// NewUserToken creates a token row for the given user.
func NewUserToken(userID, token string) *UserToken {
	return &UserToken{
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now(),
	}
}

// IsExpired reports whether the token has outlived the session validity.
func (t *UserToken) IsExpired(now time.Time) bool {
	return now.After(t.CreatedAt.Add(constants.SessionTokenValidity))
}
