package models

import (
	"strings"
	"time"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
)

// User represents a registered user of the task manager.
// The password hash, salt and session tokens never leave the server: they are
// either tagged json:"-" or kept in separate tables.
type User struct {
	ID           string    `json:"id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Salt         string    `json:"-" db:"salt"`
	Age          int       `json:"age" db:"age"`
	Avatar       *string   `json:"avatar,omitempty" db:"avatar"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser creates a new User instance with the given name, email and age.
// Password fields are populated later during the registration process.
func NewUser(name, email string, age int) *User {
	now := time.Now()
	return &User{
		Name:      name,
		Email:     email,
		Age:       age,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TableName returns the database table name for the User model.
func (u *User) TableName() string {
	return constants.TableUsers
}

// HasAvatar reports whether an avatar locator is stored for the user
func (u *User) HasAvatar() bool {
	return u.Avatar != nil && *u.Avatar != ""
}

// Sanitize removes sensitive information from the User object when sending to clients.
func (u *User) Sanitize() *User {
	sanitized := *u
	sanitized.PasswordHash = ""
	sanitized.Salt = ""
	return &sanitized
}

// UserSignup represents the data required for user registration.
type UserSignup struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=7,not_weak_password"`
	Age      int    `json:"age" validate:"min=0"`
}

// Normalize trims surrounding whitespace from the text fields.
// It must run before validation so the minimum lengths apply to trimmed input.
func (s *UserSignup) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Password = strings.TrimSpace(s.Password)
}

// LoginRequest represents the login credentials provided by a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Normalize trims the email. The password is trimmed the same way it was at signup.
func (l *LoginRequest) Normalize() {
	l.Email = strings.TrimSpace(l.Email)
	l.Password = strings.TrimSpace(l.Password)
}

// UserUpdate holds the decoded fields of a profile update.
// A nil field was not part of the request.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
