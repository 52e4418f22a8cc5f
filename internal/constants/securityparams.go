package constants

// Password policy
const (
	// MinPasswordLength is measured after trimming surrounding whitespace.
	MinPasswordLength = 7

	// ForbiddenPasswordSubstring may not appear in a password, case-insensitively.
	ForbiddenPasswordSubstring = "password"
)

// JWT claim names
const (
	ClaimUserID = "_id"
)

// Allowed keys for partial updates.
var (
	TaskUpdateFields = []string{"description", "completed"}
	UserUpdateFields = []string{"name", "email", "password", "age"}
)
