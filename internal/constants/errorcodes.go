// Package constants provides shared constant values used throughout the application.
//
// The errorcodes.go file defines the user-facing messages attached to errors.
// Keeping them here makes the wording consistent across handlers and services.
package constants

// Messages returned to clients.
const (
	MsgAuthRequired = "Authentication required"

	// MsgUnableToLogin is the single message for any failed login, whether the
	// email is unknown or the password is wrong.
	MsgUnableToLogin = "Unable to login"

	MsgInternalServerError = "An internal server error occurred"

	MsgTokenExpired = "Authentication token has expired"

	MsgInvalidToken = "Invalid token"

	MsgRequestBodyTooLarge = "Request body too large"

	MsgEmptyRequestBody = "Request body must not be empty"

	MsgMalformedJSON = "Request body contains malformed JSON"

	MsgResourceNotFound = "The requested resource could not be found"

	MsgResourceAlreadyExists = "A resource with the same unique identifier already exists"

	MsgMethodNotAllowed = "This method is not allowed for this resource"

	MsgInvalidUpdates = "Invalid updates!"

	MsgTooManyRequests = "Too many requests, please try again later"
)

// Validation messages for user and task fields.
const (
	MsgWeakPassword   = "Weak password"
	MsgInvalidEmail   = "Email is invalid!"
	MsgNegativeAge    = "Age must be a positive number"
	MsgNameRequired   = "Name is required"
	MsgDescRequired   = "Description is required"
	MsgEmailDuplicate = "Email is already in use"
)

// Upload messages.
const (
	MsgNoFileProvided     = "No file provided."
	MsgFileTooLarge       = "File too large"
	MsgInvalidFileType    = "Invalid file type. Only %s files are allowed."
	MsgAvatarUploaded     = "Avatar uploaded successfully."
	MsgAvatarDeleted      = "Avatar deleted successfully."
	MsgNoAvatarFound      = "No avatar found."
	MsgDocumentUploaded   = "Document uploaded."
	MsgInvalidStorageUnit = "invalid unit"
	MsgInvalidBlobLocator = "invalid blob locator"
)

// Log categories used as the "category" field on structured log events.
const (
	LogCategoryUser    = "user"
	LogCategoryAuth    = "auth"
	LogCategoryTask    = "task"
	LogCategoryStorage = "storage"
	LogCategoryEmail   = "email"
)

// LogRedactedValue replaces secrets in log output.
const LogRedactedValue = "[REDACTED]"

// Structured log field names shared by middleware and repositories.
const (
	LogFieldRequestID = "request_id"
	LogFieldUserID    = "user_id"
	LogFieldTaskID    = "task_id"
)
