package utils_test

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"

	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		message    string
	}{
		{
			name:       "Basic error",
			err:        errors.New("base error"),
			statusCode: http.StatusBadRequest,
			message:    "Error message",
		},
		{
			name:       "Internal server error",
			err:        errors.New("some internal error"),
			statusCode: http.StatusInternalServerError,
			message:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := utils.New(tt.err, tt.statusCode, tt.message)

			if appErr.Error() != tt.message {
				t.Errorf("New().Error() = %v, want %v", appErr.Error(), tt.message)
			}
			if appErr.StatusCode != tt.statusCode {
				t.Errorf("New().StatusCode = %v, want %v", appErr.StatusCode, tt.statusCode)
			}
			if !errors.Is(appErr, tt.err) {
				t.Errorf("New() does not wrap %v", tt.err)
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		message string
		want    string
	}{
		{"With field", "email", "Email is invalid", "email: Email is invalid"},
		{"Without field", "", "Invalid updates!", "Invalid updates!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := utils.NewValidationError(tt.field, tt.message)

			if appErr.Error() != tt.want {
				t.Errorf("NewValidationError().Error() = %v, want %v", appErr.Error(), tt.want)
			}
			if appErr.StatusCode != http.StatusBadRequest {
				t.Errorf("NewValidationError().StatusCode = %v, want %v", appErr.StatusCode, http.StatusBadRequest)
			}
			if !utils.IsValidationError(appErr) {
				t.Error("NewValidationError() should be a validation error")
			}
		})
	}
}

func TestNewValidationErrorWithDetails(t *testing.T) {
	details := map[string]string{"name": "is required", "age": "must be positive"}
	appErr := utils.NewValidationErrorWithDetails("Validation failed", details)

	if appErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %v, want %v", appErr.StatusCode, http.StatusBadRequest)
	}
	if len(appErr.Details) != 2 {
		t.Fatalf("len(Details) = %d, want 2", len(appErr.Details))
	}
	if appErr.Details["name"] != "is required" {
		t.Errorf("Details[name] = %v, want %v", appErr.Details["name"], "is required")
	}
}

func TestNewNotFoundError(t *testing.T) {
	appErr := utils.NewNotFoundError("Task", "abc")

	if appErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %v, want %v", appErr.StatusCode, http.StatusNotFound)
	}
	if appErr.Error() != "Task with identifier 'abc' not found" {
		t.Errorf("Error() = %v", appErr.Error())
	}
	if !utils.IsNotFoundError(appErr) {
		t.Error("IsNotFoundError() = false, want true")
	}
}

func TestNewUnauthorizedError(t *testing.T) {
	appErr := utils.NewUnauthorizedError("")
	if appErr.Message != "Authentication required" {
		t.Errorf("default message = %q", appErr.Message)
	}

	appErr = utils.NewUnauthorizedError("custom")
	if appErr.Message != "custom" {
		t.Errorf("custom message = %q", appErr.Message)
	}
	if appErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %v, want %v", appErr.StatusCode, http.StatusUnauthorized)
	}
}

func TestNewAuthError(t *testing.T) {
	appErr := utils.NewAuthError()

	if appErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %v, want %v", appErr.StatusCode, http.StatusBadRequest)
	}
	if !errors.Is(appErr, utils.ErrInvalidCredentials) {
		t.Error("NewAuthError() should wrap ErrInvalidCredentials")
	}
}

func TestNewDuplicateError(t *testing.T) {
	appErr := utils.NewDuplicateError("User", "email", "a@b.c")

	if appErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %v, want %v", appErr.StatusCode, http.StatusBadRequest)
	}
	if appErr.Field != "email" {
		t.Errorf("Field = %v, want email", appErr.Field)
	}
	if !errors.Is(appErr, utils.ErrDuplicate) {
		t.Error("NewDuplicateError() should wrap ErrDuplicate")
	}
}

func TestTokenErrors(t *testing.T) {
	if got := utils.NewExpiredTokenError(); got.StatusCode != http.StatusUnauthorized || !errors.Is(got, utils.ErrExpiredToken) {
		t.Errorf("NewExpiredTokenError() = %+v", got)
	}
	if got := utils.NewInvalidTokenError(); got.StatusCode != http.StatusUnauthorized || !errors.Is(got, utils.ErrInvalidToken) {
		t.Errorf("NewInvalidTokenError() = %+v", got)
	}
	if got := utils.NewTooManyRequestsError(); got.StatusCode != http.StatusTooManyRequests {
		t.Errorf("NewTooManyRequestsError().StatusCode = %v", got.StatusCode)
	}
}

func TestNewInternalServerError(t *testing.T) {
	appErr := utils.NewInternalServerError(errors.New("db down"))

	if appErr.Message != "An internal server error occurred" {
		t.Errorf("Message = %q", appErr.Message)
	}
	if appErr.DevInfo != "db down" {
		t.Errorf("DevInfo = %q, want %q", appErr.DevInfo, "db down")
	}

	if got := utils.NewInternalServerError(nil); got.DevInfo != "" {
		t.Errorf("DevInfo for nil error = %q", got.DevInfo)
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantNil    bool
		wantStatus int
		wantErr    error
		wantField  string
	}{
		{name: "Nil error", err: nil, wantNil: true},
		{
			name:       "Existing AppError",
			err:        fmt.Errorf("wrapped: %w", utils.NewNotFoundError("Task", "1")),
			wantStatus: http.StatusNotFound,
			wantErr:    utils.ErrNotFound,
		},
		{
			name:       "Sentinel credentials",
			err:        fmt.Errorf("login: %w", utils.ErrInvalidCredentials),
			wantStatus: http.StatusBadRequest,
			wantErr:    utils.ErrInvalidCredentials,
		},
		{
			name:       "Sentinel expired token",
			err:        utils.ErrExpiredToken,
			wantStatus: http.StatusUnauthorized,
			wantErr:    utils.ErrExpiredToken,
		},
		{
			name:       "Unique violation on email",
			err:        &pq.Error{Code: "23505", Constraint: "idx_users_email"},
			wantStatus: http.StatusBadRequest,
			wantErr:    utils.ErrDuplicate,
			wantField:  "email",
		},
		{
			name:       "Foreign key violation",
			err:        &pq.Error{Code: "23503"},
			wantStatus: http.StatusBadRequest,
			wantErr:    utils.ErrBadRequest,
		},
		{
			name:       "Not null violation",
			err:        &pq.Error{Code: "23502", Column: "description"},
			wantStatus: http.StatusBadRequest,
			wantErr:    utils.ErrValidation,
			wantField:  "description",
		},
		{
			name:       "Unknown database error",
			err:        sql.ErrConnDone,
			wantStatus: http.StatusInternalServerError,
			wantErr:    utils.ErrInternalServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := utils.ParseError(tt.err)

			if tt.wantNil {
				if got != nil {
					t.Errorf("ParseError() = %v, want nil", got)
				}
				return
			}
			if got.StatusCode != tt.wantStatus {
				t.Errorf("ParseError().StatusCode = %v, want %v", got.StatusCode, tt.wantStatus)
			}
			if !errors.Is(got, tt.wantErr) {
				t.Errorf("ParseError() = %v, want wrapping %v", got, tt.wantErr)
			}
			if got.Field != tt.wantField {
				t.Errorf("ParseError().Field = %q, want %q", got.Field, tt.wantField)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "idx_users_email"})

	if !utils.IsUniqueViolation(err, "idx_users_email") {
		t.Error("IsUniqueViolation() with matching constraint = false")
	}
	if !utils.IsUniqueViolation(err, "") {
		t.Error("IsUniqueViolation() with any constraint = false")
	}
	if utils.IsUniqueViolation(err, "idx_user_tokens_token") {
		t.Error("IsUniqueViolation() with other constraint = true")
	}
	if utils.IsUniqueViolation(errors.New("plain"), "") {
		t.Error("IsUniqueViolation() on plain error = true")
	}
}

func TestStatusCode(t *testing.T) {
	if got := utils.StatusCode(utils.NewNotFoundError("User", "x")); got != http.StatusNotFound {
		t.Errorf("StatusCode(AppError) = %v", got)
	}
	if got := utils.StatusCode(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("StatusCode(plain) = %v", got)
	}
}
