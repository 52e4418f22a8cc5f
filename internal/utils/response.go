// Package utils provides utility functions and helpers for the application.
// This file implements the API response helpers.
//
// Successful responses carry the bare resource JSON. Error responses share
// one shape:
//
//	{"error": "human readable message", "code": "machine_code", "details": {...}}
//
// A few failures are answered with a status and no body at all, see Empty.
package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
)

// ErrorBody is the JSON shape of every error response with a body.
type ErrorBody struct {
	Error   string            `json:"error"`             // A human-readable error message
	Code    string            `json:"code,omitempty"`    // A machine-readable error code
	Details map[string]string `json:"details,omitempty"` // Additional details (e.g., validation errors)
}

// MessageBody is the JSON shape of plain acknowledgement responses.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON sends the given data as the response body with the given status code.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - data: The data to marshal as the body
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	SendJSON(w, statusCode, data)
}

// Message sends {"message": msg} with the given status code.
func Message(w http.ResponseWriter, statusCode int, msg string) {
	SendJSON(w, statusCode, MessageBody{Message: msg})
}

// Error sends an error response with the given status code and error information.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - code: A machine-readable error code
//   - message: A human-readable error message
//   - details: Additional details about the error (e.g., validation errors)
func Error(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	SendJSON(w, statusCode, ErrorBody{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// ErrorFromAppError sends an error response based on an AppError.
//
// Authentication failures (401) and failed logins are answered with the
// status only. DevInfo is logged and never written to the client.
//
// Parameters:
//   - w: The HTTP response writer
//   - err: The application error
func ErrorFromAppError(w http.ResponseWriter, err *AppError) {
	if err.DevInfo != "" {
		LogError(err, map[string]interface{}{
			"dev_info": err.DevInfo,
			"status":   err.StatusCode,
		})
	}

	if err.StatusCode == http.StatusUnauthorized || errors.Is(err, ErrInvalidCredentials) {
		Empty(w, err.StatusCode)
		return
	}

	var details map[string]string
	if len(err.Details) > 0 {
		details = make(map[string]string, len(err.Details))
		for k, v := range err.Details {
			if s, ok := v.(string); ok {
				details[k] = s
			}
		}
	} else if err.Field != "" {
		details = map[string]string{
			err.Field: err.Message,
		}
	}

	Error(w, err.StatusCode, codeFor(err), err.Message, details)
}

// HandleError converts any error to an AppError and writes it.
func HandleError(w http.ResponseWriter, err error) {
	ErrorFromAppError(w, ParseError(err))
}

// codeFor maps the sentinel behind an AppError to its machine-readable code
func codeFor(err *AppError) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return constants.CodeNotFound
	case errors.Is(err, ErrBadRequest):
		return constants.CodeBadRequest
	case errors.Is(err, ErrUnauthorized):
		return constants.CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return constants.CodeForbidden
	case errors.Is(err, ErrValidation):
		return constants.CodeValidationError
	case errors.Is(err, ErrDuplicate):
		return constants.CodeDuplicateResource
	case errors.Is(err, ErrInvalidCredentials):
		return constants.CodeInvalidCredentials
	case errors.Is(err, ErrExpiredToken):
		return constants.CodeTokenExpired
	case errors.Is(err, ErrInvalidToken):
		return constants.CodeTokenInvalid
	case errors.Is(err, ErrTooManyRequests):
		return constants.CodeTooManyRequests
	default:
		return constants.CodeInternalError
	}
}

// SendJSON is a helper function to send JSON data with proper headers.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - data: The data to marshal to JSON and send
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		if _, err := w.Write([]byte(`{"error":"Failed to generate response","code":"internal_error"}`)); err != nil {
			log.Error().Err(err).Msg("Failed to write error response")
		}
		return
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// Empty sends only a status code, without a body.
func Empty(w http.ResponseWriter, statusCode int) {
	w.WriteHeader(statusCode)
}

// Stream copies r to the client with the given content type.
func Stream(w http.ResponseWriter, contentType string, r io.Reader) {
	w.Header().Set(constants.HeaderContentType, contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, r); err != nil {
		log.Error().Err(err).Msg("Failed to stream response")
	}
}

// Unauthorized sends a bodiless 401.
func Unauthorized(w http.ResponseWriter) {
	Empty(w, http.StatusUnauthorized)
}

// NotFound sends a 404 Not Found response with the given message.
//
// Parameters:
//   - w: The HTTP response writer
//   - message: A human-readable error message (falls back to a default message if empty)
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = constants.MsgResourceNotFound
	}
	Error(w, http.StatusNotFound, constants.CodeNotFound, message, nil)
}

// MethodNotAllowed sends a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, http.StatusMethodNotAllowed, constants.CodeMethodNotAllowed, constants.MsgMethodNotAllowed, nil)
}

// TooManyRequests sends a 429 response.
func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, constants.CodeTooManyRequests, constants.MsgTooManyRequests, nil)
}
