// Package constants provides shared constant values used throughout the application.
//
// The httpcodes.go file collects the machine-readable error codes and HTTP
// header values written by the response helpers and middleware.
package constants

// Machine-readable error codes carried in the "code" field of error bodies.
const (
	CodeBadRequest = "bad_request"

	CodeUnauthorized = "unauthorized"

	CodeForbidden = "forbidden"

	CodeNotFound = "not_found"

	CodeMethodNotAllowed = "method_not_allowed"

	CodeInternalError = "internal_error"

	CodeValidationError = "validation_error"

	CodeInvalidCredentials = "invalid_credentials"

	CodeTokenExpired = "token_expired"

	CodeTokenInvalid = "token_invalid"

	CodeDuplicateResource = "duplicate_resource"

	CodeTooManyRequests = "too_many_requests"
)

// HTTP headers.
const (
	HeaderContentType = "Content-Type"

	HeaderContentLength = "Content-Length"

	HeaderCacheControl = "Cache-Control"

	HeaderAuthorization = "Authorization"

	HeaderXRequestID = "X-Request-ID"

	HeaderRetryAfter = "Retry-After"

	HeaderXContentTypeOptions = "X-Content-Type-Options"

	HeaderXFrameOptions = "X-Frame-Options"

	HeaderXXSSProtection = "X-XSS-Protection"

	HeaderReferrerPolicy = "Referrer-Policy"

	HeaderContentSecurityPolicy = "Content-Security-Policy"

	HeaderStrictTransportSecurity = "Strict-Transport-Security"
)

// Content types.
const (
	ContentTypeJSON = "application/json"

	ContentTypeOctetStream = "application/octet-stream"

	ContentTypePNG = "image/png"

	ContentTypeJPEG = "image/jpeg"
)

// Security header values.
const (
	FrameOptionsDeny = "DENY"

	XSSProtectionModeBlock = "1; mode=block"

	ContentTypeOptionsNoSniff = "nosniff"

	ReferrerPolicyStrictOrigin = "strict-origin-when-cross-origin"

	CSPDefaultSrc = "default-src 'self'"

	HSTSMaxAge = "max-age=31536000; includeSubDomains"

	CacheControlNoStore = "no-cache, no-store, must-revalidate"
)
