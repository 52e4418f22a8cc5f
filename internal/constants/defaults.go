// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used throughout the application.
// These constants provide sensible defaults for configuration settings, establish
// boundaries for resource usage, and define security parameters.
package constants

// Task query defaults. A missing or non-numeric value falls back to these.
const (
	// DefaultTaskLimit is the number of tasks returned per page when no limit is given.
	DefaultTaskLimit = 10

	// DefaultTaskPage is the 1-indexed page returned when no page is given.
	DefaultTaskPage = 1

	// SortDirectionDesc is the only sortBy suffix that selects descending order.
	SortDirectionDesc = "desc"

	// SortSeparator splits the sortBy field from its direction.
	SortSeparator = ":"
)

// Query parameter names accepted by the task listing.
const (
	QueryParamCompleted = "completed"
	QueryParamSortBy    = "sortBy"
	QueryParamLimit     = "limit"
	QueryParamPage      = "page"
)

// Server and database defaults.
const (
	DefaultServerPort = 8080

	DefaultDBPort = 5432

	DefaultDBMaxConnections = 20

	DefaultDBMinConnections = 5

	DefaultLogLevel = "info"

	DefaultLogFormat = "json"

	// DefaultLogRetentionDays mirrors the 14 day history kept for rotated log files.
	DefaultLogRetentionDays = 14
)

// Application environments.
const (
	EnvDevelopment = "development"

	EnvTesting = "testing"

	EnvProduction = "production"
)

const (
	MaxRequestBodySize = 1048576 // 1MB in bytes
)

// Password hashing defaults for argon2id.
const (
	DefaultPasswordHashMemory = 64 * 1024

	DefaultPasswordHashIterations = 3

	DefaultPasswordHashParallelism = 2

	DefaultPasswordHashSaltLength = 16

	DefaultPasswordHashKeyLength = 32

	DevPasswordHashMemory = 16 * 1024

	DevPasswordHashIterations = 1
)

// Token defaults.
const (
	DefaultJWTIssuer = "taskmanager-api"

	// DefaultJWTSecret is only acceptable outside production.
	DefaultJWTSecret = "changeme"

	BearerTokenPrefix = "Bearer "
)

// Storage defaults.
const (
	StorageDriverLocal = "local"

	StorageDriverS3 = "s3"

	DefaultLocalStoragePath = "uploads"

	DefaultS3Region = "us-east-1"

	// AvatarPrefix and DocumentPrefix are the locator prefixes of each upload kind.
	AvatarPrefix   = "avatars"
	DocumentPrefix = "documents"

	// AvatarNamePrefix is prepended to the owner id to build the avatar blob name.
	AvatarNamePrefix = "avatar_"
)

// Upload limits and form field names.
const (
	AvatarMaxSizeMB   = 1
	DocumentMaxSizeMB = 5

	AvatarFormField   = "avatar"
	DocumentFormField = "upload"
)

var (
	// AvatarExtensions is the allow-list for profile images.
	AvatarExtensions = []string{"jpg", "jpeg", "png"}

	// DocumentExtensions is the allow-list for document uploads.
	DocumentExtensions = []string{"pdf", "doc", "docx"}
)

// Rate limiting defaults for the login endpoint.
const (
	// DefaultLoginRate is the number of login attempts refilled per second per client.
	DefaultLoginRate = 0.2

	// DefaultLoginBurst is the number of attempts a client can make back to back.
	DefaultLoginBurst = 5

	// RateLimitCategoryLogin keys the login buckets in the limiter store.
	RateLimitCategoryLogin = "login"
)

// Demo account created by the development seeder.
const (
	DemoUserName     = "Demo User"
	DemoUserEmail    = "demo@taskmanager.local"
	DemoUserPassword = "DemoPass123!"
	DemoUserAge      = 30
)

var (
	// DemoTasks are the descriptions of the tasks seeded for the demo account.
	DemoTasks = []string{"Read the API docs", "Create a first task", "Mark a task completed"}
)

// Email defaults.
const (
	DefaultSenderEmail = "no-reply@taskmanager.local"
	DefaultSenderName  = "Task Manager"

	WelcomeSubject      = "Thanks for joining in!"
	CancellationSubject = "Sorry to see you go!"
)

// Email bodies. The name of the recipient is interpolated.
const (
	WelcomeBody      = "Welcome to the app, %s. Let us know how you get along with it."
	CancellationBody = "Goodbye, %s. Is there anything we could have done to keep you on board?"
)
