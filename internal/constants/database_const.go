// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines constants related to database structures,
// including table names, column names, and index names. Repositories, migrations
// and error mapping all refer to these names so a schema change has one home.
package constants

// Table Names define the names of database tables used in the application.
const (
	// TableUsers is the name of the table storing user account information.
	TableUsers = "users"

	// TableUserTokens is the name of the table storing the live session tokens of each user.
	TableUserTokens = "user_tokens"

	// TableTasks is the name of the table storing tasks, each bound to one owning user.
	TableTasks = "tasks"

	// TableMigrations is the name of the table tracking applied schema migrations.
	TableMigrations = "schema_migrations"
)

// Common Column Names define frequently used database column names.
const (
	ColumnUserID       = "user_id"
	ColumnTokenID      = "token_id"
	ColumnTaskID       = "task_id"
	ColumnOwnerID      = "owner_id"
	ColumnName         = "name"
	ColumnEmail        = "email"
	ColumnPasswordHash = "password_hash"
	ColumnSalt         = "salt"
	ColumnAge          = "age"
	ColumnAvatar       = "avatar"
	ColumnToken        = "token"
	ColumnDescription  = "description"
	ColumnCompleted    = "completed"
	ColumnCreatedAt    = "created_at"
	ColumnUpdatedAt    = "updated_at"
)

// Index names. The unique indexes double as the source of the field name
// reported when PostgreSQL raises a unique violation.
const (
	// IndexUsersEmail enforces one account per email address.
	IndexUsersEmail = "idx_users_email"

	// IndexUserTokensToken keeps every issued token string unique.
	IndexUserTokensToken = "idx_user_tokens_token"

	// IndexUserTokensUser speeds up token set lookups per user.
	IndexUserTokensUser = "idx_user_tokens_user_id"

	// IndexTasksOwner speeds up owner-scoped task queries.
	IndexTasksOwner = "idx_tasks_owner_id"
)

const (
	// SchemaInformation is the schema queried to discover existing tables.
	SchemaInformation = "information_schema"
)

// PostgreSQL connection parameters appended to the DSN.
const (
	PostgresConnectTimeout = "connect_timeout=15"
	PostgresSSLDisable     = "disable"
)

// PostgreSQL error codes handled explicitly by the application.
const (
	PGErrorDuplicateConstraint  = "23505"
	PGErrorForeignKeyConstraint = "23503"
	PGErrorNotNullConstraint    = "23502"
	PGErrorInvalidTextRep       = "22P02"
)
