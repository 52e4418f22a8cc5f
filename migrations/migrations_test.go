package migrations_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/yasinhessnawi1/taskmanager/internal/database"
	"github.com/yasinhessnawi1/taskmanager/migrations"
)

// createMockDB creates a mock database for testing
func createMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, mock, cleanup
}

func expectTableExists(mock sqlmock.Sqlmock, table string, exists bool) {
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(table).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
}

func expectCreate(mock sqlmock.Sqlmock, table string, indexes int) {
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for i := 0; i < indexes; i++ {
		mock.ExpectExec("CREATE (UNIQUE )?INDEX IF NOT EXISTS").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("INSERT INTO schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

// TestNewMigrator tests the NewMigrator function
func TestNewMigrator(t *testing.T) {
	db, _, cleanup := createMockDB(t)
	defer cleanup()

	migrator := migrations.NewMigrator(database.NewPool(db))

	assert.NotNil(t, migrator)
}

// TestGetMigrations tests the order and tables of the migrations
func TestGetMigrations(t *testing.T) {
	list := migrations.GetMigrations()

	var tables []string
	for _, migration := range list {
		tables = append(tables, migration.TableName)
	}

	assert.Equal(t, []string{"users", "user_tokens", "tasks"}, tables)
}

// TestRunMigrations tests the main RunMigrations function
func TestRunMigrations(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "Fresh database",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM schema_migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}))

				expectTableExists(mock, "users", false)
				expectCreate(mock, "users", 1)
				expectTableExists(mock, "user_tokens", false)
				expectCreate(mock, "user_tokens", 2)
				expectTableExists(mock, "tasks", false)
				expectCreate(mock, "tasks", 1)
			},
		},
		{
			name: "Up to date",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM schema_migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}).
						AddRow("create_users_table").
						AddRow("create_user_tokens_table").
						AddRow("create_tasks_table"))

				expectTableExists(mock, "users", true)
				expectTableExists(mock, "user_tokens", true)
				expectTableExists(mock, "tasks", true)
			},
		},
		{
			name: "Existing tables are recorded and dropped ones recreated",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM schema_migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("create_tasks_table"))

				expectTableExists(mock, "users", true)
				mock.ExpectExec("INSERT INTO schema_migrations").
					WithArgs("create_users_table", "Creates the users table").
					WillReturnResult(sqlmock.NewResult(0, 1))
				expectTableExists(mock, "user_tokens", true)
				mock.ExpectExec("INSERT INTO schema_migrations").
					WithArgs("create_user_tokens_table", "Creates the user_tokens table").
					WillReturnResult(sqlmock.NewResult(0, 1))
				expectTableExists(mock, "tasks", false)
				expectCreate(mock, "tasks", 1)
			},
		},
		{
			name: "Error - Create migrations table fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
					WillReturnError(errors.New("failed to create migrations table"))
			},
			wantErr: true,
		},
		{
			name: "Error - Get executed migrations fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM schema_migrations").
					WillReturnError(errors.New("failed to get executed migrations"))
			},
			wantErr: true,
		},
		{
			name: "Error - Table exists check fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM schema_migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}))
				mock.ExpectQuery("SELECT EXISTS").
					WillReturnError(errors.New("failed to check table existence"))
			},
			wantErr: true,
		},
		{
			name: "Error - Migration fails and rolls back",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT name FROM schema_migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}))
				expectTableExists(mock, "users", false)
				mock.ExpectBegin()
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
					WillReturnError(errors.New("permission denied"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := createMockDB(t)
			defer cleanup()

			tt.setup(mock)

			err := migrations.NewMigrator(database.NewPool(db)).RunMigrations(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestMigrationProperties tests that all migrations have the required properties
func TestMigrationProperties(t *testing.T) {
	for _, migration := range migrations.GetMigrations() {
		t.Run(migration.Name, func(t *testing.T) {
			assert.NotEmpty(t, migration.Name, "Migration should have a name")
			assert.NotEmpty(t, migration.Description, "Migration should have a description")
			assert.NotEmpty(t, migration.TableName, "Migration should have a table name")
			assert.NotNil(t, migration.RunSQL, "Migration should have a RunSQL function")
		})
	}
}
