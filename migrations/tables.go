package migrations

import (
	"context"
	"database/sql"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
)

// execAll runs the statements of one migration in order
func execAll(ctx context.Context, tx *sql.Tx, statements ...string) error {
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// createUsersTable creates the users table.
// Emails are unique as stored, so two addresses differing only in case are two accounts.
func createUsersTable() Migration {
	return Migration{
		Name:        "create_users_table",
		Description: "Creates the users table",
		TableName:   constants.TableUsers,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execAll(ctx, tx,
				`CREATE TABLE IF NOT EXISTS users (
					user_id UUID PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					email VARCHAR(255) NOT NULL,
					password_hash VARCHAR(255) NOT NULL,
					salt VARCHAR(255) NOT NULL,
					age INTEGER NOT NULL DEFAULT 0 CHECK (age >= 0),
					avatar VARCHAR(512),
					created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS `+constants.IndexUsersEmail+` ON users(email)`,
			)
		},
	}
}

// createUserTokensTable creates the table of live session tokens.
// Rows are removed before their user, inside the account deletion transaction.
func createUserTokensTable() Migration {
	return Migration{
		Name:        "create_user_tokens_table",
		Description: "Creates the user_tokens table",
		TableName:   constants.TableUserTokens,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execAll(ctx, tx,
				`CREATE TABLE IF NOT EXISTS user_tokens (
					token_id UUID PRIMARY KEY,
					user_id UUID NOT NULL,
					token TEXT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT fk_user_tokens_user FOREIGN KEY (user_id) REFERENCES users(user_id)
				)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS `+constants.IndexUserTokensToken+` ON user_tokens(token)`,
				`CREATE INDEX IF NOT EXISTS `+constants.IndexUserTokensUser+` ON user_tokens(user_id)`,
			)
		},
	}
}

// createTasksTable creates the tasks table.
// The owner foreign key has no ON DELETE action, so a user with tasks left
// cannot be deleted by accident.
func createTasksTable() Migration {
	return Migration{
		Name:        "create_tasks_table",
		Description: "Creates the tasks table",
		TableName:   constants.TableTasks,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execAll(ctx, tx,
				`CREATE TABLE IF NOT EXISTS tasks (
					task_id UUID PRIMARY KEY,
					description TEXT NOT NULL,
					completed BOOLEAN NOT NULL DEFAULT FALSE,
					owner_id UUID NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT fk_tasks_owner FOREIGN KEY (owner_id) REFERENCES users(user_id)
				)`,
				`CREATE INDEX IF NOT EXISTS `+constants.IndexTasksOwner+` ON tasks(owner_id)`,
			)
		},
	}
}
