// Package database provides database access and management functions for the task manager API.
// It implements a connection pool, transaction management and health checks.
package database

import (
	"context"
	"database/sql"
)

// Querier is the subset of *sql.DB and *sql.Tx used by the repositories.
// Repository methods that must take part in a transaction accept a Querier,
// so the same SQL runs either on the pool or inside Pool.Transaction.
type Querier interface {
	// ExecContext executes a query without returning any rows.
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

	// QueryContext executes a query that returns rows.
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)

	// QueryRowContext executes a query that is expected to return at most one row.
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Ensure both the pool and transactions implement Querier.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
	_ Querier = (*Pool)(nil)
)
