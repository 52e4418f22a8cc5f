// Package scripts provides utility scripts for database and system management.
//
// This package implements the development seeder. Seeds are tracked in a
// seeds table like migrations are, so each one runs at most once per database.
package scripts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/database"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// PasswordHasher hashes the password of seeded accounts
type PasswordHasher interface {
	HashPassword(password string) (string, string, error)
}

// Seeder handles database seeding.
type Seeder struct {
	db     *database.Pool
	hasher PasswordHasher
}

// NewSeeder creates a new seeder.
//
// Parameters:
//   - db: A database connection pool to use for seeding
//   - hasher: Hashes the demo account password the same way signups are hashed
//
// Returns:
//   - *Seeder: A configured seeder
func NewSeeder(db *database.Pool, hasher PasswordHasher) *Seeder {
	return &Seeder{
		db:     db,
		hasher: hasher,
	}
}

// seed is one named, tracked seeding step
type seed struct {
	Name     string
	SeedFunc func(ctx context.Context, tx *sql.Tx) error
}

// SeedDatabase runs every seed that has not been executed yet.
//
// Parameters:
//   - ctx: Context for database operations and cancellation
//
// Returns:
//   - error: Any error encountered during seeding, nil if successful
func (s *Seeder) SeedDatabase(ctx context.Context) error {
	log.Info().Msg("Seeding database")
	startTime := time.Now()

	if err := s.createSeedsTable(ctx); err != nil {
		return fmt.Errorf("failed to create seeds table: %w", err)
	}

	executedSeeds, err := s.getExecutedSeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed seeds: %w", err)
	}

	seeds := []seed{
		{"demo_account", s.seedDemoAccount},
	}

	for _, sd := range seeds {
		if executedSeeds[sd.Name] {
			log.Debug().Str("seed", sd.Name).Msg("Seed already executed")
			continue
		}
		log.Info().Str("seed", sd.Name).Msg("Running seed")
		if err := s.runSeed(ctx, sd.Name, sd.SeedFunc); err != nil {
			return err
		}
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Database seeding completed")

	return nil
}

// createSeedsTable creates the seeds table if it doesn't exist.
func (s *Seeder) createSeedsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS seeds (
			name VARCHAR(255) PRIMARY KEY,
			executed_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// getExecutedSeeds returns the names of the seeds already run
func (s *Seeder) getExecutedSeeds(ctx context.Context) (map[string]bool, error) {
	query := `SELECT name FROM seeds`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	seeds := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		seeds[name] = true
	}

	return seeds, rows.Err()
}

// runSeed runs a seed function and records it within one transaction.
// If the seed operation fails, the transaction is rolled back.
func (s *Seeder) runSeed(ctx context.Context, name string, seedFunc func(ctx context.Context, tx *sql.Tx) error) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := seedFunc(ctx, tx); err != nil {
			return fmt.Errorf("seed %s failed: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO seeds (name) VALUES ($1)`, name); err != nil {
			return fmt.Errorf("failed to record seed: %w", err)
		}

		return nil
	})
}

// seedDemoAccount creates the demo user with a few tasks.
// An account that already uses the demo email is left alone.
func (s *Seeder) seedDemoAccount(ctx context.Context, tx *sql.Tx) error {
	var exists bool
	err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, constants.DemoUserEmail).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check demo account: %w", err)
	}
	if exists {
		log.Info().Str("email", utils.MaskEmail(constants.DemoUserEmail)).Msg("Demo account already exists")
		return nil
	}

	hash, salt, err := s.hasher.HashPassword(constants.DemoUserPassword)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	userID := uuid.NewString()
	now := time.Now()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (user_id, name, email, password_hash, salt, age, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, userID, constants.DemoUserName, constants.DemoUserEmail, hash, salt, constants.DemoUserAge, now)
	if err != nil {
		return fmt.Errorf("failed to insert demo user: %w", err)
	}

	for i, description := range constants.DemoTasks {
		// The last task is seeded as done so the completed filter has something to show
		completed := i == len(constants.DemoTasks)-1
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tasks (task_id, description, completed, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
		`, uuid.NewString(), description, completed, userID, now.Add(time.Duration(i)*time.Second))
		if err != nil {
			return fmt.Errorf("failed to insert demo task: %w", err)
		}
	}

	log.Info().
		Str(constants.LogFieldUserID, userID).
		Int("tasks", len(constants.DemoTasks)).
		Msg("Demo account seeded")

	return nil
}
