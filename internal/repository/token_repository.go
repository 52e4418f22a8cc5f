package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/database"
	"github.com/yasinhessnawi1/taskmanager/internal/models"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// TokenRepository manages the set of live session tokens of each user.
//
// A token is accepted only while its row exists. Every mutation is a single
// statement, so concurrent logouts of the same account never lose a revocation.
type TokenRepository interface {
	Add(ctx context.Context, token *models.UserToken) error
	Exists(ctx context.Context, userID, token string) (bool, error)
	Delete(ctx context.Context, userID, token string) error
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
	DeleteAllForUserTx(ctx context.Context, q database.Querier, userID string) (int64, error)
	DeleteExpired(ctx context.Context, validity time.Duration) (int64, error)
}

// PostgresTokenRepository is a PostgreSQL implementation of TokenRepository
type PostgresTokenRepository struct {
	db *database.Pool
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *database.Pool) TokenRepository {
	return &PostgresTokenRepository{
		db: db,
	}
}

// Add appends a token to the user's token set
func (r *PostgresTokenRepository) Add(ctx context.Context, token *models.UserToken) error {
	startTime := time.Now()

	token.ID = uuid.NewString()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO user_tokens (token_id, user_id, token, created_at)
        VALUES ($1, $2, $3, $4)
    `

	_, err := r.db.ExecContext(ctx, query, token.ID, token.UserID, token.Token, token.CreatedAt)

	utils.LogDBQuery(query, []interface{}{token.ID, token.UserID, token.Token, token.CreatedAt}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to add token: %w", err)
	}

	log.Debug().Str(constants.LogFieldUserID, token.UserID).Msg("Session token added")

	return nil
}

// Exists reports whether token is currently in the user's token set
func (r *PostgresTokenRepository) Exists(ctx context.Context, userID, token string) (bool, error) {
	startTime := time.Now()

	query := `SELECT EXISTS(SELECT 1 FROM user_tokens WHERE user_id = $1 AND token = $2)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, token).Scan(&exists)

	utils.LogDBQuery(query, []interface{}{userID, token}, time.Since(startTime), err)

	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}

	return exists, nil
}

// Delete removes a single token from the user's token set.
// Removing a token that is already gone is not an error.
func (r *PostgresTokenRepository) Delete(ctx context.Context, userID, token string) error {
	startTime := time.Now()

	query := `DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`

	_, err := r.db.ExecContext(ctx, query, userID, token)

	utils.LogDBQuery(query, []interface{}{userID, token}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	return nil
}

// DeleteAllForUser empties the user's token set
func (r *PostgresTokenRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	return r.DeleteAllForUserTx(ctx, r.db, userID)
}

// DeleteAllForUserTx empties the user's token set using q
func (r *PostgresTokenRepository) DeleteAllForUserTx(ctx context.Context, q database.Querier, userID string) (int64, error) {
	startTime := time.Now()

	query := `DELETE FROM user_tokens WHERE user_id = $1`

	result, err := q.ExecContext(ctx, query, userID)

	utils.LogDBQuery(query, []interface{}{userID}, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to delete tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	log.Debug().
		Str(constants.LogFieldUserID, userID).
		Int64("count", rowsAffected).
		Msg("Session tokens removed")

	return rowsAffected, nil
}

// DeleteExpired removes tokens older than validity. Their signatures have
// expired, so they could no longer be used anyway.
func (r *PostgresTokenRepository) DeleteExpired(ctx context.Context, validity time.Duration) (int64, error) {
	startTime := time.Now()

	cutoff := time.Now().Add(-validity)
	query := `DELETE FROM user_tokens WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)

	utils.LogDBQuery(query, []interface{}{cutoff}, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected > 0 {
		log.Info().Int64("count", rowsAffected).Msg("Deleted expired session tokens")
	}

	return rowsAffected, nil
}
