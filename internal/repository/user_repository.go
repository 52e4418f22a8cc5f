package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/database"
	"github.com/yasinhessnawi1/taskmanager/internal/models"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// UserRepository defines methods for interacting with user data
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateAvatar(ctx context.Context, id string, avatar *string) error
	DeleteTx(ctx context.Context, q database.Querier, id string) error
}

// PostgresUserRepository is a PostgreSQL implementation of UserRepository
type PostgresUserRepository struct {
	db *database.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *database.Pool) UserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

const userColumns = `user_id, name, email, password_hash, salt, age, avatar, created_at, updated_at`

// scanUser reads one row selected with userColumns
func scanUser(row interface{ Scan(dest ...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	var avatar sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&user.Age,
		&avatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if avatar.Valid {
		user.Avatar = &avatar.String
	}
	return user, nil
}

// validID reports whether id can be a primary key. Anything else cannot
// match a row, so callers answer NotFound without querying.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Create adds a new user to the database
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	startTime := time.Now()

	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
        INSERT INTO users (user_id, name, email, password_hash, salt, age, avatar, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Salt,
		user.Age,
		user.Avatar,
		user.CreatedAt,
		user.UpdatedAt,
	)

	utils.LogDBQuery(query, []interface{}{user.ID, user.Name, utils.MaskEmail(user.Email)}, time.Since(startTime), err)

	if err != nil {
		if utils.IsUniqueViolation(err, constants.IndexUsersEmail) {
			return utils.NewValidationError(constants.ColumnEmail, constants.MsgEmailDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().
		Str(constants.LogFieldUserID, user.ID).
		Str("email", utils.MaskEmail(user.Email)).
		Msg("User created")

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, utils.NewNotFoundError("User", id)
	}

	startTime := time.Now()

	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))

	utils.LogDBQuery(query, []interface{}{id}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email. The comparison is exact.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	startTime := time.Now()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))

	utils.LogDBQuery(query, []interface{}{utils.MaskEmail(email)}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", "email")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// List returns every user ordered by creation
func (r *PostgresUserRepository) List(ctx context.Context) ([]*models.User, error) {
	startTime := time.Now()

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, user_id ASC`

	rows, err := r.db.QueryContext(ctx, query)

	utils.LogDBQuery(query, nil, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// Update writes the profile fields and credentials of an existing user
func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	startTime := time.Now()

	user.UpdatedAt = time.Now()

	query := `
        UPDATE users
        SET name = $1, email = $2, password_hash = $3, salt = $4, age = $5, updated_at = $6
        WHERE user_id = $7
    `

	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Salt,
		user.Age,
		user.UpdatedAt,
		user.ID,
	)

	utils.LogDBQuery(query, []interface{}{user.Name, utils.MaskEmail(user.Email), user.ID}, time.Since(startTime), err)

	if err != nil {
		if utils.IsUniqueViolation(err, constants.IndexUsersEmail) {
			return utils.NewValidationError(constants.ColumnEmail, constants.MsgEmailDuplicate)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("User", user.ID)
	}

	log.Info().Str(constants.LogFieldUserID, user.ID).Msg("User updated")

	return nil
}

// UpdateAvatar stores or clears (nil) the avatar locator of a user
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id string, avatar *string) error {
	startTime := time.Now()

	query := `UPDATE users SET avatar = $1, updated_at = $2 WHERE user_id = $3`

	result, err := r.db.ExecContext(ctx, query, avatar, time.Now(), id)

	utils.LogDBQuery(query, []interface{}{avatar, id}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("User", id)
	}

	return nil
}

// DeleteTx removes a user row using q, normally the transaction of an account deletion
func (r *PostgresUserRepository) DeleteTx(ctx context.Context, q database.Querier, id string) error {
	startTime := time.Now()

	query := `DELETE FROM users WHERE user_id = $1`

	result, err := q.ExecContext(ctx, query, id)

	utils.LogDBQuery(query, []interface{}{id}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("User", id)
	}

	log.Info().Str(constants.LogFieldUserID, id).Msg("User deleted")

	return nil
}
