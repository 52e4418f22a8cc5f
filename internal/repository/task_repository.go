package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/database"
	"github.com/yasinhessnawi1/taskmanager/internal/models"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// TaskRepository defines methods for interacting with task data.
//
// Every method is scoped to an owner: a task of another owner behaves
// exactly like a task that does not exist.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByOwner(ctx context.Context, ownerID, taskID string) (*models.Task, error)
	UpdateByOwner(ctx context.Context, ownerID, taskID string, update *models.TaskUpdate) (*models.Task, error)
	DeleteByOwner(ctx context.Context, ownerID, taskID string) (*models.Task, error)
	DeleteAllByOwnerTx(ctx context.Context, q database.Querier, ownerID string) (int64, error)
	CountByOwner(ctx context.Context, ownerID string, completed *bool) (int, error)
	ListByOwner(ctx context.Context, ownerID string, completed *bool, sort *models.TaskSort, limit, offset int) ([]*models.Task, error)
}

// PostgresTaskRepository is a PostgreSQL implementation of TaskRepository
type PostgresTaskRepository struct {
	db *database.Pool
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *database.Pool) TaskRepository {
	return &PostgresTaskRepository{
		db: db,
	}
}

const taskColumns = `task_id, description, completed, owner_id, created_at, updated_at`

// sortColumns maps the sort fields clients may name to task columns.
// Fields not listed here select no column and leave the default ordering.
var sortColumns = map[string]string{
	"description": constants.ColumnDescription,
	"completed":   constants.ColumnCompleted,
	"createdAt":   constants.ColumnCreatedAt,
	"created_at":  constants.ColumnCreatedAt,
	"updatedAt":   constants.ColumnUpdatedAt,
	"updated_at":  constants.ColumnUpdatedAt,
	"id":          constants.ColumnTaskID,
	"_id":         constants.ColumnTaskID,
}

// defaultTaskOrder is appended to every listing so ties have one stable order
const defaultTaskOrder = "created_at ASC, task_id ASC"

func scanTask(row interface{ Scan(dest ...interface{}) error }) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID,
		&task.Description,
		&task.Completed,
		&task.OwnerID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// orderClause builds the ORDER BY list for sort
func orderClause(sort *models.TaskSort) string {
	if sort == nil {
		return defaultTaskOrder
	}

	column, ok := sortColumns[sort.Field]
	if !ok {
		log.Debug().Str("field", sort.Field).Msg("Unknown task sort field, using default order")
		return defaultTaskOrder
	}

	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, %s", column, direction, defaultTaskOrder)
}

// ownerFilter builds the WHERE clause shared by counting and listing
func ownerFilter(ownerID string, completed *bool) (string, []interface{}) {
	where := "owner_id = $1"
	args := []interface{}{ownerID}
	if completed != nil {
		args = append(args, *completed)
		where += fmt.Sprintf(" AND completed = $%d", len(args))
	}
	return where, args
}

// Create adds a new task to the database
func (r *PostgresTaskRepository) Create(ctx context.Context, task *models.Task) error {
	startTime := time.Now()

	now := time.Now()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now

	query := `
        INSERT INTO tasks (task_id, description, completed, owner_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	args := []interface{}{task.ID, task.Description, task.Completed, task.OwnerID, task.CreatedAt, task.UpdatedAt}
	_, err := r.db.ExecContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	log.Info().
		Str(constants.LogFieldTaskID, task.ID).
		Str(constants.LogFieldUserID, task.OwnerID).
		Msg("Task created")

	return nil
}

// GetByOwner retrieves a task by ID if it belongs to ownerID
func (r *PostgresTaskRepository) GetByOwner(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	if !validID(taskID) {
		return nil, utils.NewNotFoundError("Task", taskID)
	}

	startTime := time.Now()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE task_id = $1 AND owner_id = $2`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, taskID, ownerID))

	utils.LogDBQuery(query, []interface{}{taskID, ownerID}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Task", taskID)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// UpdateByOwner applies the non-nil fields of update to a task of ownerID
// and returns the updated task. The owner column is never written.
func (r *PostgresTaskRepository) UpdateByOwner(ctx context.Context, ownerID, taskID string, update *models.TaskUpdate) (*models.Task, error) {
	if !validID(taskID) {
		return nil, utils.NewNotFoundError("Task", taskID)
	}

	startTime := time.Now()

	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)

	if update.Description != nil {
		args = append(args, *update.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if update.Completed != nil {
		args = append(args, *update.Completed)
		sets = append(sets, fmt.Sprintf("completed = $%d", len(args)))
	}
	args = append(args, time.Now())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, taskID, ownerID)
	query := fmt.Sprintf(
		`UPDATE tasks SET %s WHERE task_id = $%d AND owner_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), taskColumns,
	)

	task, err := scanTask(r.db.QueryRowContext(ctx, query, args...))

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Task", taskID)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	log.Info().
		Str(constants.LogFieldTaskID, taskID).
		Str(constants.LogFieldUserID, ownerID).
		Msg("Task updated")

	return task, nil
}

// DeleteByOwner removes a task of ownerID and returns the deleted row
func (r *PostgresTaskRepository) DeleteByOwner(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	if !validID(taskID) {
		return nil, utils.NewNotFoundError("Task", taskID)
	}

	startTime := time.Now()

	query := `DELETE FROM tasks WHERE task_id = $1 AND owner_id = $2 RETURNING ` + taskColumns

	task, err := scanTask(r.db.QueryRowContext(ctx, query, taskID, ownerID))

	utils.LogDBQuery(query, []interface{}{taskID, ownerID}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Task", taskID)
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}

	log.Info().
		Str(constants.LogFieldTaskID, taskID).
		Str(constants.LogFieldUserID, ownerID).
		Msg("Task deleted")

	return task, nil
}

// DeleteAllByOwnerTx removes every task of ownerID using q
func (r *PostgresTaskRepository) DeleteAllByOwnerTx(ctx context.Context, q database.Querier, ownerID string) (int64, error) {
	startTime := time.Now()

	query := `DELETE FROM tasks WHERE owner_id = $1`

	result, err := q.ExecContext(ctx, query, ownerID)

	utils.LogDBQuery(query, []interface{}{ownerID}, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks of owner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rowsAffected, nil
}

// CountByOwner counts the tasks of ownerID, optionally filtered on completion
func (r *PostgresTaskRepository) CountByOwner(ctx context.Context, ownerID string, completed *bool) (int, error) {
	startTime := time.Now()

	where, args := ownerFilter(ownerID, completed)
	query := `SELECT COUNT(*) FROM tasks WHERE ` + where

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	return count, nil
}

// ListByOwner returns one window of the tasks of ownerID
func (r *PostgresTaskRepository) ListByOwner(ctx context.Context, ownerID string, completed *bool, sort *models.TaskSort, limit, offset int) ([]*models.Task, error) {
	startTime := time.Now()

	where, args := ownerFilter(ownerID, completed)
	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM tasks WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		taskColumns, where, orderClause(sort), len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}
