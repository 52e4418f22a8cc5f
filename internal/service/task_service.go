package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/models"
	"github.com/yasinhessnawi1/taskmanager/internal/repository"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// TaskService handles the task list of each user.
// Every operation names its owner explicitly, and a task of another owner
// is reported exactly like a missing one.
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// Create validates and stores a new task of ownerID
func (s *TaskService) Create(ctx context.Context, ownerID string, req *models.TaskCreate) (*models.Task, error) {
	req.Normalize()
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	completed := false
	if req.Completed != nil {
		completed = *req.Completed
	}

	task := models.NewTask(ownerID, req.Description, completed)
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// Get returns one task of ownerID
func (s *TaskService) Get(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	return s.taskRepo.GetByOwner(ctx, ownerID, taskID)
}

// Update applies a partial update to a task of ownerID.
//
// Parameters:
//   - ctx: Request context
//   - ownerID: The authenticated owner
//   - taskID: The task to update
//   - updates: The raw JSON values by key. Only description and completed are allowed.
//
// Returns:
//   - The updated task
//   - A validation error for a key outside the allow-list or a bad value,
//     in which case the store is not touched
//   - NotFound if the task does not exist or belongs to someone else
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, updates map[string]json.RawMessage) (*models.Task, error) {
	if bad := utils.DisallowedKeys(updates, constants.TaskUpdateFields); len(bad) > 0 {
		return nil, utils.NewValidationError("updates", constants.MsgInvalidUpdates)
	}

	update := &models.TaskUpdate{}

	if raw, ok := updates["description"]; ok {
		description, err := decodeString("description", raw)
		if err != nil {
			return nil, err
		}
		if err := utils.ValidateVar("description", description, "required,notblank"); err != nil {
			return nil, err
		}
		update.Description = &description
	}

	if raw, ok := updates["completed"]; ok {
		var completed bool
		if err := json.Unmarshal(raw, &completed); err != nil {
			return nil, utils.NewValidationError("completed", "Must be a boolean")
		}
		update.Completed = &completed
	}

	return s.taskRepo.UpdateByOwner(ctx, ownerID, taskID, update)
}

// Delete removes a task of ownerID and returns it
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	return s.taskRepo.DeleteByOwner(ctx, ownerID, taskID)
}

// List returns one page of the tasks of ownerID.
//
// The page is clamped to the last page. With no matching tasks at all the
// result is page 0 of 0 and no rows are read.
func (s *TaskService) List(ctx context.Context, ownerID string, q models.TaskQuery) (*models.TaskPage, error) {
	limit := positiveOr(q.Limit, constants.DefaultTaskLimit)
	page := positiveOr(q.Page, constants.DefaultTaskPage)

	total, err := s.taskRepo.CountByOwner(ctx, ownerID, q.Completed)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		return &models.TaskPage{Tasks: []*models.Task{}, Page: 0, TotalPages: 0}, nil
	}

	if page > totalPages {
		page = totalPages
	}
	skip := (page - 1) * limit

	tasks, err := s.taskRepo.ListByOwner(ctx, ownerID, q.Completed, q.Sort, limit, skip)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str(constants.LogFieldUserID, ownerID).
		Int("total", total).
		Int("page", page).
		Int("limit", limit).
		Str("sort", sortLabel(q.Sort)).
		Msg("Tasks listed")

	return &models.TaskPage{Tasks: tasks, Page: page, TotalPages: totalPages}, nil
}

func sortLabel(sort *models.TaskSort) string {
	if sort == nil {
		return ""
	}
	if sort.Desc {
		return strings.Join([]string{sort.Field, constants.SortDirectionDesc}, constants.SortSeparator)
	}
	return sort.Field
}
