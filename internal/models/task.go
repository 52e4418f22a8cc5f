// Package models provides data structures for the task manager.
// This file contains the task model and the types of the paginated task query.
package models

import (
	"strings"
	"time"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
)

// Task is a single item of a user's task list.
// OwnerID is set at creation and never changes.
type Task struct {
	ID          string    `json:"id" db:"task_id"`
	Description string    `json:"description" db:"description"`
	Completed   bool      `json:"completed" db:"completed"`
	OwnerID     string    `json:"owner" db:"owner_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewTask creates a task owned by ownerID.
func NewTask(ownerID, description string, completed bool) *Task {
	now := time.Now()
	return &Task{
		Description: description,
		Completed:   completed,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TableName returns the database table name for the Task model.
func (t *Task) TableName() string {
	return constants.TableTasks
}

// TaskCreate is the request body of a new task.
type TaskCreate struct {
	Description string `json:"description" validate:"required,notblank"`
	Completed   *bool  `json:"completed"`
}

// Normalize trims the description.
func (c *TaskCreate) Normalize() {
	c.Description = strings.TrimSpace(c.Description)
}

// TaskUpdate holds the decoded fields of a partial task update.
// A nil field was not part of the request.
type TaskUpdate struct {
	Description *string
	Completed   *bool
}

// TaskSort is an ordering requested by the client. Field is passed on unchecked;
// an unknown field is ignored and the listing keeps its default order.
type TaskSort struct {
	Field string
	Desc  bool
}

// TaskQuery is the parsed form of the list query parameters.
type TaskQuery struct {
	// Completed filters on completion state. Nil means no filter.
	Completed *bool

	// Sort is nil when no sortBy was given.
	Sort *TaskSort

	Limit int
	Page  int
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks      []*Task `json:"tasks"`
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages"`
}
