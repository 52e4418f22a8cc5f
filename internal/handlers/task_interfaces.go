package handlers

import (
	"context"
	"encoding/json"
	"io"

	"github.com/yasinhessnawi1/taskmanager/internal/models"
)

// TaskServiceInterface defines the methods required from TaskService.
// A task that belongs to another owner is reported as NotFound.
type TaskServiceInterface interface {
	Create(ctx context.Context, ownerID string, req *models.TaskCreate) (*models.Task, error)
	Get(ctx context.Context, ownerID, taskID string) (*models.Task, error)
	Update(ctx context.Context, ownerID, taskID string, updates map[string]json.RawMessage) (*models.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) (*models.Task, error)
	List(ctx context.Context, ownerID string, q models.TaskQuery) (*models.TaskPage, error)
}

// DocumentServiceInterface defines the service methods required for document uploads.
type DocumentServiceInterface interface {
	Upload(ctx context.Context, ownerID, filename string, size int64, data io.Reader) (string, error)
}
