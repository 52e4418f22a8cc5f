package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/models"
	"github.com/yasinhessnawi1/taskmanager/internal/service"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// TaskHandler handles the routes of the caller's own task list
type TaskHandler struct {
	taskService TaskServiceInterface
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService TaskServiceInterface) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	var req models.TaskCreate
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	task, err := h.taskService.Create(r.Context(), principal.UserID(), &req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, task)
}

// ListTasks handles GET /tasks?completed=&sortBy=&limit=&page=
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	principal, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	page, err := h.taskService.List(r.Context(), principal.UserID(), service.ParseTaskQuery(r.URL.Query()))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, page)
}

// GetTask handles GET /tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), principal.UserID(), chi.URLParam(r, constants.ParamID))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, task)
}

// UpdateTask handles PATCH /tasks/{id}. Only description and completed may change.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	updates, err := utils.DecodeUpdates(r, constants.TaskUpdateFields)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	task, err := h.taskService.Update(r.Context(), principal.UserID(), chi.URLParam(r, constants.ParamID), updates)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id} and returns the deleted task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Delete(r.Context(), principal.UserID(), chi.URLParam(r, constants.ParamID))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, task)
}
