package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sagar-1103/taskify/internal/auth"
	"github.com/Sagar-1103/taskify/internal/domain"
	"github.com/Sagar-1103/taskify/internal/service"
	"github.com/Sagar-1103/taskify/pkg/httputil"
)

// TaskHandler handles HTTP requests for task endpoints. Every route sits
// behind the auth gate.
type TaskHandler struct {
	service *service.TaskService
	logger  *slog.Logger
}

// NewTaskHandler creates a new task HTTP handler.
func NewTaskHandler(svc *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{service: svc, logger: logger}
}

// CreateTaskRequest is the JSON request body for task creation.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"omitempty,max=200"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// UpdateTaskRequest is the JSON request body for a task update.
type UpdateTaskRequest struct {
	Title       string `json:"title" validate:"omitempty,max=200"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Status      string `json:"status"`
}

type taskResponse struct {
	Task *domain.Task `json:"task"`
}

type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type countsResponse struct {
	Counts domain.TaskCounts `json:"counts"`
}

func ownerID(r *http.Request) string {
	return auth.UserFromContext(r.Context()).ID
}

// Create handles POST /tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	task, err := h.service.Create(r.Context(), ownerID(r), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.Respond(w, http.StatusCreated, "Task created successfully", taskResponse{Task: task})
}

// List handles GET /tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context(), ownerID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.Respond(w, http.StatusOK, "Tasks fetched successfully", tasksResponse{Tasks: tasks})
}

// Count handles GET /tasks/count
func (h *TaskHandler) Count(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Count(r.Context(), ownerID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.Respond(w, http.StatusOK, "Task count fetched successfully", countsResponse{Counts: counts})
}

// Get handles GET /tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Get(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.Respond(w, http.StatusOK, "Task fetched successfully", taskResponse{Task: task})
}

// Update handles PUT /tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	task, err := h.service.Update(r.Context(), ownerID(r), chi.URLParam(r, "id"), service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.Respond(w, http.StatusOK, "Task updated successfully", taskResponse{Task: task})
}

// Delete handles DELETE /tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.Respond(w, http.StatusOK, "Task deleted successfully", struct{}{})
}
