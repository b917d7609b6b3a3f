package handler

import (
	"net/http"

	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/repository"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"github.com/straye-as/project-ledger-api/internal/service"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService *service.TaskService
	logger      *zap.Logger
}

func NewTaskHandler(taskService *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// List godoc
// @Summary List tasks
// @Description Team members without filters see only the tasks assigned to them
// @Tags Tasks
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param projectId query string false "Filter by project" format(uuid)
// @Param assigneeId query string false "Filter by assignee" format(uuid)
// @Param status query string false "Filter by status" Enums(New, In Progress, Blocked, Done)
// @Param priority query string false "Filter by priority" Enums(Low, Medium, High, Urgent)
// @Param sortBy query string false "Sort field" Enums(title, status, priority, dueDate, createdAt)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.TaskDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	page, pageSize := pagination(r)

	var q scope.TaskQuery
	var ok bool
	if q.ProjectID, ok = queryUUID(w, r, "projectId"); !ok {
		return
	}
	if q.AssigneeID, ok = queryUUID(w, r, "assigneeId"); !ok {
		return
	}
	q.Status = queryString[domain.TaskStatus](r, "status")
	if q.Status != nil && !q.Status.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	q.Priority = queryString[domain.TaskPriority](r, "priority")
	if q.Priority != nil && !q.Priority.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid priority")
		return
	}

	result, err := h.taskService.List(r.Context(), p, q, page, pageSize,
		r.URL.Query().Get("sortBy"), repository.ParseSortOrder(r.URL.Query().Get("sortOrder")))
	if err != nil {
		respondServiceError(w, h.logger, err, "list tasks")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create task
// @Description Only the project's manager or an admin may create tasks. The assignee is notified.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body domain.CreateTaskRequest true "Task data"
// @Success 201 {object} domain.TaskDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /tasks [post]
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	var req domain.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.Create(r.Context(), p, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create task")
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// Update godoc
// @Summary Update task
// @Description Assignees may change the status of their task. Other changes need the project's manager.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID" format(uuid)
// @Param request body domain.UpdateTaskRequest true "Fields to change"
// @Success 200 {object} domain.TaskDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.Update(r.Context(), p, id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// Delete godoc
// @Summary Delete task
// @Description Removes the task and its timesheets
// @Tags Tasks
// @Param id path string true "Task ID" format(uuid)
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), p, id); err != nil {
		respondServiceError(w, h.logger, err, "delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
