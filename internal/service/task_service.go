package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/mapper"
	"github.com/straye-as/project-ledger-api/internal/notify"
	"github.com/straye-as/project-ledger-api/internal/repository"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"go.uber.org/zap"
)

// TaskService handles business logic for tasks
type TaskService struct {
	taskRepo *repository.TaskRepository
	userRepo *repository.UserRepository
	guard    *Guard
	notifier notify.Sink
	logger   *zap.Logger
	now      func() time.Time
}

func NewTaskService(
	taskRepo *repository.TaskRepository,
	userRepo *repository.UserRepository,
	guard *Guard,
	notifier notify.Sink,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		guard:    guard,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *TaskService) validateAssignee(ctx context.Context, companyID, assigneeID uuid.UUID) error {
	assignee, err := s.userRepo.GetByIDInCompany(ctx, companyID, assigneeID)
	if err != nil {
		return notFoundOr(err, ErrInvalidAssignee, "get assignee")
	}
	if !assignee.IsActive {
		return ErrInvalidAssignee
	}
	return nil
}

func (s *TaskService) notifyAssignee(ctx context.Context, task *domain.Task, projectName string) {
	if task.AssigneeID == nil {
		return
	}
	s.notifier.Notify(ctx, *task.AssigneeID,
		"New task assigned",
		fmt.Sprintf("You were assigned %q on %s", task.Title, projectName),
		domain.NotificationTypeTaskAssigned,
		"/tasks/"+task.ID.String(),
	)
}

// Create adds a task to a project the principal manages
func (s *TaskService) Create(ctx context.Context, p *auth.UserContext, req *domain.CreateTaskRequest) (*domain.TaskDTO, error) {
	project, err := s.guard.RequireProjectManager(ctx, p, req.ProjectID)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.TaskStatusNew
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}
	if !priority.IsValid() {
		return nil, ErrInvalidPriority
	}
	if req.AssigneeID != nil {
		if err := s.validateAssignee(ctx, p.CompanyID, *req.AssigneeID); err != nil {
			return nil, err
		}
	}

	task := &domain.Task{
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created",
		zap.String("task_id", task.ID.String()),
		zap.String("project_id", project.ID.String()),
		zap.String("created_by", p.UserID.String()),
	)
	if task.AssigneeID != nil && *task.AssigneeID != p.UserID {
		s.notifyAssignee(ctx, task, project.Name)
	}

	dto := mapper.ToTaskDTO(task, s.now())
	return &dto, nil
}

// Update edits a task. The project's manager (or an Admin) may change anything;
// the assignee may only move the status.
func (s *TaskService) Update(ctx context.Context, p *auth.UserContext, id uuid.UUID, req *domain.UpdateTaskRequest) (*domain.TaskDTO, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	task, err := s.taskRepo.GetByIDInCompany(ctx, p.CompanyID, id)
	if err != nil {
		return nil, notFoundOr(err, ErrTaskNotFound, "get task")
	}

	isAssignee := task.AssigneeID != nil && *task.AssigneeID == p.UserID
	statusOnly := req.Title == nil && req.Description == nil && req.AssigneeID == nil &&
		req.Priority == nil && req.DueDate == nil
	if !(isAssignee && statusOnly) {
		if _, err := s.guard.RequireProjectManager(ctx, p, task.ProjectID); err != nil {
			return nil, err
		}
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *req.Status
	}
	if req.Priority != nil {
		if !req.Priority.IsValid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	reassigned := false
	if req.AssigneeID != nil && (task.AssigneeID == nil || *task.AssigneeID != *req.AssigneeID) {
		if err := s.validateAssignee(ctx, p.CompanyID, *req.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = req.AssigneeID
		reassigned = true
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("task updated",
		zap.String("task_id", task.ID.String()),
		zap.String("status", string(task.Status)),
		zap.String("updated_by", p.UserID.String()),
	)
	if reassigned && *task.AssigneeID != p.UserID {
		projectName := ""
		if task.Project != nil {
			projectName = task.Project.Name
		}
		s.notifyAssignee(ctx, task, projectName)
	}

	dto := mapper.ToTaskDTO(task, s.now())
	return &dto, nil
}

// Delete removes a task and its timesheets
func (s *TaskService) Delete(ctx context.Context, p *auth.UserContext, id uuid.UUID) error {
	if err := principal(p); err != nil {
		return err
	}
	task, err := s.taskRepo.GetByIDInCompany(ctx, p.CompanyID, id)
	if err != nil {
		return notFoundOr(err, ErrTaskNotFound, "get task")
	}
	if _, err := s.guard.RequireProjectManager(ctx, p, task.ProjectID); err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.logger.Info("task deleted", zap.String("task_id", id.String()), zap.String("deleted_by", p.UserID.String()))
	return nil
}

// List returns tasks visible to the principal. A team member without an
// assignee filter only gets tasks assigned to them.
func (s *TaskService) List(ctx context.Context, p *auth.UserContext, q scope.TaskQuery, page, pageSize int, sortField string, order repository.SortOrder) (*domain.PaginatedResponse, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	if q.Status != nil && !q.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if q.Priority != nil && !q.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}
	filter, err := scope.Tasks(p, q)
	if err != nil {
		return nil, err
	}

	tasks, total, err := s.taskRepo.List(ctx, filter, page, pageSize, sortField, order)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	now := s.now()
	dtos := make([]domain.TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = mapper.ToTaskDTO(&tasks[i], now)
	}
	return paginate(dtos, total, page, pageSize), nil
}
