package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var taskSortFields = map[string]string{
	"title":     "tasks.title",
	"status":    "tasks.status",
	"priority":  "tasks.priority",
	"dueDate":   "tasks.due_date",
	"createdAt": "tasks.created_at",
}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// GetByIDInCompany loads a task with its project, only when the project belongs to the company
func (r *TaskRepository) GetByIDInCompany(ctx context.Context, companyID, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	companyProjects := r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Select("id").
		Where("company_id = ?", companyID)
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("tasks.id = ? AND tasks.project_id IN (?)", id, companyProjects).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// Delete removes a task and its timesheets
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&domain.Timesheet{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Task{}, "id = ?", id).Error
	})
}

func (r *TaskRepository) applyFilter(ctx context.Context, f scope.TaskFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("tasks.project_id IN (?)", scopedProjectIDs(ctx, r.db, f.Projects))

	if f.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *f.AssigneeID)
	}
	if f.Status != nil {
		query = query.Where("tasks.status = ?", *f.Status)
	}
	if f.Priority != nil {
		query = query.Where("tasks.priority = ?", *f.Priority)
	}
	return query
}

// List returns the tasks matching the filter
func (r *TaskRepository) List(ctx context.Context, f scope.TaskFilter, page, pageSize int, sortField string, order SortOrder) ([]domain.Task, int64, error) {
	var tasks []domain.Task
	var total int64

	query := r.applyFilter(ctx, f)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order(BuildOrderClause(sortField, order, taskSortFields, "tasks.created_at")).
		Offset(offset(page, pageSize)).
		Limit(pageSize).
		Find(&tasks).Error
	return tasks, total, err
}

// CountOpen counts tasks matching the filter that are not done
func (r *TaskRepository) CountOpen(ctx context.Context, f scope.TaskFilter) (int64, error) {
	var count int64
	err := r.applyFilter(ctx, f).
		Where("tasks.status <> ?", domain.TaskStatusDone).
		Count(&count).Error
	return count, err
}

// CountOverdue counts tasks matching the filter with due_date < now that are not done
func (r *TaskRepository) CountOverdue(ctx context.Context, f scope.TaskFilter, now time.Time) (int64, error) {
	var count int64
	err := r.applyFilter(ctx, f).
		Where("tasks.due_date IS NOT NULL AND tasks.due_date < ? AND tasks.status <> ?", now, domain.TaskStatusDone).
		Count(&count).Error
	return count, err
}

// CountDoneSince counts tasks matching the filter that are done and were last updated at or after since
func (r *TaskRepository) CountDoneSince(ctx context.Context, f scope.TaskFilter, since time.Time) (int64, error) {
	var count int64
	query := r.applyFilter(ctx, f).Where("tasks.status = ?", domain.TaskStatusDone)
	if !since.IsZero() {
		query = query.Where("tasks.updated_at >= ?", since)
	}
	err := query.Count(&count).Error
	return count, err
}

// ListOverdueAssigned returns every overdue task with an assignee across all companies.
// Used by the reminder job, which runs outside any request scope.
func (r *TaskRepository) ListOverdueAssigned(ctx context.Context, now time.Time, limit int) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("assignee_id IS NOT NULL AND due_date IS NOT NULL AND due_date < ? AND status <> ?", now, domain.TaskStatusDone).
		Order("due_date ASC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}
