package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// projectSortFields maps API sort fields to columns
var projectSortFields = map[string]string{
	"name":      "projects.name",
	"status":    "projects.status",
	"budget":    "projects.budget",
	"createdAt": "projects.created_at",
	"updatedAt": "projects.updated_at",
}

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// GetByID loads a project regardless of company. Callers must check ownership.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByIDInCompany loads a project only when it belongs to the company
func (r *ProjectRepository) GetByIDInCompany(ctx context.Context, companyID, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).
		Preload("ProjectManager").
		First(&project, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
}

// Delete removes a project together with its members, tasks and their timesheets
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&domain.Task{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&domain.Timesheet{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&domain.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Project{}, "id = ?", id).Error
	})
}

// List returns the projects visible under the filter
func (r *ProjectRepository) List(ctx context.Context, f scope.ProjectFilter, search string, page, pageSize int, sortField string, order SortOrder) ([]domain.Project, int64, error) {
	var projects []domain.Project
	var total int64

	query := applyProjectFilter(ctx, r.db, r.db.WithContext(ctx).Model(&domain.Project{}), f)
	if search != "" {
		query = query.Where("LOWER(projects.name) LIKE ?", "%"+toLowerLike(search)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("ProjectManager").
		Order(BuildOrderClause(sortField, order, projectSortFields, "projects.updated_at")).
		Offset(offset(page, pageSize)).
		Limit(pageSize).
		Find(&projects).Error
	return projects, total, err
}

// ListAll returns every project visible under the filter, unpaginated
func (r *ProjectRepository) ListAll(ctx context.Context, f scope.ProjectFilter) ([]domain.Project, error) {
	var projects []domain.Project
	err := applyProjectFilter(ctx, r.db, r.db.WithContext(ctx).Model(&domain.Project{}), f).
		Order("projects.name ASC").
		Find(&projects).Error
	return projects, err
}

// Count returns the number of projects visible under the filter
func (r *ProjectRepository) Count(ctx context.Context, f scope.ProjectFilter) (int64, error) {
	var count int64
	err := applyProjectFilter(ctx, r.db, r.db.WithContext(ctx).Model(&domain.Project{}), f).Count(&count).Error
	return count, err
}

// IsMember reports whether a ProjectMember row exists for (project, user)
func (r *ProjectRepository) IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

// AddMember inserts a membership; adding an existing member is a no-op
func (r *ProjectRepository) AddMember(ctx context.Context, projectID, userID uuid.UUID) error {
	member := &domain.ProjectMember{ProjectID: projectID, UserID: userID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member).Error
}

// RemoveMember deletes a membership and reports whether one existed
func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&domain.ProjectMember{})
	return result.RowsAffected > 0, result.Error
}

// ListMembers returns the members of a project with their user records
func (r *ProjectRepository) ListMembers(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectMember, error) {
	var members []domain.ProjectMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Find(&members).Error
	return members, err
}
