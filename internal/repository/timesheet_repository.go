package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) *TimesheetRepository {
	return &TimesheetRepository{db: db}
}

// TimesheetTotals are the summed figures of a timesheet selection
type TimesheetTotals struct {
	Hours         decimal.Decimal
	BillableHours decimal.Decimal
	Cost          decimal.Decimal
}

// ProjectTimesheetTotals are per-project sums of a timesheet selection
type ProjectTimesheetTotals struct {
	ProjectID uuid.UUID
	Hours     decimal.Decimal
	Cost      decimal.Decimal
}

// DatedHours is one timesheet's date and hours, used for time series
type DatedHours struct {
	LogDate     time.Time
	HoursLogged decimal.Decimal
}

func (r *TimesheetRepository) Create(ctx context.Context, timesheet *domain.Timesheet) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(timesheet).Error
}

// GetByIDInCompany loads a timesheet when its task's project belongs to the company
func (r *TimesheetRepository) GetByIDInCompany(ctx context.Context, companyID, id uuid.UUID) (*domain.Timesheet, error) {
	var timesheet domain.Timesheet
	err := r.db.WithContext(ctx).
		Preload("Task").
		Where("timesheets.id = ? AND timesheets.task_id IN (?)", id,
			scopedTaskIDs(ctx, r.db, scope.ProjectFilter{CompanyID: companyID, Visibility: scope.VisibilityCompany})).
		First(&timesheet).Error
	if err != nil {
		return nil, err
	}
	return &timesheet, nil
}

// Recompute loads a timesheet and its owner inside a transaction, lets fn mutate
// the timesheet (typically recomputing cost from the owner's current rate) and saves it.
func (r *TimesheetRepository) Recompute(ctx context.Context, id uuid.UUID, fn func(timesheet *domain.Timesheet, owner *domain.User) error) (*domain.Timesheet, error) {
	var timesheet domain.Timesheet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&timesheet, "id = ?", id).Error; err != nil {
			return err
		}
		var owner domain.User
		if err := tx.First(&owner, "id = ?", timesheet.UserID).Error; err != nil {
			return err
		}
		if err := fn(&timesheet, &owner); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&timesheet).Error
	})
	if err != nil {
		return nil, err
	}
	return &timesheet, nil
}

func (r *TimesheetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Timesheet{}, "id = ?", id).Error
}

func (r *TimesheetRepository) applyFilter(ctx context.Context, f scope.TimesheetFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&domain.Timesheet{}).
		Where("timesheets.task_id IN (?)", scopedTaskIDs(ctx, r.db, f.Projects))

	if f.TaskID != nil {
		query = query.Where("timesheets.task_id = ?", *f.TaskID)
	}
	if f.UserID != nil {
		query = query.Where("timesheets.user_id = ?", *f.UserID)
	}
	if f.From != nil {
		query = query.Where("timesheets.log_date >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("timesheets.log_date < ?", *f.To)
	}
	return query
}

// List returns the timesheets matching the filter, newest first
func (r *TimesheetRepository) List(ctx context.Context, f scope.TimesheetFilter, page, pageSize int) ([]domain.Timesheet, int64, error) {
	var timesheets []domain.Timesheet
	var total int64

	query := r.applyFilter(ctx, f)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("timesheets.log_date DESC, timesheets.created_at DESC").
		Offset(offset(page, pageSize)).
		Limit(pageSize).
		Find(&timesheets).Error
	return timesheets, total, err
}

// SumCostByProject sums stored timesheet cost over every task of the project
func (r *TimesheetRepository) SumCostByProject(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	taskIDs := r.db.WithContext(ctx).Model(&domain.Task{}).Select("id").Where("project_id = ?", projectID)
	return sumDecimal(
		r.db.WithContext(ctx).Model(&domain.Timesheet{}).Where("task_id IN (?)", taskIDs),
		"cost",
	)
}

// Totals sums hours, billable hours and cost over the filter
func (r *TimesheetRepository) Totals(ctx context.Context, f scope.TimesheetFilter) (TimesheetTotals, error) {
	var totals TimesheetTotals
	err := r.applyFilter(ctx, f).
		Select("COALESCE(SUM(timesheets.hours_logged), 0) AS hours, " +
			"COALESCE(SUM(CASE WHEN timesheets.is_billable THEN timesheets.hours_logged ELSE 0 END), 0) AS billable_hours, " +
			"COALESCE(SUM(timesheets.cost), 0) AS cost").
		Scan(&totals).Error
	return totals, err
}

// TotalsByProject groups hours and cost by the task's project
func (r *TimesheetRepository) TotalsByProject(ctx context.Context, f scope.TimesheetFilter) ([]ProjectTimesheetTotals, error) {
	var rows []ProjectTimesheetTotals
	err := r.applyFilter(ctx, f).
		Joins("JOIN tasks ON tasks.id = timesheets.task_id").
		Select("tasks.project_id AS project_id, " +
			"COALESCE(SUM(timesheets.hours_logged), 0) AS hours, " +
			"COALESCE(SUM(timesheets.cost), 0) AS cost").
		Group("tasks.project_id").
		Scan(&rows).Error
	return rows, err
}

// DatedHours returns the date and hours of every timesheet matching the filter
func (r *TimesheetRepository) DatedHours(ctx context.Context, f scope.TimesheetFilter) ([]DatedHours, error) {
	var rows []DatedHours
	err := r.applyFilter(ctx, f).
		Select("timesheets.log_date AS log_date, timesheets.hours_logged AS hours_logged").
		Order("timesheets.log_date ASC").
		Scan(&rows).Error
	return rows, err
}
