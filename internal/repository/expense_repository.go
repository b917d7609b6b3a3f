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

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(expense).Error
}

func (r *ExpenseRepository) applyFilter(ctx context.Context, query *gorm.DB, f scope.ExpenseFilter) *gorm.DB {
	query = query.Where("expenses.user_id IN (?)", companyUserIDs(ctx, r.db, f.CompanyID))

	if f.UserID != nil {
		query = query.Where("expenses.user_id = ?", *f.UserID)
	}
	if f.ProjectID != nil {
		query = query.Where("expenses.project_id = ?", *f.ProjectID)
	}
	if f.Status != nil {
		query = query.Where("expenses.status = ?", *f.Status)
	}
	if f.ManagedBy != nil {
		managed := scopedProjectIDs(ctx, r.db, scope.ProjectFilter{
			CompanyID:  f.CompanyID,
			Visibility: scope.VisibilityManaged,
			SubjectID:  *f.ManagedBy,
		})
		query = query.Where("expenses.project_id IN (?)", managed)
	}
	return query
}

// GetByIDInScope loads an expense only if it matches the filter
func (r *ExpenseRepository) GetByIDInScope(ctx context.Context, f scope.ExpenseFilter, id uuid.UUID) (*domain.Expense, error) {
	var expense domain.Expense
	query := r.applyFilter(ctx, r.db.WithContext(ctx).Model(&domain.Expense{}), f)
	if err := query.Where("expenses.id = ?", id).First(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

// TransitionStatus re-reads the expense inside a transaction, lets check validate
// the move and stores the new status with reviewer details
func (r *ExpenseRepository) TransitionStatus(ctx context.Context, id uuid.UUID, to domain.ExpenseStatus, reviewerID uuid.UUID, check func(current *domain.Expense) error) (*domain.Expense, error) {
	var expense domain.Expense
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&expense, "id = ?", id).Error; err != nil {
			return err
		}
		if err := check(&expense); err != nil {
			return err
		}
		now := time.Now().UTC()
		expense.Status = to
		expense.ReviewedByID = &reviewerID
		expense.ReviewedAt = &now
		return tx.Model(&domain.Expense{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":         to,
			"reviewed_by_id": reviewerID,
			"reviewed_at":    now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// List returns the expenses matching the filter, newest first
func (r *ExpenseRepository) List(ctx context.Context, f scope.ExpenseFilter, page, pageSize int) ([]domain.Expense, int64, error) {
	var expenses []domain.Expense
	var total int64

	query := r.applyFilter(ctx, r.db.WithContext(ctx).Model(&domain.Expense{}), f)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("expenses.expense_date DESC, expenses.created_at DESC").
		Offset(offset(page, pageSize)).
		Limit(pageSize).
		Find(&expenses).Error
	return expenses, total, err
}

// CountByStatus counts expenses matching the filter with the given status
func (r *ExpenseRepository) CountByStatus(ctx context.Context, f scope.ExpenseFilter, status domain.ExpenseStatus) (int64, error) {
	var count int64
	err := r.applyFilter(ctx, r.db.WithContext(ctx).Model(&domain.Expense{}), f).
		Where("expenses.status = ?", status).
		Count(&count).Error
	return count, err
}

// CountPendingInProjects counts pending expenses linked to projects visible under pf
func (r *ExpenseRepository) CountPendingInProjects(ctx context.Context, pf scope.ProjectFilter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Expense{}).
		Where("expenses.project_id IN (?)", scopedProjectIDs(ctx, r.db, pf)).
		Where("expenses.status = ?", domain.ExpenseStatusPending).
		Count(&count).Error
	return count, err
}

// SumCostByProject sums approved and reimbursed expenses linked to the project
func (r *ExpenseRepository) SumCostByProject(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	return sumDecimal(
		r.db.WithContext(ctx).
			Model(&domain.Expense{}).
			Where("project_id = ? AND status IN ?", projectID, domain.CostExpenseStatuses),
		"amount",
	)
}
