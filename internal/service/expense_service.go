package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/mapper"
	"github.com/straye-as/project-ledger-api/internal/notify"
	"github.com/straye-as/project-ledger-api/internal/repository"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"go.uber.org/zap"
)

// ExpenseService handles expense submission and review
type ExpenseService struct {
	expenseRepo *repository.ExpenseRepository
	guard       *Guard
	notifier    notify.Sink
	logger      *zap.Logger
}

func NewExpenseService(
	expenseRepo *repository.ExpenseRepository,
	guard *Guard,
	notifier notify.Sink,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		guard:       guard,
		notifier:    notifier,
		logger:      logger,
	}
}

// Submit records an expense for the principal. A linked project must be one
// the principal belongs to.
func (s *ExpenseService) Submit(ctx context.Context, p *auth.UserContext, req *domain.CreateExpenseRequest) (*domain.ExpenseDTO, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	expenseDate, err := parseDate(req.ExpenseDate)
	if err != nil {
		return nil, err
	}
	if req.ProjectID != nil {
		if _, err := s.guard.RequireProjectMember(ctx, p, *req.ProjectID); err != nil {
			return nil, err
		}
	}

	expense := &domain.Expense{
		UserID:      p.UserID,
		ProjectID:   req.ProjectID,
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount.Round(2),
		Status:      domain.ExpenseStatusPending,
		IsBillable:  req.IsBillable,
		ExpenseDate: expenseDate,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.logger.Info("expense submitted",
		zap.String("expense_id", expense.ID.String()),
		zap.String("user_id", p.UserID.String()),
		zap.String("amount", expense.Amount.StringFixed(2)),
	)

	dto := mapper.ToExpenseDTO(expense)
	return &dto, nil
}

// List returns expenses visible to the principal
func (s *ExpenseService) List(ctx context.Context, p *auth.UserContext, q scope.ExpenseQuery, page, pageSize int) (*domain.PaginatedResponse, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	filter, err := scope.Expenses(p, q)
	if err != nil {
		return nil, err
	}

	expenses, total, err := s.expenseRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	dtos := make([]domain.ExpenseDTO, len(expenses))
	for i := range expenses {
		dtos[i] = mapper.ToExpenseDTO(&expenses[i])
	}
	return paginate(dtos, total, page, pageSize), nil
}

// UpdateStatus approves, rejects or reimburses an expense. Admins review any
// company expense; project managers only those on projects they manage.
func (s *ExpenseService) UpdateStatus(ctx context.Context, p *auth.UserContext, id uuid.UUID, to domain.ExpenseStatus) (*domain.ExpenseDTO, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	if !to.IsValid() {
		return nil, ErrInvalidStatus
	}
	filter, err := scope.ExpenseReview(p)
	if err != nil {
		return nil, err
	}

	if _, err := s.expenseRepo.GetByIDInScope(ctx, filter, id); err != nil {
		return nil, notFoundOr(err, ErrExpenseNotFound, "get expense")
	}

	expense, err := s.expenseRepo.TransitionStatus(ctx, id, to, p.UserID, func(current *domain.Expense) error {
		if !domain.CanTransitionExpense(current.Status, to) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, current.Status, to)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidStatusTransition) {
			return nil, err
		}
		return nil, notFoundOr(err, ErrExpenseNotFound, "update expense status")
	}

	s.logger.Info("expense reviewed",
		zap.String("expense_id", id.String()),
		zap.String("status", string(to)),
		zap.String("reviewed_by", p.UserID.String()),
	)

	s.notifier.Notify(ctx, expense.UserID,
		"Expense "+string(to),
		fmt.Sprintf("Your expense %q of %s was marked %s", expense.Description, expense.Amount.StringFixed(2), to),
		domain.NotificationTypeExpenseReviewed,
		"/expenses/"+expense.ID.String(),
	)

	dto := mapper.ToExpenseDTO(expense)
	return &dto, nil
}
