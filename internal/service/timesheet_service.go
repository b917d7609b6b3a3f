package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/mapper"
	"github.com/straye-as/project-ledger-api/internal/repository"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"go.uber.org/zap"
)

var maxHoursPerEntry = decimal.NewFromInt(24)

// TimesheetService logs hours against tasks and snapshots their cost
type TimesheetService struct {
	timesheetRepo *repository.TimesheetRepository
	taskRepo      *repository.TaskRepository
	userRepo      *repository.UserRepository
	guard         *Guard
	logger        *zap.Logger
}

func NewTimesheetService(
	timesheetRepo *repository.TimesheetRepository,
	taskRepo *repository.TaskRepository,
	userRepo *repository.UserRepository,
	guard *Guard,
	logger *zap.Logger,
) *TimesheetService {
	return &TimesheetService{
		timesheetRepo: timesheetRepo,
		taskRepo:      taskRepo,
		userRepo:      userRepo,
		guard:         guard,
		logger:        logger,
	}
}

// ValidateHours enforces 0 < hours <= 24
func ValidateHours(hours decimal.Decimal) error {
	if !hours.IsPositive() || hours.GreaterThan(maxHoursPerEntry) {
		return ErrInvalidHours
	}
	return nil
}

// CostForUser looks up the user's current hourly rate and returns the cost of hours
func (s *TimesheetService) CostForUser(ctx context.Context, hours decimal.Decimal, userID uuid.UUID) (decimal.Decimal, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return decimal.Zero, notFoundOr(err, ErrUserNotFound, "get user")
	}
	return TimesheetCost(hours, user.HourlyRate), nil
}

// Create logs hours for the principal on a task of a project they belong to
func (s *TimesheetService) Create(ctx context.Context, p *auth.UserContext, req *domain.CreateTimesheetRequest) (*domain.TimesheetDTO, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	if err := ValidateHours(req.HoursLogged); err != nil {
		return nil, err
	}
	logDate, err := parseDate(req.LogDate)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.GetByIDInCompany(ctx, p.CompanyID, req.TaskID)
	if err != nil {
		return nil, notFoundOr(err, ErrTaskNotFound, "get task")
	}
	if _, err := s.guard.RequireProjectMember(ctx, p, task.ProjectID); err != nil {
		return nil, err
	}

	cost, err := s.CostForUser(ctx, req.HoursLogged, p.UserID)
	if err != nil {
		return nil, err
	}

	billable := true
	if req.IsBillable != nil {
		billable = *req.IsBillable
	}

	timesheet := &domain.Timesheet{
		TaskID:      task.ID,
		UserID:      p.UserID,
		HoursLogged: req.HoursLogged,
		LogDate:     logDate,
		Description: req.Description,
		IsBillable:  billable,
		Cost:        cost,
	}
	if err := s.timesheetRepo.Create(ctx, timesheet); err != nil {
		return nil, fmt.Errorf("failed to create timesheet: %w", err)
	}

	s.logger.Info("timesheet logged",
		zap.String("timesheet_id", timesheet.ID.String()),
		zap.String("task_id", task.ID.String()),
		zap.String("user_id", p.UserID.String()),
		zap.String("hours", req.HoursLogged.String()),
		zap.String("cost", cost.StringFixed(2)),
	)

	dto := mapper.ToTimesheetDTO(timesheet)
	return &dto, nil
}

// authorizeEdit lets the owner, an Admin or the manager of the task's project change a timesheet
func (s *TimesheetService) authorizeEdit(ctx context.Context, p *auth.UserContext, timesheet *domain.Timesheet) error {
	if timesheet.UserID == p.UserID {
		return nil
	}
	switch p.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleProjectManager:
		if timesheet.Task == nil {
			return ErrNotOwner
		}
		_, err := s.guard.RequireProjectManager(ctx, p, timesheet.Task.ProjectID)
		return err
	case domain.RoleTeamMember, domain.RoleSalesFinance:
		return ErrNotOwner
	}
	return fmt.Errorf("%w: %q", scope.ErrUnknownRole, p.Role)
}

// Update edits a timesheet. Changing the hours recomputes the stored cost from
// the owner's current hourly rate, not the rate at original logging time.
func (s *TimesheetService) Update(ctx context.Context, p *auth.UserContext, id uuid.UUID, req *domain.UpdateTimesheetRequest) (*domain.TimesheetDTO, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	if req.HoursLogged != nil {
		if err := ValidateHours(*req.HoursLogged); err != nil {
			return nil, err
		}
	}
	logDate, err := parseOptionalDate(req.LogDate)
	if err != nil {
		return nil, err
	}

	existing, err := s.timesheetRepo.GetByIDInCompany(ctx, p.CompanyID, id)
	if err != nil {
		return nil, notFoundOr(err, ErrTimesheetNotFound, "get timesheet")
	}
	if err := s.authorizeEdit(ctx, p, existing); err != nil {
		return nil, err
	}

	updated, err := s.timesheetRepo.Recompute(ctx, id, func(timesheet *domain.Timesheet, owner *domain.User) error {
		if req.HoursLogged != nil {
			timesheet.HoursLogged = *req.HoursLogged
			timesheet.Cost = TimesheetCost(timesheet.HoursLogged, owner.HourlyRate)
		}
		if logDate != nil {
			timesheet.LogDate = *logDate
		}
		if req.Description != nil {
			timesheet.Description = *req.Description
		}
		if req.IsBillable != nil {
			timesheet.IsBillable = *req.IsBillable
		}
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, ErrTimesheetNotFound, "update timesheet")
	}

	s.logger.Info("timesheet updated",
		zap.String("timesheet_id", id.String()),
		zap.String("updated_by", p.UserID.String()),
		zap.String("cost", updated.Cost.StringFixed(2)),
	)

	dto := mapper.ToTimesheetDTO(updated)
	return &dto, nil
}

func (s *TimesheetService) Delete(ctx context.Context, p *auth.UserContext, id uuid.UUID) error {
	if err := principal(p); err != nil {
		return err
	}
	existing, err := s.timesheetRepo.GetByIDInCompany(ctx, p.CompanyID, id)
	if err != nil {
		return notFoundOr(err, ErrTimesheetNotFound, "get timesheet")
	}
	if err := s.authorizeEdit(ctx, p, existing); err != nil {
		return err
	}
	if err := s.timesheetRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete timesheet: %w", err)
	}
	s.logger.Info("timesheet deleted", zap.String("timesheet_id", id.String()), zap.String("deleted_by", p.UserID.String()))
	return nil
}

// List returns the timesheets visible to the principal
func (s *TimesheetService) List(ctx context.Context, p *auth.UserContext, q scope.TimesheetQuery, page, pageSize int) (*domain.PaginatedResponse, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	filter, err := scope.Timesheets(p, q)
	if err != nil {
		return nil, err
	}

	timesheets, total, err := s.timesheetRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}

	dtos := make([]domain.TimesheetDTO, len(timesheets))
	for i := range timesheets {
		dtos[i] = mapper.ToTimesheetDTO(&timesheets[i])
	}
	return paginate(dtos, total, page, pageSize), nil
}
