package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/mapper"
	"github.com/straye-as/project-ledger-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService administers the users of a company
type UserService struct {
	userRepo *repository.UserRepository
	guard    *Guard
	logger   *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, guard *Guard, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		guard:    guard,
		logger:   logger,
	}
}

// List returns the users of the principal's company
func (s *UserService) List(ctx context.Context, p *auth.UserContext, role *domain.UserRole, page, pageSize int) (*domain.PaginatedResponse, error) {
	if err := s.guard.RequireRole(p, domain.RoleAdmin, domain.RoleProjectManager, domain.RoleSalesFinance); err != nil {
		return nil, err
	}
	if role != nil && !role.IsValid() {
		return nil, ErrInvalidRole
	}

	users, total, err := s.userRepo.ListByCompany(ctx, p.CompanyID, role, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = mapper.ToUserDTO(&users[i])
	}
	return paginate(dtos, total, page, pageSize), nil
}

// canCreate reports whether the principal may create a user with the role.
// Admins create any role; a project manager with can_manage_users creates team members.
func canCreate(p *auth.UserContext, role domain.UserRole) bool {
	switch p.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleProjectManager:
		return p.CanManageUsers && role == domain.RoleTeamMember
	case domain.RoleTeamMember, domain.RoleSalesFinance:
		return false
	}
	return false
}

// Create adds a user to the principal's company
func (s *UserService) Create(ctx context.Context, p *auth.UserContext, req *domain.CreateUserRequest) (*domain.UserDTO, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	if !req.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	if !canCreate(p, req.Role) {
		return nil, ErrInsufficientRole
	}
	if req.HourlyRate.IsNegative() {
		return nil, ErrInvalidRate
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	companyID := p.CompanyID
	createdBy := p.UserID
	user := &domain.User{
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   hash,
		Role:           req.Role,
		HourlyRate:     req.HourlyRate.Round(2),
		CompanyID:      &companyID,
		CreatedByID:    &createdBy,
		CanManageUsers: req.CanManageUsers && req.Role == domain.RoleProjectManager,
		IsActive:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("created_by", p.UserID.String()),
	)

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// UpdateHourlyRate changes a user's rate. Existing timesheets keep their stored cost.
func (s *UserService) UpdateHourlyRate(ctx context.Context, p *auth.UserContext, id uuid.UUID, rate decimal.Decimal) (*domain.UserDTO, error) {
	if err := s.guard.RequireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if rate.IsNegative() {
		return nil, ErrInvalidRate
	}
	user, err := s.userRepo.GetByIDInCompany(ctx, p.CompanyID, id)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "get user")
	}

	rate = rate.Round(2)
	if err := s.userRepo.UpdateHourlyRate(ctx, id, rate); err != nil {
		return nil, fmt.Errorf("failed to update hourly rate: %w", err)
	}

	s.logger.Info("hourly rate updated",
		zap.String("user_id", id.String()),
		zap.String("previous_rate", user.HourlyRate.StringFixed(2)),
		zap.String("rate", rate.StringFixed(2)),
		zap.String("updated_by", p.UserID.String()),
	)

	user.HourlyRate = rate
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// SetActive enables or disables a user. Admins cannot disable themselves.
func (s *UserService) SetActive(ctx context.Context, p *auth.UserContext, id uuid.UUID, active bool) (*domain.UserDTO, error) {
	if err := s.guard.RequireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if id == p.UserID && !active {
		return nil, fmt.Errorf("cannot deactivate your own account: %w", domain.ErrValidation)
	}
	user, err := s.userRepo.GetByIDInCompany(ctx, p.CompanyID, id)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "get user")
	}
	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user active flag changed",
		zap.String("user_id", id.String()),
		zap.Bool("active", active),
		zap.String("updated_by", p.UserID.String()),
	)

	user.IsActive = active
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}
