package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/mapper"
	"github.com/straye-as/project-ledger-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService signs users in and describes the current principal
type AuthService struct {
	userRepo    *repository.UserRepository
	companyRepo *repository.CompanyRepository
	tokens      *auth.TokenService
	logger      *zap.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	companyRepo *repository.CompanyRepository,
	tokens *auth.TokenService,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		tokens:      tokens,
		logger:      logger,
	}
}

// Login verifies credentials and issues a bearer token. Unknown emails and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		s.logger.Info("login rejected", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive || user.CompanyID == nil {
		return nil, domain.ErrAccountDisabled
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format("2006-01-02T15:04:05Z"),
		User:      mapper.ToUserDTO(user),
	}, nil
}

// MeResponse is the current user with their company
type MeResponse struct {
	User    domain.UserDTO     `json:"user"`
	Company *domain.CompanyDTO `json:"company,omitempty"`
}

// Me returns the principal's user record and company
func (s *AuthService) Me(ctx context.Context, p *auth.UserContext) (*MeResponse, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "get user")
	}
	resp := &MeResponse{User: mapper.ToUserDTO(user)}

	company, err := s.companyRepo.GetByID(ctx, p.CompanyID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get company: %w", err)
		}
		return resp, nil
	}
	dto := mapper.ToCompanyDTO(company)
	resp.Company = &dto
	return resp, nil
}
