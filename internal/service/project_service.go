package service

import (
	"context"
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

// ProjectListParams are the listing options accepted by ProjectService.List
type ProjectListParams struct {
	Search    string
	Status    *domain.ProjectStatus
	Page      int
	PageSize  int
	SortField string
	SortOrder repository.SortOrder
}

// ProjectService handles business logic for projects and their members
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	userRepo    *repository.UserRepository
	financials  *FinancialService
	guard       *Guard
	notifier    notify.Sink
	logger      *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	financials *FinancialService,
	guard *Guard,
	notifier notify.Sink,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		financials:  financials,
		guard:       guard,
		notifier:    notifier,
		logger:      logger,
	}
}

// validateManager checks the user can manage projects of the company
func (s *ProjectService) validateManager(ctx context.Context, companyID, userID uuid.UUID) error {
	manager, err := s.userRepo.GetByIDInCompany(ctx, companyID, userID)
	if err != nil {
		return notFoundOr(err, ErrInvalidProjectManager, "get project manager")
	}
	if !manager.IsActive {
		return ErrInvalidProjectManager
	}
	switch manager.Role {
	case domain.RoleProjectManager, domain.RoleAdmin:
		return nil
	case domain.RoleTeamMember, domain.RoleSalesFinance:
		return ErrInvalidProjectManager
	}
	return ErrInvalidProjectManager
}

// Create creates a project. Project managers always manage the projects they create.
func (s *ProjectService) Create(ctx context.Context, p *auth.UserContext, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	if err := s.guard.RequireRole(p, domain.RoleAdmin, domain.RoleProjectManager); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.ProjectStatusPlanned
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if req.Budget.IsNegative() {
		return nil, ErrInvalidBudget
	}
	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	managerID := p.UserID
	if req.ProjectManagerID != nil {
		if p.Role == domain.RoleProjectManager && *req.ProjectManagerID != p.UserID {
			return nil, ErrInsufficientRole
		}
		managerID = *req.ProjectManagerID
	}
	if err := s.validateManager(ctx, p.CompanyID, managerID); err != nil {
		return nil, err
	}

	project := &domain.Project{
		Name:             req.Name,
		Description:      req.Description,
		Status:           status,
		CompanyID:        p.CompanyID,
		ProjectManagerID: managerID,
		Budget:           req.Budget.Round(2),
		StartDate:        startDate,
		EndDate:          endDate,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("name", project.Name),
		zap.String("manager_id", managerID.String()),
		zap.String("created_by", p.UserID.String()),
	)

	if managerID != p.UserID {
		s.notifier.Notify(ctx, managerID,
			"New project",
			fmt.Sprintf("You are the project manager of %s", project.Name),
			domain.NotificationTypeProjectUpdate,
			"/projects/"+project.ID.String(),
		)
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// GetByID returns a project visible to the principal
func (s *ProjectService) GetByID(ctx context.Context, p *auth.UserContext, id uuid.UUID) (*domain.ProjectDTO, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByIDInCompany(ctx, p.CompanyID, id)
	if err != nil {
		return nil, notFoundOr(err, ErrProjectNotFound, "get project")
	}

	filter, err := scope.Projects(p)
	if err != nil {
		return nil, err
	}
	filter.ProjectID = &id
	visible, err := s.projectRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to check project visibility: %w", err)
	}
	if visible == 0 {
		return nil, ErrNotProjectMember
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// List returns the projects visible to the principal
func (s *ProjectService) List(ctx context.Context, p *auth.UserContext, params ProjectListParams) (*domain.PaginatedResponse, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	filter, err := scope.Projects(p)
	if err != nil {
		return nil, err
	}
	if params.Status != nil {
		if !params.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		filter.Status = params.Status
	}

	projects, total, err := s.projectRepo.List(ctx, filter, params.Search, params.Page, params.PageSize, params.SortField, params.SortOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	dtos := make([]domain.ProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = mapper.ToProjectDTO(&projects[i])
	}
	return paginate(dtos, total, params.Page, params.PageSize), nil
}

// Update changes project fields. Only an Admin may hand the project to another manager.
func (s *ProjectService) Update(ctx context.Context, p *auth.UserContext, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	project, err := s.guard.RequireProjectManager(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		project.Status = *req.Status
	}
	if req.Budget != nil {
		if req.Budget.IsNegative() {
			return nil, ErrInvalidBudget
		}
		project.Budget = req.Budget.Round(2)
	}
	previousManager := project.ProjectManagerID
	if req.ProjectManagerID != nil && *req.ProjectManagerID != project.ProjectManagerID {
		if !p.IsAdmin() {
			return nil, ErrInsufficientRole
		}
		if err := s.validateManager(ctx, p.CompanyID, *req.ProjectManagerID); err != nil {
			return nil, err
		}
		project.ProjectManagerID = *req.ProjectManagerID
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.logger.Info("project updated",
		zap.String("project_id", project.ID.String()),
		zap.String("updated_by", p.UserID.String()),
	)

	if project.ProjectManagerID != previousManager {
		s.notifier.Notify(ctx, project.ProjectManagerID,
			"Project assigned",
			fmt.Sprintf("You are now the project manager of %s", project.Name),
			domain.NotificationTypeProjectUpdate,
			"/projects/"+project.ID.String(),
		)
	}

	updated, err := s.projectRepo.GetByIDInCompany(ctx, p.CompanyID, id)
	if err != nil {
		return nil, notFoundOr(err, ErrProjectNotFound, "reload project")
	}
	dto := mapper.ToProjectDTO(updated)
	return &dto, nil
}

// Delete removes a project with its tasks, timesheets and members. Admin only.
func (s *ProjectService) Delete(ctx context.Context, p *auth.UserContext, id uuid.UUID) error {
	if err := s.guard.RequireRole(p, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.guard.RequireProjectManager(ctx, p, id); err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	s.logger.Info("project deleted", zap.String("project_id", id.String()), zap.String("deleted_by", p.UserID.String()))
	return nil
}

// Financials returns the project's revenue, cost, profit and margin.
// Sales/Finance sees every company project; other roles must be members.
func (s *ProjectService) Financials(ctx context.Context, p *auth.UserContext, id uuid.UUID) (*domain.ProjectFinancials, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	if p.Role == domain.RoleSalesFinance {
		if _, err := s.projectRepo.GetByIDInCompany(ctx, p.CompanyID, id); err != nil {
			return nil, notFoundOr(err, ErrProjectNotFound, "get project")
		}
	} else if _, err := s.guard.RequireProjectMember(ctx, p, id); err != nil {
		return nil, err
	}

	financials := s.financials.ProjectFinancials(ctx, id)
	return &financials, nil
}

// AddMember adds an active company user to the project
func (s *ProjectService) AddMember(ctx context.Context, p *auth.UserContext, projectID, userID uuid.UUID) (*domain.ProjectMemberDTO, error) {
	project, err := s.guard.RequireProjectManager(ctx, p, projectID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByIDInCompany(ctx, p.CompanyID, userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "get user")
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}

	if err := s.projectRepo.AddMember(ctx, projectID, userID); err != nil {
		return nil, fmt.Errorf("failed to add project member: %w", err)
	}

	s.logger.Info("project member added",
		zap.String("project_id", projectID.String()),
		zap.String("user_id", userID.String()),
		zap.String("added_by", p.UserID.String()),
	)
	s.notifier.Notify(ctx, userID,
		"Added to project",
		fmt.Sprintf("You were added to %s", project.Name),
		domain.NotificationTypeProjectUpdate,
		"/projects/"+projectID.String(),
	)

	dto := mapper.ToProjectMemberDTO(&domain.ProjectMember{ProjectID: projectID, UserID: userID, User: user})
	return &dto, nil
}

func (s *ProjectService) RemoveMember(ctx context.Context, p *auth.UserContext, projectID, userID uuid.UUID) error {
	if _, err := s.guard.RequireProjectManager(ctx, p, projectID); err != nil {
		return err
	}
	removed, err := s.projectRepo.RemoveMember(ctx, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove project member: %w", err)
	}
	if !removed {
		return ErrMemberNotFound
	}
	s.logger.Info("project member removed",
		zap.String("project_id", projectID.String()),
		zap.String("user_id", userID.String()),
		zap.String("removed_by", p.UserID.String()),
	)
	return nil
}

func (s *ProjectService) ListMembers(ctx context.Context, p *auth.UserContext, projectID uuid.UUID) ([]domain.ProjectMemberDTO, error) {
	if _, err := s.guard.RequireProjectMember(ctx, p, projectID); err != nil {
		return nil, err
	}
	members, err := s.projectRepo.ListMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	dtos := make([]domain.ProjectMemberDTO, len(members))
	for i := range members {
		dtos[i] = mapper.ToProjectMemberDTO(&members[i])
	}
	return dtos, nil
}
