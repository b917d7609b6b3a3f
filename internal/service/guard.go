package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/scope"
)

// ProjectLookup is the store access the guard needs
type ProjectLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
}

// Guard performs per-request authorization checks. Decisions are never cached
// and a project check issues at most two lookups (project, membership).
type Guard struct {
	projects ProjectLookup
}

func NewGuard(projects ProjectLookup) *Guard {
	return &Guard{projects: projects}
}

// RequireRole fails with ErrInsufficientRole unless the principal holds one of roles
func (g *Guard) RequireRole(p *auth.UserContext, roles ...domain.UserRole) error {
	if p == nil {
		return ErrUserContextRequired
	}
	if !p.HasAnyRole(roles...) {
		return ErrInsufficientRole
	}
	return nil
}

// loadProject resolves a project of the principal's company
func (g *Guard) loadProject(ctx context.Context, p *auth.UserContext, projectID uuid.UUID) (*domain.Project, error) {
	project, err := g.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, notFoundOr(err, ErrProjectNotFound, "get project")
	}
	if !p.CanAccessCompany(project.CompanyID) {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// RequireProjectManager passes for Admin and for the project's manager
func (g *Guard) RequireProjectManager(ctx context.Context, p *auth.UserContext, projectID uuid.UUID) (*domain.Project, error) {
	if p == nil {
		return nil, ErrUserContextRequired
	}
	project, err := g.loadProject(ctx, p, projectID)
	if err != nil {
		return nil, err
	}

	switch p.Role {
	case domain.RoleAdmin:
		return project, nil
	case domain.RoleProjectManager, domain.RoleTeamMember, domain.RoleSalesFinance:
		if project.ProjectManagerID == p.UserID {
			return project, nil
		}
		return nil, ErrNotProjectManager
	}
	return nil, fmt.Errorf("%w: %q", scope.ErrUnknownRole, p.Role)
}

// RequireProjectMember passes for Admin, the project's manager and its members
func (g *Guard) RequireProjectMember(ctx context.Context, p *auth.UserContext, projectID uuid.UUID) (*domain.Project, error) {
	if p == nil {
		return nil, ErrUserContextRequired
	}
	project, err := g.loadProject(ctx, p, projectID)
	if err != nil {
		return nil, err
	}

	switch p.Role {
	case domain.RoleAdmin:
		return project, nil
	case domain.RoleProjectManager, domain.RoleTeamMember, domain.RoleSalesFinance:
		if project.ProjectManagerID == p.UserID {
			return project, nil
		}
		member, err := g.projects.IsMember(ctx, project.ID, p.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check project membership: %w", err)
		}
		if !member {
			return nil, ErrNotProjectMember
		}
		return project, nil
	}
	return nil, fmt.Errorf("%w: %q", scope.ErrUnknownRole, p.Role)
}
