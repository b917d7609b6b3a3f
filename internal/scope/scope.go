// Package scope derives the row-level visibility filters for a principal.
//
// Every function here is pure: it turns a principal plus the caller's requested
// narrowing into a filter value, which the repository layer translates into SQL.
// Role handling is an exhaustive switch over domain.UserRole; an unknown role is
// an error and never results in an unrestricted filter.
package scope

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
)

// ErrUnknownRole is returned for a principal whose role is outside the closed set.
// It is a Forbidden error so an unexpected role never widens access.
var ErrUnknownRole = fmt.Errorf("unknown role: %w", domain.ErrForbidden)

// Visibility selects which projects of a company are in scope
type Visibility int

const (
	// VisibilityCompany covers every project of the company
	VisibilityCompany Visibility = iota
	// VisibilityManagedOrMember covers projects the subject manages or is a member of
	VisibilityManagedOrMember
	// VisibilityMember covers projects the subject is a member of
	VisibilityMember
	// VisibilityManaged covers projects the subject manages
	VisibilityManaged
)

func (v Visibility) String() string {
	switch v {
	case VisibilityCompany:
		return "company"
	case VisibilityManagedOrMember:
		return "managed_or_member"
	case VisibilityMember:
		return "member"
	case VisibilityManaged:
		return "managed"
	}
	return "unknown"
}

// ProjectFilter narrows projects. CompanyID is always applied.
type ProjectFilter struct {
	CompanyID  uuid.UUID
	Visibility Visibility
	// SubjectID is the user the visibility rule is evaluated for. Unused for VisibilityCompany.
	SubjectID uuid.UUID
	ProjectID *uuid.UUID
	Status    *domain.ProjectStatus
}

// TaskFilter narrows tasks through their project
type TaskFilter struct {
	Projects   ProjectFilter
	AssigneeID *uuid.UUID
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
}

// TimesheetFilter narrows timesheets through project ids, then task ids
type TimesheetFilter struct {
	Projects ProjectFilter
	TaskID   *uuid.UUID
	UserID   *uuid.UUID
	From     *time.Time
	To       *time.Time
}

// ExpenseFilter narrows expenses. Company isolation goes through the submitter.
type ExpenseFilter struct {
	CompanyID uuid.UUID
	UserID    *uuid.UUID
	ProjectID *uuid.UUID
	Status    *domain.ExpenseStatus
	// ManagedBy limits results to expenses on projects managed by this user
	ManagedBy *uuid.UUID
}

// DocumentFilter narrows financial documents
type DocumentFilter struct {
	CompanyID uuid.UUID
	ProjectID *uuid.UUID
	Status    *domain.DocumentStatus
	// Projects, when set, limits documents to those linked to a visible project
	Projects *ProjectFilter
}

// TaskQuery is the narrowing a caller asked for when listing tasks
type TaskQuery struct {
	ProjectID  *uuid.UUID
	AssigneeID *uuid.UUID
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
}

// TimesheetQuery is the narrowing a caller asked for when listing timesheets
type TimesheetQuery struct {
	ProjectID *uuid.UUID
	TaskID    *uuid.UUID
	UserID    *uuid.UUID
	From      *time.Time
	To        *time.Time
}

// ExpenseQuery is the narrowing a caller asked for when listing expenses
type ExpenseQuery struct {
	UserID    *uuid.UUID
	ProjectID *uuid.UUID
	Status    *domain.ExpenseStatus
}

// Projects returns the projects visible to the principal
func Projects(p *auth.UserContext) (ProjectFilter, error) {
	f := ProjectFilter{CompanyID: p.CompanyID, SubjectID: p.UserID}
	switch p.Role {
	case domain.RoleAdmin, domain.RoleSalesFinance:
		f.Visibility = VisibilityCompany
	case domain.RoleProjectManager:
		f.Visibility = VisibilityManagedOrMember
	case domain.RoleTeamMember:
		f.Visibility = VisibilityMember
	default:
		return ProjectFilter{}, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
	}
	return f, nil
}

// Tasks returns the task filter. A team member without an explicit assignee
// only sees their own tasks; with one, they are held to projects they belong to.
func Tasks(p *auth.UserContext, q TaskQuery) (TaskFilter, error) {
	f := TaskFilter{
		Projects: ProjectFilter{
			CompanyID:  p.CompanyID,
			Visibility: VisibilityCompany,
			SubjectID:  p.UserID,
			ProjectID:  q.ProjectID,
		},
		AssigneeID: q.AssigneeID,
		Status:     q.Status,
		Priority:   q.Priority,
	}
	switch p.Role {
	case domain.RoleAdmin, domain.RoleSalesFinance, domain.RoleProjectManager:
	case domain.RoleTeamMember:
		if q.AssigneeID == nil {
			self := p.UserID
			f.AssigneeID = &self
		} else if *q.AssigneeID != p.UserID {
			f.Projects.Visibility = VisibilityMember
		}
	default:
		return TaskFilter{}, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
	}
	return f, nil
}

// Timesheets returns the timesheet filter. The project scope is the principal's
// own visible project set; a caller-supplied project id only narrows it further.
func Timesheets(p *auth.UserContext, q TimesheetQuery) (TimesheetFilter, error) {
	projects, err := Projects(p)
	if err != nil {
		return TimesheetFilter{}, err
	}
	projects.ProjectID = q.ProjectID

	f := TimesheetFilter{
		Projects: projects,
		TaskID:   q.TaskID,
		UserID:   q.UserID,
		From:     q.From,
		To:       q.To,
	}
	switch p.Role {
	case domain.RoleAdmin, domain.RoleSalesFinance, domain.RoleProjectManager:
	case domain.RoleTeamMember:
		if q.UserID != nil && *q.UserID != p.UserID {
			return TimesheetFilter{}, domain.ErrForbidden
		}
		// Own timesheets stay visible even after leaving a project.
		self := p.UserID
		f.UserID = &self
		f.Projects.Visibility = VisibilityCompany
	default:
		return TimesheetFilter{}, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
	}
	return f, nil
}

// Expenses returns the expense listing filter
func Expenses(p *auth.UserContext, q ExpenseQuery) (ExpenseFilter, error) {
	f := ExpenseFilter{
		CompanyID: p.CompanyID,
		UserID:    q.UserID,
		ProjectID: q.ProjectID,
		Status:    q.Status,
	}
	switch p.Role {
	case domain.RoleAdmin, domain.RoleSalesFinance, domain.RoleProjectManager:
	case domain.RoleTeamMember:
		if q.UserID != nil && *q.UserID != p.UserID {
			return ExpenseFilter{}, domain.ErrForbidden
		}
		self := p.UserID
		f.UserID = &self
	default:
		return ExpenseFilter{}, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
	}
	return f, nil
}

// ExpenseReview returns the filter an expense must match before the principal
// may change its status
func ExpenseReview(p *auth.UserContext) (ExpenseFilter, error) {
	f := ExpenseFilter{CompanyID: p.CompanyID}
	switch p.Role {
	case domain.RoleAdmin:
	case domain.RoleProjectManager:
		self := p.UserID
		f.ManagedBy = &self
	case domain.RoleSalesFinance, domain.RoleTeamMember:
		return ExpenseFilter{}, domain.ErrForbidden
	default:
		return ExpenseFilter{}, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
	}
	return f, nil
}

// Documents returns the financial document filter. Project managers only see
// documents linked to projects they manage.
func Documents(p *auth.UserContext, projectID *uuid.UUID, status *domain.DocumentStatus) (DocumentFilter, error) {
	f := DocumentFilter{CompanyID: p.CompanyID, ProjectID: projectID, Status: status}
	switch p.Role {
	case domain.RoleAdmin, domain.RoleSalesFinance:
	case domain.RoleProjectManager:
		f.Projects = &ProjectFilter{
			CompanyID:  p.CompanyID,
			Visibility: VisibilityManaged,
			SubjectID:  p.UserID,
		}
	case domain.RoleTeamMember:
		return DocumentFilter{}, domain.ErrForbidden
	default:
		return DocumentFilter{}, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
	}
	return f, nil
}

// TargetProjects re-derives the visible project set of an analytics target user:
// project managers are scoped to the projects they manage, everyone else to the
// projects they are a member of.
func TargetProjects(target *domain.User) (ProjectFilter, error) {
	if target.CompanyID == nil {
		return ProjectFilter{}, domain.ErrNotFound
	}
	f := ProjectFilter{CompanyID: *target.CompanyID, SubjectID: target.ID}
	switch target.Role {
	case domain.RoleProjectManager:
		f.Visibility = VisibilityManaged
	case domain.RoleAdmin, domain.RoleSalesFinance, domain.RoleTeamMember:
		f.Visibility = VisibilityMember
	default:
		return ProjectFilter{}, fmt.Errorf("%w: %q", ErrUnknownRole, target.Role)
	}
	return f, nil
}

// Dashboard picks the KPI scope and project set for the principal's dashboard
func Dashboard(p *auth.UserContext) (domain.DashboardScope, ProjectFilter, error) {
	f := ProjectFilter{CompanyID: p.CompanyID, SubjectID: p.UserID}
	switch p.Role {
	case domain.RoleAdmin, domain.RoleSalesFinance:
		f.Visibility = VisibilityCompany
		return domain.DashboardScopeCompany, f, nil
	case domain.RoleProjectManager:
		f.Visibility = VisibilityManaged
		return domain.DashboardScopeManaged, f, nil
	case domain.RoleTeamMember:
		f.Visibility = VisibilityMember
		return domain.DashboardScopePersonal, f, nil
	}
	return "", ProjectFilter{}, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
}

// Analytics returns the project scope and subject user for analytics.
// With no target the principal's own scope applies: company-wide for Admin and
// Sales/Finance, managed projects for a project manager and own member projects
// for a team member. With a target, teammate must report whether the target is a
// member of a project the principal manages; the caller resolves it since this
// package does no I/O.
func Analytics(p *auth.UserContext, target *domain.User, teammate bool) (ProjectFilter, *uuid.UUID, error) {
	if target == nil {
		f := ProjectFilter{CompanyID: p.CompanyID, SubjectID: p.UserID}
		switch p.Role {
		case domain.RoleAdmin, domain.RoleSalesFinance:
			f.Visibility = VisibilityCompany
			return f, nil, nil
		case domain.RoleProjectManager:
			f.Visibility = VisibilityManaged
			return f, nil, nil
		case domain.RoleTeamMember:
			f.Visibility = VisibilityMember
			self := p.UserID
			return f, &self, nil
		}
		return ProjectFilter{}, nil, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
	}

	if target.CompanyID == nil || *target.CompanyID != p.CompanyID {
		return ProjectFilter{}, nil, domain.ErrNotFound
	}

	switch p.Role {
	case domain.RoleAdmin, domain.RoleSalesFinance:
	case domain.RoleProjectManager:
		if target.ID != p.UserID && !teammate {
			return ProjectFilter{}, nil, domain.ErrForbidden
		}
	case domain.RoleTeamMember:
		if target.ID != p.UserID {
			return ProjectFilter{}, nil, domain.ErrForbidden
		}
	default:
		return ProjectFilter{}, nil, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
	}

	f, err := TargetProjects(target)
	if err != nil {
		return ProjectFilter{}, nil, err
	}
	subject := target.ID
	return f, &subject, nil
}
