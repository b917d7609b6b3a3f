package service

import (
	"errors"
	"fmt"

	"github.com/straye-as/project-ledger-api/internal/domain"
	"gorm.io/gorm"
)

// Not-found errors. Resources in another company are reported as not found.
var (
	ErrUserNotFound         = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrCompanyNotFound      = fmt.Errorf("company %w", domain.ErrNotFound)
	ErrProjectNotFound      = fmt.Errorf("project %w", domain.ErrNotFound)
	ErrTaskNotFound         = fmt.Errorf("task %w", domain.ErrNotFound)
	ErrTimesheetNotFound    = fmt.Errorf("timesheet %w", domain.ErrNotFound)
	ErrExpenseNotFound      = fmt.Errorf("expense %w", domain.ErrNotFound)
	ErrDocumentNotFound     = fmt.Errorf("document %w", domain.ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", domain.ErrNotFound)
	ErrMemberNotFound       = fmt.Errorf("project member %w", domain.ErrNotFound)
)

// Authorization errors
var (
	// ErrInsufficientRole is returned when the principal's role is not allowed for an operation
	ErrInsufficientRole = fmt.Errorf("insufficient role: %w", domain.ErrForbidden)

	// ErrNotProjectManager is returned when the principal does not manage the project
	ErrNotProjectManager = fmt.Errorf("user is not the project manager: %w", domain.ErrForbidden)

	// ErrNotProjectMember is returned when the principal is neither manager nor member of the project
	ErrNotProjectMember = fmt.Errorf("user is not a project member: %w", domain.ErrForbidden)

	// ErrNotOwner is returned when a user touches a record owned by someone else
	ErrNotOwner = fmt.Errorf("record belongs to another user: %w", domain.ErrForbidden)

	// ErrInvalidCredentials is returned on a failed login
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", domain.ErrUnauthenticated)

	// ErrUserContextRequired is returned when no principal is attached to the context
	ErrUserContextRequired = fmt.Errorf("user context required: %w", domain.ErrUnauthenticated)
)

// Validation errors
var (
	ErrInvalidHours          = fmt.Errorf("hours must be greater than 0 and at most 24: %w", domain.ErrValidation)
	ErrInvalidAmount         = fmt.Errorf("amount must be greater than 0: %w", domain.ErrValidation)
	ErrInvalidRate           = fmt.Errorf("hourly rate must not be negative: %w", domain.ErrValidation)
	ErrInvalidBudget         = fmt.Errorf("budget must not be negative: %w", domain.ErrValidation)
	ErrInvalidDate           = fmt.Errorf("date must use the YYYY-MM-DD format: %w", domain.ErrValidation)
	ErrInvalidRole           = fmt.Errorf("invalid role: %w", domain.ErrValidation)
	ErrInvalidStatus         = fmt.Errorf("invalid status: %w", domain.ErrValidation)
	ErrInvalidPriority       = fmt.Errorf("invalid priority: %w", domain.ErrValidation)
	ErrInvalidDateRange      = fmt.Errorf("invalid date range: %w", domain.ErrValidation)
	ErrInvalidProjectManager = fmt.Errorf("project manager must be an active Project Manager or Admin of the company: %w", domain.ErrValidation)
	ErrInvalidAssignee       = fmt.Errorf("assignee must be an active user of the company: %w", domain.ErrValidation)
	ErrInvalidParentDocument = fmt.Errorf("linked document must belong to the same company: %w", domain.ErrValidation)

	// ErrInvalidStatusTransition is returned when a status change skips or reverses a lifecycle step
	ErrInvalidStatusTransition = fmt.Errorf("invalid status transition: %w", domain.ErrValidation)
)

// Conflict errors
var (
	ErrEmailTaken = fmt.Errorf("email already in use: %w", domain.ErrConflict)
)

// notFoundOr maps gorm.ErrRecordNotFound to notFound and wraps anything else
func notFoundOr(err, notFound error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
