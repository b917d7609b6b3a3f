package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/domain"
)

// UserContext is the authenticated principal attached to a request.
// It never carries credential material.
type UserContext struct {
	UserID         uuid.UUID
	Name           string
	Email          string
	Role           domain.UserRole
	CompanyID      uuid.UUID
	IsActive       bool
	CanManageUsers bool
}

type contextKey string

const (
	userContextKey contextKey = "userContext"
	recorderKey    contextKey = "principalRecorder"
)

// NewUserContext builds a principal from a stored user
func NewUserContext(user *domain.User) *UserContext {
	userCtx := &UserContext{
		UserID:         user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		IsActive:       user.IsActive,
		CanManageUsers: user.CanManageUsers,
	}
	if user.CompanyID != nil {
		userCtx.CompanyID = *user.CompanyID
	}
	return userCtx
}

// WithUserContext adds user context to the context. If an outer handler
// installed a recorder, the principal is also reported to it.
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	if slot, ok := ctx.Value(recorderKey).(**UserContext); ok {
		*slot = user
	}
	return context.WithValue(ctx, userContextKey, user)
}

// WithRecorder lets middleware that wraps authentication (request logging)
// learn the principal once the inner handlers have run
func WithRecorder(ctx context.Context) (context.Context, func() *UserContext) {
	var user *UserContext
	return context.WithValue(ctx, recorderKey, &user), func() *UserContext { return user }
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// HasAnyRole checks if the principal's role is in the given set
func (u *UserContext) HasAnyRole(roles ...domain.UserRole) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin checks if the principal is a company administrator
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// CanAccessCompany checks whether a record owned by companyID is visible to the principal
func (u *UserContext) CanAccessCompany(companyID uuid.UUID) bool {
	return u.CompanyID != uuid.Nil && u.CompanyID == companyID
}
