package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeUsers struct {
	users   map[uuid.UUID]*domain.User
	err     error
	lookups int
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func newUser(role domain.UserRole, active bool, withCompany bool) *domain.User {
	user := &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Name:      "Test User",
		Email:     "test@example.com",
		Role:      role,
		IsActive:  active,
	}
	if withCompany {
		companyID := uuid.New()
		user.CompanyID = &companyID
	}
	return user
}

func TestMiddleware_Authenticate(t *testing.T) {
	tokens := newTokenService(60)
	active := newUser(domain.RoleProjectManager, true, true)
	disabled := newUser(domain.RoleTeamMember, false, true)
	orphan := newUser(domain.RoleTeamMember, true, false)
	users := &fakeUsers{users: map[uuid.UUID]*domain.User{
		active.ID:   active,
		disabled.ID: disabled,
		orphan.ID:   orphan,
	}}
	mw := auth.NewMiddleware(tokens, users, zap.NewNop())

	bearer := func(t *testing.T, id uuid.UUID) string {
		token, _, err := tokens.GenerateToken(id)
		require.NoError(t, err)
		return "Bearer " + token
	}

	var seen *auth.UserContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := mw.Authenticate(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"malformed token", "Bearer nope", http.StatusUnauthorized},
		{"unknown user", bearer(t, uuid.New()), http.StatusUnauthorized},
		{"disabled user", bearer(t, disabled.ID), http.StatusForbidden},
		{"user without company", bearer(t, orphan.ID), http.StatusForbidden},
		{"active user", bearer(t, active.ID), http.StatusOK},
		{"lower case scheme", "bearer " + bearer(t, active.ID)[len("Bearer "):], http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, active.ID, seen.UserID)
				assert.Equal(t, *active.CompanyID, seen.CompanyID)
				assert.Equal(t, domain.RoleProjectManager, seen.Role)
			} else {
				assert.Nil(t, seen)
			}
		})
	}

	t.Run("store failure is a server error", func(t *testing.T) {
		failing := auth.NewMiddleware(tokens, &fakeUsers{err: errors.New("connection refused")}, zap.NewNop())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
		req.Header.Set("Authorization", bearer(t, active.ID))
		rr := httptest.NewRecorder()
		failing.Authenticate(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestMiddleware_Resolve(t *testing.T) {
	tokens := newTokenService(60)
	user := newUser(domain.RoleAdmin, true, true)
	users := &fakeUsers{users: map[uuid.UUID]*domain.User{user.ID: user}}
	mw := auth.NewMiddleware(tokens, users, zap.NewNop())

	token, _, err := tokens.GenerateToken(user.ID)
	require.NoError(t, err)

	p, err := mw.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())
	assert.Equal(t, 1, users.lookups)

	// Role changes apply on the next request
	user.Role = domain.RoleTeamMember
	p, err = mw.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTeamMember, p.Role)
	assert.Equal(t, 2, users.lookups)

	_, err = mw.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestMiddleware_RequireRole(t *testing.T) {
	mw := auth.NewMiddleware(newTokenService(60), &fakeUsers{}, zap.NewNop())
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	serve := func(p *auth.UserContext) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if p != nil {
			req = req.WithContext(auth.WithUserContext(req.Context(), p))
		}
		rr := httptest.NewRecorder()
		mw.RequireAdmin(ok).ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, serve(&auth.UserContext{UserID: uuid.New(), Role: domain.RoleAdmin}))
	assert.Equal(t, http.StatusForbidden, serve(&auth.UserContext{UserID: uuid.New(), Role: domain.RoleSalesFinance}))
	assert.Equal(t, http.StatusForbidden, serve(nil))
}

func TestWithRecorder(t *testing.T) {
	ctx, recorded := auth.WithRecorder(context.Background())
	assert.Nil(t, recorded())

	p := &auth.UserContext{UserID: uuid.New(), Role: domain.RoleTeamMember}
	inner := auth.WithUserContext(ctx, p)

	got, ok := auth.FromContext(inner)
	require.True(t, ok)
	assert.Same(t, p, got)
	assert.Same(t, p, recorded())

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
}
