package service_test

import (
	"context"
	"testing"

	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/service"
	"github.com/straye-as/project-ledger-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listProjects(t *testing.T, s *services, user *domain.User) []domain.ProjectDTO {
	t.Helper()
	resp, err := s.projectSvc.List(context.Background(), testutil.Principal(user), service.ProjectListParams{Page: 1, PageSize: 50})
	require.NoError(t, err)
	dtos, ok := resp.Data.([]domain.ProjectDTO)
	require.True(t, ok)
	return dtos
}

func TestProjectService_Visibility(t *testing.T) {
	s := setupServices(t)
	tenant := testutil.SeedTenant(t, s.db, "Acme")
	testutil.SeedTenant(t, s.db, "Globex")

	otherPM := testutil.CreateTestUser(t, s.db, tenant.Company.ID, domain.RoleProjectManager, "60")
	managedElsewhere := testutil.CreateTestProject(t, s.db, tenant.Company.ID, otherPM.ID, "Managed elsewhere")
	// PM is a plain member here
	testutil.AddTestMember(t, s.db, managedElsewhere.ID, tenant.PM.ID)
	testutil.CreateTestProject(t, s.db, tenant.Company.ID, otherPM.ID, "Unrelated")

	tests := []struct {
		name string
		user *domain.User
		want int
	}{
		{"admin sees the whole company", tenant.Admin, 3},
		{"sales finance sees the whole company", tenant.SF, 3},
		{"project manager sees managed and member projects", tenant.PM, 2},
		{"team member sees member projects", tenant.TM, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dtos := listProjects(t, s, tt.user)
			assert.Len(t, dtos, tt.want)
			for _, dto := range dtos {
				assert.Equal(t, tenant.Company.ID, dto.CompanyID)
			}
		})
	}
}

func TestProjectService_CompanyIsolation(t *testing.T) {
	s := setupServices(t)
	tenant := testutil.SeedTenant(t, s.db, "Acme")
	other := testutil.SeedTenant(t, s.db, "Globex")
	ctx := context.Background()
	admin := testutil.Principal(tenant.Admin)

	_, err := s.projectSvc.GetByID(ctx, admin, other.Project.ID)
	assert.ErrorIs(t, err, service.ErrProjectNotFound)

	_, err = s.projectSvc.Financials(ctx, testutil.Principal(tenant.SF), other.Project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	name := "Hijacked"
	_, err = s.projectSvc.Update(ctx, admin, other.Project.ID, &domain.UpdateProjectRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.projectSvc.AddMember(ctx, admin, tenant.Project.ID, other.TM.ID)
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	err = s.projectSvc.Delete(ctx, admin, other.Project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := s.projectSvc.GetByID(ctx, testutil.Principal(other.Admin), other.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, other.Project.Name, got.Name)
}

func TestProjectService_Create(t *testing.T) {
	s := setupServices(t)
	tenant := testutil.SeedTenant(t, s.db, "Acme")
	ctx := context.Background()

	t.Run("project manager manages what they create", func(t *testing.T) {
		dto, err := s.projectSvc.Create(ctx, testutil.Principal(tenant.PM), &domain.CreateProjectRequest{
			Name:   "Rollout",
			Budget: testutil.D("2500.5"),
		})
		require.NoError(t, err)
		assert.Equal(t, tenant.PM.ID, dto.ProjectManagerID)
		assert.Equal(t, domain.ProjectStatusPlanned, dto.Status)
		assert.Equal(t, "2500.50", dto.Budget.StringFixed(2))
	})

	t.Run("admin assigns a manager who is notified", func(t *testing.T) {
		dto, err := s.projectSvc.Create(ctx, testutil.Principal(tenant.Admin), &domain.CreateProjectRequest{
			Name:             "Migration",
			ProjectManagerID: &tenant.PM.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, tenant.PM.ID, dto.ProjectManagerID)

		sent := s.sink.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, tenant.PM.ID, sent[0].UserID)
		assert.Equal(t, domain.NotificationTypeProjectUpdate, sent[0].Type)
	})

	t.Run("team member cannot manage a project", func(t *testing.T) {
		_, err := s.projectSvc.Create(ctx, testutil.Principal(tenant.Admin), &domain.CreateProjectRequest{
			Name:             "Bad manager",
			ProjectManagerID: &tenant.TM.ID,
		})
		assert.ErrorIs(t, err, service.ErrInvalidProjectManager)
	})

	t.Run("team member cannot create", func(t *testing.T) {
		_, err := s.projectSvc.Create(ctx, testutil.Principal(tenant.TM), &domain.CreateProjectRequest{Name: "Nope"})
		assert.ErrorIs(t, err, service.ErrInsufficientRole)
	})

	t.Run("negative budget", func(t *testing.T) {
		_, err := s.projectSvc.Create(ctx, testutil.Principal(tenant.Admin), &domain.CreateProjectRequest{
			Name:   "Negative",
			Budget: testutil.D("-1"),
		})
		assert.ErrorIs(t, err, service.ErrInvalidBudget)
	})
}

func TestProjectService_Members(t *testing.T) {
	s := setupServices(t)
	tenant := testutil.SeedTenant(t, s.db, "Acme")
	ctx := context.Background()
	newcomer := testutil.CreateTestUser(t, s.db, tenant.Company.ID, domain.RoleTeamMember, "40")

	_, err := s.projectSvc.AddMember(ctx, testutil.Principal(tenant.TM), tenant.Project.ID, newcomer.ID)
	assert.ErrorIs(t, err, service.ErrNotProjectManager)

	member, err := s.projectSvc.AddMember(ctx, testutil.Principal(tenant.PM), tenant.Project.ID, newcomer.ID)
	require.NoError(t, err)
	assert.Equal(t, newcomer.ID, member.UserID)

	members, err := s.projectSvc.ListMembers(ctx, testutil.Principal(newcomer), tenant.Project.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	require.NoError(t, s.projectSvc.RemoveMember(ctx, testutil.Principal(tenant.PM), tenant.Project.ID, newcomer.ID))
	err = s.projectSvc.RemoveMember(ctx, testutil.Principal(tenant.PM), tenant.Project.ID, newcomer.ID)
	assert.ErrorIs(t, err, service.ErrMemberNotFound)

	_, err = s.projectSvc.ListMembers(ctx, testutil.Principal(newcomer), tenant.Project.ID)
	assert.ErrorIs(t, err, service.ErrNotProjectMember)
}
