package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"github.com/straye-as/project-ledger-api/internal/service"
	"github.com/straye-as/project-ledger-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logHours(t *testing.T, s *services, user *domain.User, taskID uuid.UUID, hours, date string) *domain.TimesheetDTO {
	t.Helper()
	dto, err := s.timesheetSvc.Create(context.Background(), testutil.Principal(user), &domain.CreateTimesheetRequest{
		TaskID:      taskID,
		HoursLogged: testutil.D(hours),
		LogDate:     date,
	})
	require.NoError(t, err)
	return dto
}

func TestTimesheetService_CostSnapshot(t *testing.T) {
	s := setupServices(t)
	tenant := testutil.SeedTenant(t, s.db, "Acme")
	ctx := context.Background()

	first := logHours(t, s, tenant.TM, tenant.Task.ID, "8", "2024-03-01")
	assert.Equal(t, "360.00", first.Cost.StringFixed(2))
	assert.True(t, first.IsBillable)

	_, err := s.userSvc.UpdateHourlyRate(ctx, testutil.Principal(tenant.Admin), tenant.TM.ID, testutil.D("50"))
	require.NoError(t, err)

	second := logHours(t, s, tenant.TM, tenant.Task.ID, "8", "2024-03-02")
	assert.Equal(t, "400.00", second.Cost.StringFixed(2))

	t.Run("earlier entry keeps its cost", func(t *testing.T) {
		stored, err := s.timesheets.GetByIDInCompany(ctx, tenant.Company.ID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "360.00", stored.Cost.StringFixed(2))
	})

	t.Run("project cost sums the snapshots", func(t *testing.T) {
		got := s.financials.ProjectFinancials(ctx, tenant.Project.ID)
		assert.Equal(t, "760.00", got.Cost.StringFixed(2))
	})

	t.Run("editing hours recomputes with the current rate", func(t *testing.T) {
		hours := testutil.D("4")
		updated, err := s.timesheetSvc.Update(ctx, testutil.Principal(tenant.TM), first.ID, &domain.UpdateTimesheetRequest{
			HoursLogged: &hours,
		})
		require.NoError(t, err)
		assert.Equal(t, "200.00", updated.Cost.StringFixed(2))
	})

	t.Run("editing the description keeps the cost", func(t *testing.T) {
		_, err := s.userSvc.UpdateHourlyRate(ctx, testutil.Principal(tenant.Admin), tenant.TM.ID, testutil.D("70"))
		require.NoError(t, err)

		desc := "pairing session"
		updated, err := s.timesheetSvc.Update(ctx, testutil.Principal(tenant.TM), second.ID, &domain.UpdateTimesheetRequest{
			Description: &desc,
		})
		require.NoError(t, err)
		assert.Equal(t, "400.00", updated.Cost.StringFixed(2))
		assert.Equal(t, desc, updated.Description)
	})
}

func TestTimesheetService_Create(t *testing.T) {
	s := setupServices(t)
	tenant := testutil.SeedTenant(t, s.db, "Acme")
	other := testutil.SeedTenant(t, s.db, "Globex")
	ctx := context.Background()

	t.Run("hours out of range", func(t *testing.T) {
		for _, hours := range []string{"0", "-1", "24.5"} {
			_, err := s.timesheetSvc.Create(ctx, testutil.Principal(tenant.TM), &domain.CreateTimesheetRequest{
				TaskID:      tenant.Task.ID,
				HoursLogged: testutil.D(hours),
				LogDate:     "2024-03-01",
			})
			assert.ErrorIs(t, err, service.ErrInvalidHours, hours)
			assert.ErrorIs(t, err, domain.ErrValidation, hours)
		}
	})

	t.Run("a full day is allowed", func(t *testing.T) {
		dto := logHours(t, s, tenant.TM, tenant.Task.ID, "24", "2024-03-03")
		assert.Equal(t, "1080.00", dto.Cost.StringFixed(2))
	})

	t.Run("malformed date", func(t *testing.T) {
		_, err := s.timesheetSvc.Create(ctx, testutil.Principal(tenant.TM), &domain.CreateTimesheetRequest{
			TaskID:      tenant.Task.ID,
			HoursLogged: testutil.D("2"),
			LogDate:     "03/01/2024",
		})
		assert.ErrorIs(t, err, service.ErrInvalidDate)
	})

	t.Run("non member is forbidden", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, s.db, tenant.Company.ID, domain.RoleTeamMember, "30")
		_, err := s.timesheetSvc.Create(ctx, testutil.Principal(outsider), &domain.CreateTimesheetRequest{
			TaskID:      tenant.Task.ID,
			HoursLogged: testutil.D("2"),
			LogDate:     "2024-03-01",
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("task of another company is not found", func(t *testing.T) {
		_, err := s.timesheetSvc.Create(ctx, testutil.Principal(tenant.TM), &domain.CreateTimesheetRequest{
			TaskID:      other.Task.ID,
			HoursLogged: testutil.D("2"),
			LogDate:     "2024-03-01",
		})
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing principal", func(t *testing.T) {
		_, err := s.timesheetSvc.Create(ctx, nil, &domain.CreateTimesheetRequest{})
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestTimesheetService_EditPermissions(t *testing.T) {
	s := setupServices(t)
	tenant := testutil.SeedTenant(t, s.db, "Acme")
	other := testutil.SeedTenant(t, s.db, "Globex")
	ctx := context.Background()

	entry := logHours(t, s, tenant.TM, tenant.Task.ID, "2", "2024-03-01")
	desc := "edited"
	req := &domain.UpdateTimesheetRequest{Description: &desc}

	tests := []struct {
		name    string
		user    *domain.User
		wantErr error
	}{
		{"owner", tenant.TM, nil},
		{"admin", tenant.Admin, nil},
		{"project manager of the project", tenant.PM, nil},
		{"sales finance", tenant.SF, domain.ErrForbidden},
		{"admin of another company", other.Admin, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.timesheetSvc.Update(ctx, testutil.Principal(tt.user), entry.ID, req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("manager of another project", func(t *testing.T) {
		pm := testutil.CreateTestUser(t, s.db, tenant.Company.ID, domain.RoleProjectManager, "60")
		testutil.CreateTestProject(t, s.db, tenant.Company.ID, pm.ID, "Side project")
		err := s.timesheetSvc.Delete(ctx, testutil.Principal(pm), entry.ID)
		assert.ErrorIs(t, err, service.ErrNotProjectManager)
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, s.timesheetSvc.Delete(ctx, testutil.Principal(tenant.TM), entry.ID))
		_, err := s.timesheets.GetByIDInCompany(ctx, tenant.Company.ID, entry.ID)
		assert.Error(t, err)
	})
}

func TestTimesheetService_List(t *testing.T) {
	s := setupServices(t)
	tenant := testutil.SeedTenant(t, s.db, "Acme")
	other := testutil.SeedTenant(t, s.db, "Globex")
	ctx := context.Background()

	logHours(t, s, tenant.TM, tenant.Task.ID, "2", "2024-03-01")
	logHours(t, s, tenant.TM, tenant.Task.ID, "3", "2024-03-05")
	logHours(t, s, tenant.PM, tenant.Task.ID, "1", "2024-03-02")
	logHours(t, s, other.TM, other.Task.ID, "7", "2024-03-01")

	list := func(t *testing.T, user *domain.User, q scope.TimesheetQuery) []domain.TimesheetDTO {
		t.Helper()
		resp, err := s.timesheetSvc.List(ctx, testutil.Principal(user), q, 1, 20)
		require.NoError(t, err)
		dtos, ok := resp.Data.([]domain.TimesheetDTO)
		require.True(t, ok)
		assert.Equal(t, int64(len(dtos)), resp.Total)
		return dtos
	}

	t.Run("team member sees only own entries", func(t *testing.T) {
		dtos := list(t, tenant.TM, scope.TimesheetQuery{})
		require.Len(t, dtos, 2)
		for _, dto := range dtos {
			assert.Equal(t, tenant.TM.ID, dto.UserID)
		}
		// Newest first
		assert.Equal(t, "2024-03-05", dtos[0].LogDate)
	})

	t.Run("team member asking for someone else", func(t *testing.T) {
		_, err := s.timesheetSvc.List(ctx, testutil.Principal(tenant.TM), scope.TimesheetQuery{UserID: &tenant.PM.ID}, 1, 20)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("admin sees the company only", func(t *testing.T) {
		assert.Len(t, list(t, tenant.Admin, scope.TimesheetQuery{}), 3)
	})

	t.Run("foreign project id narrows to nothing", func(t *testing.T) {
		assert.Empty(t, list(t, tenant.Admin, scope.TimesheetQuery{ProjectID: &other.Project.ID}))
	})

	t.Run("date window", func(t *testing.T) {
		from := testutil.Date(2024, 3, 2)
		to := testutil.Date(2024, 3, 5)
		dtos := list(t, tenant.Admin, scope.TimesheetQuery{From: &from, To: &to})
		require.Len(t, dtos, 1)
		assert.Equal(t, tenant.PM.ID, dtos[0].UserID)
	})
}

func TestTimesheetService_Billable(t *testing.T) {
	s := setupServices(t)
	tenant := testutil.SeedTenant(t, s.db, "Acme")
	ctx := context.Background()
	tm := testutil.Principal(tenant.TM)
	notBillable := false

	internal, err := s.timesheetSvc.Create(ctx, tm, &domain.CreateTimesheetRequest{
		TaskID:      tenant.Task.ID,
		HoursLogged: testutil.D("8"),
		LogDate:     "2024-03-01",
		IsBillable:  &notBillable,
	})
	require.NoError(t, err)
	assert.False(t, internal.IsBillable)

	billable := logHours(t, s, tenant.TM, tenant.Task.ID, "2", "2024-03-02")
	assert.True(t, billable.IsBillable)

	t.Run("non-billable flag is stored", func(t *testing.T) {
		stored, err := s.timesheets.GetByIDInCompany(ctx, tenant.Company.ID, internal.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsBillable)
		assert.Equal(t, "360.00", stored.Cost.StringFixed(2))
	})

	t.Run("analytics counts only billable hours", func(t *testing.T) {
		dto, err := s.dashboardSvc.Analytics(ctx, tm, nil, domain.DateRangeAllTime)
		require.NoError(t, err)
		assert.Equal(t, "10.00", dto.TotalHours.StringFixed(2))
		assert.Equal(t, "2.00", dto.BillableHours.StringFixed(2))
	})

	t.Run("edit can clear the flag", func(t *testing.T) {
		updated, err := s.timesheetSvc.Update(ctx, tm, billable.ID, &domain.UpdateTimesheetRequest{
			IsBillable: &notBillable,
		})
		require.NoError(t, err)
		assert.False(t, updated.IsBillable)

		stored, err := s.timesheets.GetByIDInCompany(ctx, tenant.Company.ID, billable.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsBillable)
	})
}
