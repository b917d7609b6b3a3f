package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/service"
	"github.com/straye-as/project-ledger-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_GetDashboard(t *testing.T) {
	s := setupServices(t)
	tenant := testutil.SeedTenant(t, s.db, "Acme")
	other := testutil.SeedTenant(t, s.db, "Globex")
	ctx := context.Background()
	today := time.Now().UTC().Format(domain.DateLayout)

	overdue := time.Now().UTC().AddDate(0, 0, -3)
	require.NoError(t, s.db.Model(&domain.Task{}).Where("id = ?", tenant.Task.ID).Update("due_date", overdue).Error)

	invoice := createDocument(t, s, tenant.SF, domain.DocumentKindCustomerInvoice, &tenant.Project.ID, "1000")
	_, err := s.documentSvc.UpdateStatus(ctx, testutil.Principal(tenant.SF), domain.DocumentKindCustomerInvoice, invoice.ID, domain.DocumentStatusSent)
	require.NoError(t, err)
	createDocument(t, s, tenant.SF, domain.DocumentKindSalesOrder, nil, "700")
	createDocument(t, s, other.SF, domain.DocumentKindSalesOrder, nil, "900")

	logHours(t, s, tenant.TM, tenant.Task.ID, "3", today)
	submitExpense(t, s, tenant.TM, &tenant.Project.ID, "25")

	t.Run("admin gets the company overview", func(t *testing.T) {
		dto, err := s.dashboardSvc.GetDashboard(ctx, testutil.Principal(tenant.Admin))
		require.NoError(t, err)
		assert.Equal(t, domain.DashboardScopeCompany, dto.Scope)
		require.NotNil(t, dto.Overview)
		assert.Nil(t, dto.Personal)

		assert.Equal(t, int64(1), dto.Overview.ActiveProjects)
		assert.Equal(t, int64(1), dto.Overview.OverdueTasks)
		assert.Equal(t, int64(1), dto.Overview.PendingExpenses)
		assert.Equal(t, int64(1), dto.Overview.OpenSalesOrders)
		assert.Equal(t, int64(1), dto.Overview.UnpaidInvoices)
		assert.Equal(t, "1000.00", dto.Overview.UnpaidInvoicesAmount.StringFixed(2))

		require.Len(t, dto.Projects, 1)
		assert.Equal(t, "1000.00", dto.Projects[0].Revenue.StringFixed(2))
		assert.Equal(t, "135.00", dto.Projects[0].Cost.StringFixed(2))
	})

	t.Run("project manager gets managed projects", func(t *testing.T) {
		dto, err := s.dashboardSvc.GetDashboard(ctx, testutil.Principal(tenant.PM))
		require.NoError(t, err)
		assert.Equal(t, domain.DashboardScopeManaged, dto.Scope)
		require.NotNil(t, dto.Overview)
		assert.Equal(t, int64(1), dto.Overview.PendingExpenses)
		// The sales order has no project, so it is outside the managed scope
		assert.Equal(t, int64(0), dto.Overview.OpenSalesOrders)
	})

	t.Run("team member gets personal figures", func(t *testing.T) {
		dto, err := s.dashboardSvc.GetDashboard(ctx, testutil.Principal(tenant.TM))
		require.NoError(t, err)
		assert.Equal(t, domain.DashboardScopePersonal, dto.Scope)
		assert.Nil(t, dto.Overview)
		require.NotNil(t, dto.Personal)
		assert.Equal(t, int64(1), dto.Personal.OpenTasks)
		assert.Equal(t, int64(1), dto.Personal.OverdueTasks)
		assert.Equal(t, int64(1), dto.Personal.PendingExpenses)
		assert.Equal(t, "3.00", dto.Personal.HoursLogged.StringFixed(2))
	})

	t.Run("no principal", func(t *testing.T) {
		_, err := s.dashboardSvc.GetDashboard(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestDashboardService_Analytics(t *testing.T) {
	s := setupServices(t)
	tenant := testutil.SeedTenant(t, s.db, "Acme")
	other := testutil.SeedTenant(t, s.db, "Globex")
	ctx := context.Background()

	stranger := testutil.CreateTestUser(t, s.db, tenant.Company.ID, domain.RoleTeamMember, "30")
	logHours(t, s, tenant.TM, tenant.Task.ID, "2", "2024-03-01")
	logHours(t, s, tenant.TM, tenant.Task.ID, "3", "2024-03-01")
	logHours(t, s, tenant.TM, tenant.Task.ID, "1", "2024-03-04")
	logHours(t, s, tenant.PM, tenant.Task.ID, "4", "2024-03-02")

	t.Run("project manager on a teammate", func(t *testing.T) {
		dto, err := s.dashboardSvc.Analytics(ctx, testutil.Principal(tenant.PM), &tenant.TM.ID, domain.DateRangeAllTime)
		require.NoError(t, err)
		assert.Equal(t, 1, dto.ProjectCount)
		assert.Equal(t, "6.00", dto.TotalHours.StringFixed(2))
		assert.Equal(t, "270.00", dto.TotalCost.StringFixed(2))
		assert.Nil(t, dto.From)

		require.Len(t, dto.ByDay, 2)
		assert.Equal(t, "2024-03-01", dto.ByDay[0].Date)
		assert.Equal(t, "5.00", dto.ByDay[0].Hours.StringFixed(2))
		assert.Equal(t, "2024-03-04", dto.ByDay[1].Date)

		require.Len(t, dto.ByProject, 1)
		assert.Equal(t, tenant.Project.Name, dto.ByProject[0].ProjectName)
	})

	t.Run("project manager on a non teammate is forbidden", func(t *testing.T) {
		_, err := s.dashboardSvc.Analytics(ctx, testutil.Principal(tenant.PM), &stranger.ID, domain.DateRangeAllTime)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("team member on someone else is forbidden", func(t *testing.T) {
		_, err := s.dashboardSvc.Analytics(ctx, testutil.Principal(tenant.TM), &tenant.PM.ID, domain.DateRangeAllTime)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("target in another company is not found", func(t *testing.T) {
		_, err := s.dashboardSvc.Analytics(ctx, testutil.Principal(tenant.Admin), &other.TM.ID, domain.DateRangeAllTime)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("admin without target sees the company", func(t *testing.T) {
		dto, err := s.dashboardSvc.Analytics(ctx, testutil.Principal(tenant.Admin), nil, domain.DateRangeAllTime)
		require.NoError(t, err)
		assert.Equal(t, "10.00", dto.TotalHours.StringFixed(2))
	})

	t.Run("team member without target sees own work", func(t *testing.T) {
		dto, err := s.dashboardSvc.Analytics(ctx, testutil.Principal(tenant.TM), nil, "")
		require.NoError(t, err)
		assert.Equal(t, domain.DateRangeLast30Days, dto.Range)
		require.NotNil(t, dto.From)
	})

	t.Run("unknown range", func(t *testing.T) {
		_, err := s.dashboardSvc.Analytics(ctx, testutil.Principal(tenant.Admin), nil, domain.DateRange("fortnight"))
		assert.ErrorIs(t, err, service.ErrInvalidDateRange)
	})
}
