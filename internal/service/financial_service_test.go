package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/repository"
	"github.com/straye-as/project-ledger-api/internal/service"
	"github.com/straye-as/project-ledger-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDocumentSums struct {
	sum      decimal.Decimal
	err      error
	statuses []domain.DocumentStatus
}

func (f *fakeDocumentSums) SumByProject(_ context.Context, _ uuid.UUID, statuses []domain.DocumentStatus) (decimal.Decimal, error) {
	f.statuses = statuses
	return f.sum, f.err
}

type fakeCostSum struct {
	sum decimal.Decimal
	err error
}

func (f fakeCostSum) SumCostByProject(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return f.sum, f.err
}

func TestComputeFinancials(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		revenue    string
		cost       string
		wantProfit string
		wantMargin string
	}{
		{"profitable", "1000", "400", "600.00", "60.00"},
		{"loss", "1000", "1500", "-500.00", "-50.00"},
		{"no revenue no cost", "0", "0", "0.00", "0.00"},
		{"no revenue with cost", "0", "250", "-250.00", "0.00"},
		{"no revenue with negative cost", "0", "-10", "10.00", "0.00"},
		{"margin rounds to cents", "3", "1", "2.00", "66.67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.ComputeFinancials(id, testutil.D(tt.revenue), testutil.D(tt.cost))
			assert.Equal(t, id, got.ProjectID)
			assert.Equal(t, tt.wantProfit, got.Profit.StringFixed(2))
			assert.Equal(t, tt.wantMargin, got.ProfitMargin.StringFixed(2))
			assert.True(t, got.Profit.Equal(got.Revenue.Sub(got.Cost)))
		})
	}
}

func TestTimesheetCost(t *testing.T) {
	assert.Equal(t, "360.00", service.TimesheetCost(testutil.D("8"), testutil.D("45")).StringFixed(2))
	assert.Equal(t, "12.35", service.TimesheetCost(testutil.D("0.25"), testutil.D("49.39")).StringFixed(2))
	assert.Equal(t, "0.00", service.TimesheetCost(testutil.D("8"), decimal.Zero).StringFixed(2))
}

func TestFinancialService_WithFakeSources(t *testing.T) {
	t.Run("sums every source with the counted statuses", func(t *testing.T) {
		invoices := &fakeDocumentSums{sum: testutil.D("1000")}
		bills := &fakeDocumentSums{sum: testutil.D("200")}
		svc := service.NewFinancialService(invoices, bills,
			fakeCostSum{sum: testutil.D("50")}, fakeCostSum{sum: testutil.D("150")}, zap.NewNop())

		ctx, projectID := context.Background(), uuid.New()
		got := svc.ProjectFinancials(ctx, projectID)

		assert.Equal(t, "1000.00", got.Revenue.StringFixed(2))
		assert.Equal(t, "400.00", got.Cost.StringFixed(2))
		assert.Equal(t, "600.00", got.Profit.StringFixed(2))
		assert.Equal(t, "60.00", got.ProfitMargin.StringFixed(2))
		assert.True(t, svc.ProjectRevenue(ctx, projectID).Equal(got.Revenue))
		assert.True(t, svc.ProjectCost(ctx, projectID).Equal(got.Cost))
		assert.Equal(t, domain.RevenueInvoiceStatuses, invoices.statuses)
		assert.Equal(t, domain.CostBillStatuses, bills.statuses)
	})

	t.Run("failing source counts as zero", func(t *testing.T) {
		boom := errors.New("connection reset")
		svc := service.NewFinancialService(
			&fakeDocumentSums{err: boom},
			&fakeDocumentSums{sum: testutil.D("200")},
			fakeCostSum{err: boom},
			fakeCostSum{sum: testutil.D("100")},
			zap.NewNop(),
		)

		got := svc.ProjectFinancials(context.Background(), uuid.New())

		assert.True(t, got.Revenue.IsZero())
		assert.Equal(t, "300.00", got.Cost.StringFixed(2))
		assert.True(t, got.ProfitMargin.IsZero())
	})

	t.Run("several projects keep their order", func(t *testing.T) {
		svc := service.NewFinancialService(&fakeDocumentSums{}, &fakeDocumentSums{},
			fakeCostSum{}, fakeCostSum{}, zap.NewNop())
		ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}

		got := svc.ProjectsFinancials(context.Background(), ids)

		require.Len(t, got, len(ids))
		for i := range ids {
			assert.Equal(t, ids[i], got[i].ProjectID)
		}
	})
}

func TestFinancialService_ProjectScenario(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tenant := testutil.SeedTenant(t, db, "Acme")
	ctx := context.Background()
	day := testutil.Date(2024, 3, 1)

	invoiceRepo := repository.NewCustomerInvoiceRepository(db)
	billRepo := repository.NewVendorBillRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	timesheetRepo := repository.NewTimesheetRepository(db)

	projectID := tenant.Project.ID
	require.NoError(t, invoiceRepo.Create(ctx, &domain.CustomerInvoice{
		Number: "INV-1", CompanyID: tenant.Company.ID, ProjectID: &projectID, CustomerName: "Client",
		Amount: testutil.D("1000"), Status: domain.DocumentStatusSent, InvoiceDate: day,
	}))
	// Drafts never count
	require.NoError(t, invoiceRepo.Create(ctx, &domain.CustomerInvoice{
		Number: "INV-2", CompanyID: tenant.Company.ID, ProjectID: &projectID, CustomerName: "Client",
		Amount: testutil.D("5000"), Status: domain.DocumentStatusDraft, InvoiceDate: day,
	}))
	require.NoError(t, billRepo.Create(ctx, &domain.VendorBill{
		Number: "BILL-1", CompanyID: tenant.Company.ID, ProjectID: &projectID, VendorName: "Supplier",
		Amount: testutil.D("200"), Status: domain.DocumentStatusPaid, BillDate: day,
	}))
	require.NoError(t, expenseRepo.Create(ctx, &domain.Expense{
		UserID: tenant.TM.ID, ProjectID: &projectID, Description: "Train",
		Amount: testutil.D("50"), Status: domain.ExpenseStatusApproved, ExpenseDate: day,
	}))
	require.NoError(t, expenseRepo.Create(ctx, &domain.Expense{
		UserID: tenant.TM.ID, ProjectID: &projectID, Description: "Hotel",
		Amount: testutil.D("300"), Status: domain.ExpenseStatusPending, ExpenseDate: day,
	}))
	require.NoError(t, timesheetRepo.Create(ctx, &domain.Timesheet{
		TaskID: tenant.Task.ID, UserID: tenant.TM.ID, HoursLogged: testutil.D("2"),
		LogDate: day, IsBillable: true, Cost: testutil.D("150"),
	}))

	svc := service.NewFinancialService(invoiceRepo, billRepo, expenseRepo, timesheetRepo, zap.NewNop())
	got := svc.ProjectFinancials(ctx, projectID)

	assert.Equal(t, "1000.00", got.Revenue.StringFixed(2))
	assert.Equal(t, "400.00", got.Cost.StringFixed(2))
	assert.Equal(t, "600.00", got.Profit.StringFixed(2))
	assert.Equal(t, "60.00", got.ProfitMargin.StringFixed(2))
	assert.True(t, svc.ProjectRevenue(ctx, projectID).Equal(got.Revenue))
	assert.True(t, svc.ProjectCost(ctx, projectID).Equal(testutil.D("400")))

	t.Run("project without documents is all zero", func(t *testing.T) {
		empty := testutil.CreateTestProject(t, db, tenant.Company.ID, tenant.PM.ID, "Empty")
		got := svc.ProjectFinancials(ctx, empty.ID)
		assert.True(t, got.Revenue.IsZero())
		assert.True(t, got.Cost.IsZero())
		assert.True(t, got.ProfitMargin.IsZero())
	})
}
