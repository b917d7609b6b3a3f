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

func submitExpense(t *testing.T, s *services, user *domain.User, projectID *uuid.UUID, amount string) *domain.ExpenseDTO {
	t.Helper()
	dto, err := s.expenseSvc.Submit(context.Background(), testutil.Principal(user), &domain.CreateExpenseRequest{
		ProjectID:   projectID,
		Description: "Train ticket",
		Amount:      testutil.D(amount),
		ExpenseDate: "2024-03-01",
	})
	require.NoError(t, err)
	return dto
}

func TestExpenseService_Review(t *testing.T) {
	s := setupServices(t)
	tenant := testutil.SeedTenant(t, s.db, "Acme")
	other := testutil.SeedTenant(t, s.db, "Globex")
	ctx := context.Background()

	expense := submitExpense(t, s, tenant.TM, &tenant.Project.ID, "50")
	assert.Equal(t, domain.ExpenseStatusPending, expense.Status)

	t.Run("team member and sales finance cannot review", func(t *testing.T) {
		for _, user := range []*domain.User{tenant.TM, tenant.SF} {
			_, err := s.expenseSvc.UpdateStatus(ctx, testutil.Principal(user), expense.ID, domain.ExpenseStatusApproved)
			assert.ErrorIs(t, err, domain.ErrForbidden)
		}
	})

	t.Run("manager of another project cannot see it", func(t *testing.T) {
		pm := testutil.CreateTestUser(t, s.db, tenant.Company.ID, domain.RoleProjectManager, "60")
		_, err := s.expenseSvc.UpdateStatus(ctx, testutil.Principal(pm), expense.ID, domain.ExpenseStatusApproved)
		assert.ErrorIs(t, err, service.ErrExpenseNotFound)
	})

	t.Run("admin of another company cannot see it", func(t *testing.T) {
		_, err := s.expenseSvc.UpdateStatus(ctx, testutil.Principal(other.Admin), expense.ID, domain.ExpenseStatusApproved)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("reimbursing a pending expense is rejected", func(t *testing.T) {
		_, err := s.expenseSvc.UpdateStatus(ctx, testutil.Principal(tenant.PM), expense.ID, domain.ExpenseStatusReimbursed)
		assert.ErrorIs(t, err, service.ErrInvalidStatusTransition)
	})

	t.Run("project manager approves and the submitter is notified", func(t *testing.T) {
		dto, err := s.expenseSvc.UpdateStatus(ctx, testutil.Principal(tenant.PM), expense.ID, domain.ExpenseStatusApproved)
		require.NoError(t, err)
		assert.Equal(t, domain.ExpenseStatusApproved, dto.Status)
		require.NotNil(t, dto.ReviewedByID)
		assert.Equal(t, tenant.PM.ID, *dto.ReviewedByID)

		sent := s.sink.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, tenant.TM.ID, sent[0].UserID)
		assert.Equal(t, domain.NotificationTypeExpenseReviewed, sent[0].Type)

		got := s.financials.ProjectFinancials(ctx, tenant.Project.ID)
		assert.Equal(t, "50.00", got.Cost.StringFixed(2))
	})

	t.Run("admin reimburses", func(t *testing.T) {
		dto, err := s.expenseSvc.UpdateStatus(ctx, testutil.Principal(tenant.Admin), expense.ID, domain.ExpenseStatusReimbursed)
		require.NoError(t, err)
		assert.Equal(t, domain.ExpenseStatusReimbursed, dto.Status)
	})
}

func TestExpenseService_SubmitAndList(t *testing.T) {
	s := setupServices(t)
	tenant := testutil.SeedTenant(t, s.db, "Acme")
	other := testutil.SeedTenant(t, s.db, "Globex")
	ctx := context.Background()

	_, err := s.expenseSvc.Submit(ctx, testutil.Principal(tenant.TM), &domain.CreateExpenseRequest{
		Description: "Free lunch", Amount: testutil.D("0"), ExpenseDate: "2024-03-01",
	})
	assert.ErrorIs(t, err, service.ErrInvalidAmount)

	_, err = s.expenseSvc.Submit(ctx, testutil.Principal(tenant.TM), &domain.CreateExpenseRequest{
		ProjectID: &other.Project.ID, Description: "Cross tenant", Amount: testutil.D("5"), ExpenseDate: "2024-03-01",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	submitExpense(t, s, tenant.TM, &tenant.Project.ID, "10")
	submitExpense(t, s, tenant.TM, nil, "20")
	submitExpense(t, s, tenant.PM, nil, "30")
	submitExpense(t, s, other.TM, nil, "40")

	list := func(t *testing.T, user *domain.User, q scope.ExpenseQuery) []domain.ExpenseDTO {
		t.Helper()
		resp, err := s.expenseSvc.List(ctx, testutil.Principal(user), q, 1, 20)
		require.NoError(t, err)
		dtos, ok := resp.Data.([]domain.ExpenseDTO)
		require.True(t, ok)
		return dtos
	}

	assert.Len(t, list(t, tenant.TM, scope.ExpenseQuery{}), 2)
	assert.Len(t, list(t, tenant.Admin, scope.ExpenseQuery{}), 3)
	assert.Len(t, list(t, tenant.Admin, scope.ExpenseQuery{ProjectID: &tenant.Project.ID}), 1)

	_, err = s.expenseSvc.List(ctx, testutil.Principal(tenant.TM), scope.ExpenseQuery{UserID: &tenant.PM.ID}, 1, 20)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
