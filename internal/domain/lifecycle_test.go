package domain_test

import (
	"testing"
	"time"

	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDocumentKind_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		kind domain.DocumentKind
		from domain.DocumentStatus
		to   domain.DocumentStatus
		want bool
	}{
		{"invoice draft to sent", domain.DocumentKindCustomerInvoice, domain.DocumentStatusDraft, domain.DocumentStatusSent, true},
		{"invoice sent to paid", domain.DocumentKindCustomerInvoice, domain.DocumentStatusSent, domain.DocumentStatusPaid, true},
		{"invoice same status", domain.DocumentKindCustomerInvoice, domain.DocumentStatusSent, domain.DocumentStatusSent, true},
		{"invoice skip step", domain.DocumentKindCustomerInvoice, domain.DocumentStatusDraft, domain.DocumentStatusPaid, false},
		{"invoice backward", domain.DocumentKindCustomerInvoice, domain.DocumentStatusPaid, domain.DocumentStatusSent, false},
		{"invoice foreign status", domain.DocumentKindCustomerInvoice, domain.DocumentStatusDraft, domain.DocumentStatusConfirmed, false},
		{"sales order draft to confirmed", domain.DocumentKindSalesOrder, domain.DocumentStatusDraft, domain.DocumentStatusConfirmed, true},
		{"sales order confirmed to billed", domain.DocumentKindSalesOrder, domain.DocumentStatusConfirmed, domain.DocumentStatusBilled, true},
		{"purchase order draft to billed", domain.DocumentKindPurchaseOrder, domain.DocumentStatusDraft, domain.DocumentStatusBilled, false},
		{"vendor bill draft to submitted", domain.DocumentKindVendorBill, domain.DocumentStatusDraft, domain.DocumentStatusSubmitted, true},
		{"vendor bill submitted to paid", domain.DocumentKindVendorBill, domain.DocumentStatusSubmitted, domain.DocumentStatusPaid, true},
		{"vendor bill sent is not a bill status", domain.DocumentKindVendorBill, domain.DocumentStatusDraft, domain.DocumentStatusSent, false},
		{"unknown kind", domain.DocumentKind("quote"), domain.DocumentStatusDraft, domain.DocumentStatusSent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.CanTransition(tt.from, tt.to))
		})
	}
}

func TestDocumentKind_FinalStatus(t *testing.T) {
	assert.Equal(t, domain.DocumentStatusBilled, domain.DocumentKindSalesOrder.FinalStatus())
	assert.Equal(t, domain.DocumentStatusPaid, domain.DocumentKindCustomerInvoice.FinalStatus())
	assert.Equal(t, domain.DocumentStatusBilled, domain.DocumentKindPurchaseOrder.FinalStatus())
	assert.Equal(t, domain.DocumentStatusPaid, domain.DocumentKindVendorBill.FinalStatus())
	assert.Empty(t, domain.DocumentKind("quote").FinalStatus())
}

func TestCanTransitionExpense(t *testing.T) {
	tests := []struct {
		from, to domain.ExpenseStatus
		want     bool
	}{
		{domain.ExpenseStatusPending, domain.ExpenseStatusApproved, true},
		{domain.ExpenseStatusPending, domain.ExpenseStatusRejected, true},
		{domain.ExpenseStatusPending, domain.ExpenseStatusReimbursed, false},
		{domain.ExpenseStatusApproved, domain.ExpenseStatusReimbursed, true},
		{domain.ExpenseStatusApproved, domain.ExpenseStatusRejected, false},
		{domain.ExpenseStatusRejected, domain.ExpenseStatusApproved, false},
		{domain.ExpenseStatusReimbursed, domain.ExpenseStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CanTransitionExpense(tt.from, tt.to))
		})
	}
}

func TestDocumentKind_Lifecycle(t *testing.T) {
	assert.Equal(t,
		[]domain.DocumentStatus{domain.DocumentStatusDraft, domain.DocumentStatusSent, domain.DocumentStatusPaid},
		domain.DocumentKindCustomerInvoice.Lifecycle())
	assert.Equal(t, domain.DocumentStatusBilled, domain.DocumentKindPurchaseOrder.FinalStatus())
	assert.Nil(t, domain.DocumentKind("credit_note").Lifecycle())
	assert.Empty(t, domain.DocumentKind("credit_note").FinalStatus())
}

func TestDateRange_Start(t *testing.T) {
	now := time.Date(2024, time.March, 15, 13, 45, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC), domain.DateRangeLast7Days.Start(now))
	assert.Equal(t, time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC), domain.DateRangeLast30Days.Start(now))
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), domain.DateRangeThisMonth.Start(now))
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), domain.DateRangeThisYear.Start(now))
	assert.True(t, domain.DateRangeAllTime.Start(now).IsZero())
	assert.False(t, domain.DateRange("yesterday").IsValid())
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&domain.Task{DueDate: &past, Status: domain.TaskStatusInProgress}).IsOverdue(now))
	assert.False(t, (&domain.Task{DueDate: &past, Status: domain.TaskStatusDone}).IsOverdue(now))
	assert.False(t, (&domain.Task{DueDate: &future, Status: domain.TaskStatusNew}).IsOverdue(now))
	assert.False(t, (&domain.Task{Status: domain.TaskStatusNew}).IsOverdue(now))
}
