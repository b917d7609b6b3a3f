package domain

// DocumentKind identifies one of the financial document types
type DocumentKind string

const (
	DocumentKindSalesOrder      DocumentKind = "sales_order"
	DocumentKindCustomerInvoice DocumentKind = "customer_invoice"
	DocumentKindPurchaseOrder   DocumentKind = "purchase_order"
	DocumentKindVendorBill      DocumentKind = "vendor_bill"
)

// documentLifecycles holds the ordered statuses for each document kind.
// Documents only ever move one step forward.
var documentLifecycles = map[DocumentKind][]DocumentStatus{
	DocumentKindSalesOrder:      {DocumentStatusDraft, DocumentStatusConfirmed, DocumentStatusBilled},
	DocumentKindCustomerInvoice: {DocumentStatusDraft, DocumentStatusSent, DocumentStatusPaid},
	DocumentKindPurchaseOrder:   {DocumentStatusDraft, DocumentStatusConfirmed, DocumentStatusBilled},
	DocumentKindVendorBill:      {DocumentStatusDraft, DocumentStatusSubmitted, DocumentStatusPaid},
}

// Lifecycle returns the ordered statuses of a document kind, or nil for an unknown kind
func (k DocumentKind) Lifecycle() []DocumentStatus {
	return documentLifecycles[k]
}

// IsValidStatus reports whether status belongs to the kind's lifecycle
func (k DocumentKind) IsValidStatus(status DocumentStatus) bool {
	return k.stepOf(status) >= 0
}

// FinalStatus returns the terminal status of the kind's lifecycle
func (k DocumentKind) FinalStatus() DocumentStatus {
	steps := documentLifecycles[k]
	if len(steps) == 0 {
		return ""
	}
	return steps[len(steps)-1]
}

// CanTransition reports whether a document of this kind may move from one status to another.
// Staying on the same status is allowed and treated as a no-op by callers.
func (k DocumentKind) CanTransition(from, to DocumentStatus) bool {
	fromStep, toStep := k.stepOf(from), k.stepOf(to)
	if fromStep < 0 || toStep < 0 {
		return false
	}
	return toStep == fromStep || toStep == fromStep+1
}

func (k DocumentKind) stepOf(status DocumentStatus) int {
	for i, s := range documentLifecycles[k] {
		if s == status {
			return i
		}
	}
	return -1
}

// RevenueInvoiceStatuses are the invoice statuses that count toward project revenue
var RevenueInvoiceStatuses = []DocumentStatus{DocumentStatusSent, DocumentStatusPaid}

// CostBillStatuses are the vendor bill statuses that count toward project cost
var CostBillStatuses = []DocumentStatus{DocumentStatusSubmitted, DocumentStatusPaid}

// CostExpenseStatuses are the expense statuses that count toward project cost
var CostExpenseStatuses = []ExpenseStatus{ExpenseStatusApproved, ExpenseStatusReimbursed}

// CanTransitionExpense reports whether an expense may move between the given statuses.
// Pending expenses are approved or rejected; approved expenses are reimbursed.
func CanTransitionExpense(from, to ExpenseStatus) bool {
	switch from {
	case ExpenseStatusPending:
		return to == ExpenseStatusApproved || to == ExpenseStatusRejected
	case ExpenseStatusApproved:
		return to == ExpenseStatusReimbursed
	case ExpenseStatusRejected, ExpenseStatusReimbursed:
		return false
	}
	return false
}
