package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"gorm.io/gorm"
)

// Document is the set of financial document models sharing the
// company_id, project_id, amount and status columns
type Document interface {
	domain.SalesOrder | domain.CustomerInvoice | domain.PurchaseOrder | domain.VendorBill
}

// DocumentRepository persists one financial document kind
type DocumentRepository[T Document] struct {
	db         *gorm.DB
	dateColumn string
}

func NewSalesOrderRepository(db *gorm.DB) *DocumentRepository[domain.SalesOrder] {
	return &DocumentRepository[domain.SalesOrder]{db: db, dateColumn: "order_date"}
}

func NewCustomerInvoiceRepository(db *gorm.DB) *DocumentRepository[domain.CustomerInvoice] {
	return &DocumentRepository[domain.CustomerInvoice]{db: db, dateColumn: "invoice_date"}
}

func NewPurchaseOrderRepository(db *gorm.DB) *DocumentRepository[domain.PurchaseOrder] {
	return &DocumentRepository[domain.PurchaseOrder]{db: db, dateColumn: "order_date"}
}

func NewVendorBillRepository(db *gorm.DB) *DocumentRepository[domain.VendorBill] {
	return &DocumentRepository[domain.VendorBill]{db: db, dateColumn: "bill_date"}
}

func (r *DocumentRepository[T]) model(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(T))
}

func (r *DocumentRepository[T]) applyFilter(ctx context.Context, f scope.DocumentFilter) *gorm.DB {
	query := r.model(ctx).Where("company_id = ?", f.CompanyID)
	if f.ProjectID != nil {
		query = query.Where("project_id = ?", *f.ProjectID)
	}
	if f.Status != nil {
		query = query.Where("status = ?", *f.Status)
	}
	if f.Projects != nil {
		query = query.Where("project_id IN (?)", scopedProjectIDs(ctx, r.db, *f.Projects))
	}
	return query
}

func (r *DocumentRepository[T]) Create(ctx context.Context, doc *T) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// GetByIDInCompany loads a document only when it belongs to the company
func (r *DocumentRepository[T]) GetByIDInCompany(ctx context.Context, companyID, id uuid.UUID) (*T, error) {
	var doc T
	if err := r.db.WithContext(ctx).First(&doc, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns the documents matching the filter, newest first
func (r *DocumentRepository[T]) List(ctx context.Context, f scope.DocumentFilter, page, pageSize int) ([]T, int64, error) {
	var docs []T
	var total int64

	query := r.applyFilter(ctx, f)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order(r.dateColumn + " DESC, created_at DESC").
		Offset(offset(page, pageSize)).
		Limit(pageSize).
		Find(&docs).Error
	return docs, total, err
}

// TransitionStatus reads the current status inside a transaction, lets check
// approve the move, writes the new status and returns the updated document
func (r *DocumentRepository[T]) TransitionStatus(ctx context.Context, companyID, id uuid.UUID, to domain.DocumentStatus, check func(current domain.DocumentStatus) error) (*T, error) {
	var doc T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current struct {
			Status domain.DocumentStatus
		}
		if err := tx.Model(new(T)).
			Select("status").
			Where("id = ? AND company_id = ?", id, companyID).
			Take(&current).Error; err != nil {
			return err
		}
		if err := check(current.Status); err != nil {
			return err
		}
		if current.Status != to {
			if err := tx.Model(new(T)).Where("id = ?", id).Update("status", to).Error; err != nil {
				return err
			}
		}
		return tx.First(&doc, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// SumByProject sums amounts of the project's documents in the given statuses
func (r *DocumentRepository[T]) SumByProject(ctx context.Context, projectID uuid.UUID, statuses []domain.DocumentStatus) (decimal.Decimal, error) {
	return sumDecimal(
		r.model(ctx).Where("project_id = ? AND status IN ?", projectID, statuses),
		"amount",
	)
}

// CountByStatus counts documents matching the filter in any of the statuses
func (r *DocumentRepository[T]) CountByStatus(ctx context.Context, f scope.DocumentFilter, statuses []domain.DocumentStatus) (int64, error) {
	var count int64
	err := r.applyFilter(ctx, f).Where("status IN ?", statuses).Count(&count).Error
	return count, err
}

// SumByStatus sums amounts of documents matching the filter in any of the statuses.
// A non-zero since limits the sum to documents dated on or after it.
func (r *DocumentRepository[T]) SumByStatus(ctx context.Context, f scope.DocumentFilter, statuses []domain.DocumentStatus, since time.Time) (decimal.Decimal, error) {
	query := r.applyFilter(ctx, f).Where("status IN ?", statuses)
	if !since.IsZero() {
		query = query.Where(r.dateColumn+" >= ?", since)
	}
	return sumDecimal(query, "amount")
}
