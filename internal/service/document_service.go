package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/mapper"
	"github.com/straye-as/project-ledger-api/internal/notify"
	"github.com/straye-as/project-ledger-api/internal/repository"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"go.uber.org/zap"
)

// documentRoles may create documents and move them through their lifecycle
var documentRoles = []domain.UserRole{domain.RoleAdmin, domain.RoleSalesFinance}

// documentStore adapts one typed document repository to DTOs
type documentStore interface {
	create(ctx context.Context, companyID uuid.UUID, req *domain.CreateDocumentRequest, date time.Time) (domain.DocumentDTO, error)
	list(ctx context.Context, f scope.DocumentFilter, page, pageSize int) ([]domain.DocumentDTO, int64, error)
	transition(ctx context.Context, companyID, id uuid.UUID, to domain.DocumentStatus) (domain.DocumentDTO, error)
}

type kindStore[T repository.Document] struct {
	kind  domain.DocumentKind
	repo  *repository.DocumentRepository[T]
	toDTO func(*T) domain.DocumentDTO
	build func(companyID uuid.UUID, req *domain.CreateDocumentRequest, date time.Time) *T
	// parent validates the optional linked document; nil means the kind takes none
	parent func(ctx context.Context, companyID, id uuid.UUID) error
}

func (k *kindStore[T]) create(ctx context.Context, companyID uuid.UUID, req *domain.CreateDocumentRequest, date time.Time) (domain.DocumentDTO, error) {
	if req.ParentID != nil {
		if k.parent == nil {
			return domain.DocumentDTO{}, ErrInvalidParentDocument
		}
		if err := k.parent(ctx, companyID, *req.ParentID); err != nil {
			return domain.DocumentDTO{}, err
		}
	}
	doc := k.build(companyID, req, date)
	if err := k.repo.Create(ctx, doc); err != nil {
		return domain.DocumentDTO{}, fmt.Errorf("failed to create %s: %w", k.kind, err)
	}
	return k.toDTO(doc), nil
}

func (k *kindStore[T]) list(ctx context.Context, f scope.DocumentFilter, page, pageSize int) ([]domain.DocumentDTO, int64, error) {
	docs, total, err := k.repo.List(ctx, f, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", k.kind, err)
	}
	dtos := make([]domain.DocumentDTO, len(docs))
	for i := range docs {
		dtos[i] = k.toDTO(&docs[i])
	}
	return dtos, total, nil
}

func (k *kindStore[T]) transition(ctx context.Context, companyID, id uuid.UUID, to domain.DocumentStatus) (domain.DocumentDTO, error) {
	doc, err := k.repo.TransitionStatus(ctx, companyID, id, to, func(current domain.DocumentStatus) error {
		if !k.kind.CanTransition(current, to) {
			return fmt.Errorf("%w: %s cannot move from %s to %s", ErrInvalidStatusTransition, k.kind, current, to)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidStatusTransition) {
			return domain.DocumentDTO{}, err
		}
		return domain.DocumentDTO{}, notFoundOr(err, ErrDocumentNotFound, "update document status")
	}
	return k.toDTO(doc), nil
}

// DocumentService manages sales orders, customer invoices, purchase orders and vendor bills
type DocumentService struct {
	stores      map[domain.DocumentKind]documentStore
	projectRepo *repository.ProjectRepository
	guard       *Guard
	notifier    notify.Sink
	logger      *zap.Logger
}

func NewDocumentService(
	salesOrders *repository.DocumentRepository[domain.SalesOrder],
	invoices *repository.DocumentRepository[domain.CustomerInvoice],
	purchaseOrders *repository.DocumentRepository[domain.PurchaseOrder],
	bills *repository.DocumentRepository[domain.VendorBill],
	projectRepo *repository.ProjectRepository,
	guard *Guard,
	notifier notify.Sink,
	logger *zap.Logger,
) *DocumentService {
	salesOrderExists := func(ctx context.Context, companyID, id uuid.UUID) error {
		if _, err := salesOrders.GetByIDInCompany(ctx, companyID, id); err != nil {
			return notFoundOr(err, ErrInvalidParentDocument, "get sales order")
		}
		return nil
	}
	purchaseOrderExists := func(ctx context.Context, companyID, id uuid.UUID) error {
		if _, err := purchaseOrders.GetByIDInCompany(ctx, companyID, id); err != nil {
			return notFoundOr(err, ErrInvalidParentDocument, "get purchase order")
		}
		return nil
	}

	return &DocumentService{
		stores: map[domain.DocumentKind]documentStore{
			domain.DocumentKindSalesOrder: &kindStore[domain.SalesOrder]{
				kind:  domain.DocumentKindSalesOrder,
				repo:  salesOrders,
				toDTO: mapper.ToSalesOrderDTO,
				build: func(companyID uuid.UUID, req *domain.CreateDocumentRequest, date time.Time) *domain.SalesOrder {
					return &domain.SalesOrder{
						Number:       req.Number,
						CompanyID:    companyID,
						ProjectID:    req.ProjectID,
						CustomerName: req.Counterparty,
						Amount:       req.Amount.Round(2),
						Status:       domain.DocumentStatusDraft,
						OrderDate:    date,
					}
				},
			},
			domain.DocumentKindCustomerInvoice: &kindStore[domain.CustomerInvoice]{
				kind:  domain.DocumentKindCustomerInvoice,
				repo:  invoices,
				toDTO: mapper.ToCustomerInvoiceDTO,
				build: func(companyID uuid.UUID, req *domain.CreateDocumentRequest, date time.Time) *domain.CustomerInvoice {
					return &domain.CustomerInvoice{
						Number:       req.Number,
						CompanyID:    companyID,
						ProjectID:    req.ProjectID,
						SalesOrderID: req.ParentID,
						CustomerName: req.Counterparty,
						Amount:       req.Amount.Round(2),
						Status:       domain.DocumentStatusDraft,
						InvoiceDate:  date,
					}
				},
				parent: salesOrderExists,
			},
			domain.DocumentKindPurchaseOrder: &kindStore[domain.PurchaseOrder]{
				kind:  domain.DocumentKindPurchaseOrder,
				repo:  purchaseOrders,
				toDTO: mapper.ToPurchaseOrderDTO,
				build: func(companyID uuid.UUID, req *domain.CreateDocumentRequest, date time.Time) *domain.PurchaseOrder {
					return &domain.PurchaseOrder{
						Number:     req.Number,
						CompanyID:  companyID,
						ProjectID:  req.ProjectID,
						VendorName: req.Counterparty,
						Amount:     req.Amount.Round(2),
						Status:     domain.DocumentStatusDraft,
						OrderDate:  date,
					}
				},
			},
			domain.DocumentKindVendorBill: &kindStore[domain.VendorBill]{
				kind:  domain.DocumentKindVendorBill,
				repo:  bills,
				toDTO: mapper.ToVendorBillDTO,
				build: func(companyID uuid.UUID, req *domain.CreateDocumentRequest, date time.Time) *domain.VendorBill {
					return &domain.VendorBill{
						Number:          req.Number,
						CompanyID:       companyID,
						ProjectID:       req.ProjectID,
						PurchaseOrderID: req.ParentID,
						VendorName:      req.Counterparty,
						Amount:          req.Amount.Round(2),
						Status:          domain.DocumentStatusDraft,
						BillDate:        date,
					}
				},
				parent: purchaseOrderExists,
			},
		},
		projectRepo: projectRepo,
		guard:       guard,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *DocumentService) store(kind domain.DocumentKind) (documentStore, error) {
	st, ok := s.stores[kind]
	if !ok {
		return nil, fmt.Errorf("unknown document kind %q: %w", kind, domain.ErrNotFound)
	}
	return st, nil
}

// Create stores a new Draft document. A linked project must belong to the principal's company.
func (s *DocumentService) Create(ctx context.Context, p *auth.UserContext, kind domain.DocumentKind, req *domain.CreateDocumentRequest) (*domain.DocumentDTO, error) {
	if err := s.guard.RequireRole(p, documentRoles...); err != nil {
		return nil, err
	}
	st, err := s.store(kind)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if req.ProjectID != nil {
		if _, err := s.projectRepo.GetByIDInCompany(ctx, p.CompanyID, *req.ProjectID); err != nil {
			return nil, notFoundOr(err, ErrProjectNotFound, "get project")
		}
	}

	dto, err := st.create(ctx, p.CompanyID, req, date)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		zap.String("kind", string(kind)),
		zap.String("document_id", dto.ID.String()),
		zap.String("number", dto.Number),
		zap.String("created_by", p.UserID.String()),
	)
	return &dto, nil
}

// List returns documents of a kind visible to the principal
func (s *DocumentService) List(ctx context.Context, p *auth.UserContext, kind domain.DocumentKind, projectID *uuid.UUID, status *domain.DocumentStatus, page, pageSize int) (*domain.PaginatedResponse, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	st, err := s.store(kind)
	if err != nil {
		return nil, err
	}
	if status != nil && !kind.IsValidStatus(*status) {
		return nil, ErrInvalidStatus
	}
	filter, err := scope.Documents(p, projectID, status)
	if err != nil {
		return nil, err
	}

	dtos, total, err := st.list(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	return paginate(dtos, total, page, pageSize), nil
}

// UpdateStatus moves a document one step forward in its lifecycle. Setting the
// current status again is a no-op.
func (s *DocumentService) UpdateStatus(ctx context.Context, p *auth.UserContext, kind domain.DocumentKind, id uuid.UUID, to domain.DocumentStatus) (*domain.DocumentDTO, error) {
	if err := s.guard.RequireRole(p, documentRoles...); err != nil {
		return nil, err
	}
	st, err := s.store(kind)
	if err != nil {
		return nil, err
	}
	if !kind.IsValidStatus(to) {
		return nil, ErrInvalidStatus
	}

	dto, err := st.transition(ctx, p.CompanyID, id, to)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document status changed",
		zap.String("kind", string(kind)),
		zap.String("document_id", id.String()),
		zap.String("status", string(to)),
		zap.String("changed_by", p.UserID.String()),
	)
	s.notifyProjectManager(ctx, dto)
	return &dto, nil
}

func (s *DocumentService) notifyProjectManager(ctx context.Context, dto domain.DocumentDTO) {
	if dto.ProjectID == nil {
		return
	}
	project, err := s.projectRepo.GetByIDInCompany(ctx, dto.CompanyID, *dto.ProjectID)
	if err != nil {
		s.logger.Warn("could not resolve project for document notification",
			zap.String("document_id", dto.ID.String()),
			zap.Error(err),
		)
		return
	}
	s.notifier.Notify(ctx, project.ProjectManagerID,
		"Document "+string(dto.Status),
		fmt.Sprintf("%s %s on %s is now %s", dto.Kind, dto.Number, project.Name, dto.Status),
		domain.NotificationTypeDocumentStatus,
		"/projects/"+project.ID.String(),
	)
}
