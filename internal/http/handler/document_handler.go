package handler

import (
	"net/http"

	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/service"
	"go.uber.org/zap"
)

// DocumentHandler serves one financial document kind. The router mounts one
// instance per kind.
type DocumentHandler struct {
	documentService *service.DocumentService
	kind            domain.DocumentKind
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, kind domain.DocumentKind, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		kind:            kind,
		logger:          logger.With(zap.String("kind", string(kind))),
	}
}

// List godoc
// @Summary List financial documents
// @Description Sales/finance and admins see the whole company, project managers their projects, team members their member projects
// @Tags Documents
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param projectId query string false "Filter by project" format(uuid)
// @Param status query string false "Filter by status" Enums(Draft, Sent, Confirmed, Paid, Billed, Submitted)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.DocumentDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /sales-orders [get]
// @Router /invoices [get]
// @Router /purchase-orders [get]
// @Router /vendor-bills [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	page, pageSize := pagination(r)

	projectID, ok := queryUUID(w, r, "projectId")
	if !ok {
		return
	}
	status := queryString[domain.DocumentStatus](r, "status")

	result, err := h.documentService.List(r.Context(), p, h.kind, projectID, status, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "list documents")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create financial document
// @Description Creates a Draft document. Invoices may reference a sales order and vendor bills a purchase order.
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body domain.CreateDocumentRequest true "Document data"
// @Success 201 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /sales-orders [post]
// @Router /invoices [post]
// @Router /purchase-orders [post]
// @Router /vendor-bills [post]
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	var req domain.CreateDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	doc, err := h.documentService.Create(r.Context(), p, h.kind, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create document")
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// UpdateStatus godoc
// @Summary Advance document status
// @Description Documents move one step forward through their lifecycle. Repeating the current status is a no-op.
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID" format(uuid)
// @Param request body domain.UpdateDocumentStatusRequest true "New status"
// @Success 200 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /sales-orders/{id}/status [put]
// @Router /invoices/{id}/status [put]
// @Router /purchase-orders/{id}/status [put]
// @Router /vendor-bills/{id}/status [put]
func (h *DocumentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateDocumentStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	doc, err := h.documentService.UpdateStatus(r.Context(), p, h.kind, id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "update document status")
		return
	}

	respondJSON(w, http.StatusOK, doc)
}
