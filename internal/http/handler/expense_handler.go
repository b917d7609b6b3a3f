package handler

import (
	"net/http"

	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"github.com/straye-as/project-ledger-api/internal/service"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	expenseService *service.ExpenseService
	logger         *zap.Logger
}

func NewExpenseHandler(expenseService *service.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// List godoc
// @Summary List expenses
// @Tags Expenses
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param userId query string false "Filter by submitter" format(uuid)
// @Param projectId query string false "Filter by project" format(uuid)
// @Param status query string false "Filter by status" Enums(Pending, Approved, Rejected, Reimbursed)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ExpenseDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /expenses [get]
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	page, pageSize := pagination(r)

	var q scope.ExpenseQuery
	var ok bool
	if q.UserID, ok = queryUUID(w, r, "userId"); !ok {
		return
	}
	if q.ProjectID, ok = queryUUID(w, r, "projectId"); !ok {
		return
	}
	q.Status = queryString[domain.ExpenseStatus](r, "status")
	if q.Status != nil && !q.Status.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	result, err := h.expenseService.List(r.Context(), p, q, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "list expenses")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Submit godoc
// @Summary Submit expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Param request body domain.CreateExpenseRequest true "Expense data"
// @Success 201 {object} domain.ExpenseDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /expenses [post]
func (h *ExpenseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	var req domain.CreateExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.expenseService.Submit(r.Context(), p, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "submit expense")
		return
	}

	respondJSON(w, http.StatusCreated, expense)
}

// UpdateStatus godoc
// @Summary Review expense
// @Description Approve, reject or reimburse an expense. The submitter is notified.
// @Tags Expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID" format(uuid)
// @Param request body domain.UpdateExpenseStatusRequest true "New status"
// @Success 200 {object} domain.ExpenseDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /expenses/{id}/status [put]
func (h *ExpenseHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateExpenseStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.expenseService.UpdateStatus(r.Context(), p, id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "update expense status")
		return
	}

	respondJSON(w, http.StatusOK, expense)
}
