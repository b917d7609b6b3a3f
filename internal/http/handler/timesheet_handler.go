package handler

import (
	"net/http"
	"time"

	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"github.com/straye-as/project-ledger-api/internal/service"
	"go.uber.org/zap"
)

type TimesheetHandler struct {
	timesheetService *service.TimesheetService
	logger           *zap.Logger
}

func NewTimesheetHandler(timesheetService *service.TimesheetService, logger *zap.Logger) *TimesheetHandler {
	return &TimesheetHandler{
		timesheetService: timesheetService,
		logger:           logger,
	}
}

// queryDate parses an optional YYYY-MM-DD query parameter as a UTC midnight
func queryDate(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.ParseInLocation(domain.DateLayout, raw, time.UTC)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid "+name+": expected YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}

// List godoc
// @Summary List timesheets
// @Description Team members see their own entries, project managers those of their projects
// @Tags Timesheets
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param projectId query string false "Filter by project" format(uuid)
// @Param taskId query string false "Filter by task" format(uuid)
// @Param userId query string false "Filter by user" format(uuid)
// @Param from query string false "First log date, inclusive" format(date)
// @Param to query string false "Last log date, inclusive" format(date)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.TimesheetDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /timesheets [get]
func (h *TimesheetHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	page, pageSize := pagination(r)

	var q scope.TimesheetQuery
	var ok bool
	if q.ProjectID, ok = queryUUID(w, r, "projectId"); !ok {
		return
	}
	if q.TaskID, ok = queryUUID(w, r, "taskId"); !ok {
		return
	}
	if q.UserID, ok = queryUUID(w, r, "userId"); !ok {
		return
	}
	if q.From, ok = queryDate(w, r, "from"); !ok {
		return
	}
	if q.To, ok = queryDate(w, r, "to"); !ok {
		return
	}
	if q.To != nil {
		end := q.To.AddDate(0, 0, 1)
		q.To = &end
	}
	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		respondWithError(w, http.StatusBadRequest, "from must not be after to")
		return
	}

	result, err := h.timesheetService.List(r.Context(), p, q, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "list timesheets")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Log time
// @Description Cost is fixed at creation from the user's current hourly rate
// @Tags Timesheets
// @Accept json
// @Produce json
// @Param request body domain.CreateTimesheetRequest true "Timesheet data"
// @Success 201 {object} domain.TimesheetDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /timesheets [post]
func (h *TimesheetHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	var req domain.CreateTimesheetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	timesheet, err := h.timesheetService.Create(r.Context(), p, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create timesheet")
		return
	}

	respondJSON(w, http.StatusCreated, timesheet)
}

// Update godoc
// @Summary Update timesheet
// @Description Changing hours recomputes cost with the owner's current hourly rate
// @Tags Timesheets
// @Accept json
// @Produce json
// @Param id path string true "Timesheet ID" format(uuid)
// @Param request body domain.UpdateTimesheetRequest true "Fields to change"
// @Success 200 {object} domain.TimesheetDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /timesheets/{id} [put]
func (h *TimesheetHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateTimesheetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	timesheet, err := h.timesheetService.Update(r.Context(), p, id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update timesheet")
		return
	}

	respondJSON(w, http.StatusOK, timesheet)
}

// Delete godoc
// @Summary Delete timesheet
// @Tags Timesheets
// @Param id path string true "Timesheet ID" format(uuid)
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /timesheets/{id} [delete]
func (h *TimesheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.timesheetService.Delete(r.Context(), p, id); err != nil {
		respondServiceError(w, h.logger, err, "delete timesheet")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
