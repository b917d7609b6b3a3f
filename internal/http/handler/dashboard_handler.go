package handler

import (
	"net/http"

	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// GetDashboard godoc
// @Summary Get dashboard
// @Description Role-dependent KPIs. Admins and sales/finance get company figures, project managers their projects, team members personal figures.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardDTO
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	dashboard, err := h.dashboardService.GetDashboard(r.Context(), p)
	if err != nil {
		respondServiceError(w, h.logger, err, "get dashboard")
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}

// GetAnalytics godoc
// @Summary Get analytics
// @Description Hours, cost and task throughput over a date range. Project managers may target themselves or teammates only.
// @Tags Dashboard
// @Produce json
// @Param userId query string false "Target user" format(uuid)
// @Param range query string false "Date range" Enums(last7Days, last30Days, last90Days, thisMonth, thisYear, allTime) default(last30Days)
// @Success 200 {object} domain.AnalyticsDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /analytics [get]
func (h *DashboardHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	userID, ok := queryUUID(w, r, "userId")
	if !ok {
		return
	}
	dateRange := domain.DateRange(r.URL.Query().Get("range"))

	analytics, err := h.dashboardService.Analytics(r.Context(), p, userID, dateRange)
	if err != nil {
		respondServiceError(w, h.logger, err, "get analytics")
		return
	}

	respondJSON(w, http.StatusOK, analytics)
}
