package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/config"
	"github.com/straye-as/project-ledger-api/internal/database"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/http/handler"
	"github.com/straye-as/project-ledger-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/straye-as/project-ledger-api/docs" // Import generated swagger docs
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Auth           *handler.AuthHandler
	Users          *handler.UserHandler
	Projects       *handler.ProjectHandler
	Tasks          *handler.TaskHandler
	Timesheets     *handler.TimesheetHandler
	Expenses       *handler.ExpenseHandler
	SalesOrders    *handler.DocumentHandler
	Invoices       *handler.DocumentHandler
	PurchaseOrders *handler.DocumentHandler
	VendorBills    *handler.DocumentHandler
	Notifications  *handler.NotificationHandler
	Dashboard      *handler.DashboardHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, domain.APIError{
			Type:   domain.ErrorTypeNotFound,
			Title:  http.StatusText(http.StatusNotFound),
			Status: http.StatusNotFound,
			Detail: "Route not found",
		})
	})

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats":   stats,
		})
	})

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	h := rt.handlers
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Auth.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.LimitByUser)

			r.Get("/auth/me", h.Auth.Me)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.Users.List)
				r.Post("/", h.Users.Create)
				r.Put("/{id}/rate", h.Users.UpdateHourlyRate)
				r.Put("/{id}/active", h.Users.SetActive)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", h.Projects.List)
				r.Post("/", h.Projects.Create)
				r.Get("/{id}", h.Projects.GetByID)
				r.Put("/{id}", h.Projects.Update)
				r.Delete("/{id}", h.Projects.Delete)
				r.Get("/{id}/financials", h.Projects.Financials)
				r.Get("/{id}/members", h.Projects.ListMembers)
				r.Post("/{id}/members", h.Projects.AddMember)
				r.Delete("/{id}/members/{userId}", h.Projects.RemoveMember)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.Tasks.List)
				r.Post("/", h.Tasks.Create)
				r.Put("/{id}", h.Tasks.Update)
				r.Delete("/{id}", h.Tasks.Delete)
			})

			r.Route("/timesheets", func(r chi.Router) {
				r.Get("/", h.Timesheets.List)
				r.Post("/", h.Timesheets.Create)
				r.Put("/{id}", h.Timesheets.Update)
				r.Delete("/{id}", h.Timesheets.Delete)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", h.Expenses.List)
				r.Post("/", h.Expenses.Submit)
				r.Put("/{id}/status", h.Expenses.UpdateStatus)
			})

			mountDocuments(r, "/sales-orders", h.SalesOrders)
			mountDocuments(r, "/invoices", h.Invoices)
			mountDocuments(r, "/purchase-orders", h.PurchaseOrders)
			mountDocuments(r, "/vendor-bills", h.VendorBills)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notifications.List)
				r.Put("/read-all", h.Notifications.MarkAllAsRead)
				r.Put("/{id}/read", h.Notifications.MarkAsRead)
			})

			r.Get("/dashboard", h.Dashboard.GetDashboard)
			r.Get("/analytics", h.Dashboard.GetAnalytics)
		})
	})

	return r
}

func mountDocuments(r chi.Router, pattern string, h *handler.DocumentHandler) {
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}/status", h.UpdateStatus)
	})
}
