package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/straye-as/project-ledger-api/docs"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/config"
	"github.com/straye-as/project-ledger-api/internal/database"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/http/handler"
	"github.com/straye-as/project-ledger-api/internal/http/middleware"
	"github.com/straye-as/project-ledger-api/internal/http/router"
	"github.com/straye-as/project-ledger-api/internal/jobs"
	"github.com/straye-as/project-ledger-api/internal/logger"
	"github.com/straye-as/project-ledger-api/internal/notify"
	"github.com/straye-as/project-ledger-api/internal/repository"
	"github.com/straye-as/project-ledger-api/internal/service"
	"go.uber.org/zap"
)

// @title Project Ledger API
// @version 1.0
// @description Project, time and financial ledger API with role-scoped dashboards

// @contact.name API Support
// @contact.email support@straye.io

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

const (
	notificationBuffer     = 256
	overdueReminderTimeout = 5 * time.Minute
	shutdownTimeout        = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	if host := os.Getenv("SWAGGER_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	}

	// In development secrets come from the environment, in staging/production from Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, cfg.App.Environment)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		log.Info("Database schema auto-migrated")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	timesheetRepo := repository.NewTimesheetRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	salesOrderRepo := repository.NewSalesOrderRepository(db)
	invoiceRepo := repository.NewCustomerInvoiceRepository(db)
	purchaseOrderRepo := repository.NewPurchaseOrderRepository(db)
	vendorBillRepo := repository.NewVendorBillRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Notifications are stored, and pushed to Redis subscribers when enabled
	deliverers := []notify.Deliverer{notify.NewStoreDeliverer(notificationRepo)}
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn("Redis unavailable, continuing without real-time notifications", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			deliverers = append(deliverers, notify.NewRedisDeliverer(redisClient, cfg.Redis.Channel))
			log.Info("Redis notification channel enabled", zap.String("channel", cfg.Redis.Channel))
		}
	}
	dispatcher := notify.NewDispatcher(log, notificationBuffer, deliverers...)

	// Services
	tokens := auth.NewTokenService(&cfg.Auth)
	guard := service.NewGuard(projectRepo)
	financials := service.NewFinancialService(invoiceRepo, vendorBillRepo, expenseRepo, timesheetRepo, log)

	authService := service.NewAuthService(userRepo, companyRepo, tokens, log)
	userService := service.NewUserService(userRepo, guard, log)
	projectService := service.NewProjectService(projectRepo, userRepo, financials, guard, dispatcher, log)
	taskService := service.NewTaskService(taskRepo, userRepo, guard, dispatcher, log)
	timesheetService := service.NewTimesheetService(timesheetRepo, taskRepo, userRepo, guard, log)
	expenseService := service.NewExpenseService(expenseRepo, guard, dispatcher, log)
	documentService := service.NewDocumentService(salesOrderRepo, invoiceRepo, purchaseOrderRepo, vendorBillRepo, projectRepo, guard, dispatcher, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	dashboardService := service.NewDashboardService(
		projectRepo, taskRepo, timesheetRepo, expenseRepo, salesOrderRepo, invoiceRepo, userRepo, financials,
		service.DashboardOptions{
			RevenueWindowDays: cfg.Dashboard.RevenueWindowDays,
			TopProjects:       cfg.Dashboard.TopProjects,
		},
		log,
	)

	// Middleware
	authMiddleware := auth.NewMiddleware(tokens, userRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(cfg, log, db, authMiddleware, rateLimiter, router.Handlers{
		Auth:           handler.NewAuthHandler(authService, log),
		Users:          handler.NewUserHandler(userService, log),
		Projects:       handler.NewProjectHandler(projectService, log),
		Tasks:          handler.NewTaskHandler(taskService, log),
		Timesheets:     handler.NewTimesheetHandler(timesheetService, log),
		Expenses:       handler.NewExpenseHandler(expenseService, log),
		SalesOrders:    handler.NewDocumentHandler(documentService, domain.DocumentKindSalesOrder, log),
		Invoices:       handler.NewDocumentHandler(documentService, domain.DocumentKindCustomerInvoice, log),
		PurchaseOrders: handler.NewDocumentHandler(documentService, domain.DocumentKindPurchaseOrder, log),
		VendorBills:    handler.NewDocumentHandler(documentService, domain.DocumentKindVendorBill, log),
		Notifications:  handler.NewNotificationHandler(notificationService, log),
		Dashboard:      handler.NewDashboardHandler(dashboardService, log),
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		reminder := jobs.NewOverdueReminderJob(taskRepo, notificationRepo, dispatcher, log, overdueReminderTimeout)
		if err := scheduler.AddJob(cfg.Jobs.OverdueReminderCron, reminder); err != nil {
			log.Error("Failed to register overdue reminder job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
		}
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      http.TimeoutHandler(rt.Setup(), cfg.Server.RequestTimeoutDuration(), "request timed out"),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Drain queued notifications after the last request has finished
		if err := dispatcher.Close(ctx); err != nil {
			log.Warn("Notifications still queued at shutdown", zap.Error(err))
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Warn("Error closing redis client", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
