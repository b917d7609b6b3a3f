package service_test

import (
	"testing"

	"github.com/straye-as/project-ledger-api/internal/repository"
	"github.com/straye-as/project-ledger-api/internal/service"
	"github.com/straye-as/project-ledger-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// services wires every service against one sqlite database
type services struct {
	db         *gorm.DB
	sink       *testutil.RecordingSink
	users      *repository.UserRepository
	projects   *repository.ProjectRepository
	tasks      *repository.TaskRepository
	timesheets *repository.TimesheetRepository
	expenses   *repository.ExpenseRepository

	guard        *service.Guard
	financials   *service.FinancialService
	userSvc      *service.UserService
	projectSvc   *service.ProjectService
	taskSvc      *service.TaskService
	timesheetSvc *service.TimesheetService
	expenseSvc   *service.ExpenseService
	documentSvc  *service.DocumentService
	dashboardSvc *service.DashboardService
}

func setupServices(t *testing.T) *services {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sink := &testutil.RecordingSink{}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	timesheetRepo := repository.NewTimesheetRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	salesOrderRepo := repository.NewSalesOrderRepository(db)
	invoiceRepo := repository.NewCustomerInvoiceRepository(db)
	purchaseOrderRepo := repository.NewPurchaseOrderRepository(db)
	billRepo := repository.NewVendorBillRepository(db)

	guard := service.NewGuard(projectRepo)
	financials := service.NewFinancialService(invoiceRepo, billRepo, expenseRepo, timesheetRepo, logger)

	return &services{
		db:         db,
		sink:       sink,
		users:      userRepo,
		projects:   projectRepo,
		tasks:      taskRepo,
		timesheets: timesheetRepo,
		expenses:   expenseRepo,

		guard:        guard,
		financials:   financials,
		userSvc:      service.NewUserService(userRepo, guard, logger),
		projectSvc:   service.NewProjectService(projectRepo, userRepo, financials, guard, sink, logger),
		taskSvc:      service.NewTaskService(taskRepo, userRepo, guard, sink, logger),
		timesheetSvc: service.NewTimesheetService(timesheetRepo, taskRepo, userRepo, guard, logger),
		expenseSvc:   service.NewExpenseService(expenseRepo, guard, sink, logger),
		documentSvc: service.NewDocumentService(salesOrderRepo, invoiceRepo, purchaseOrderRepo, billRepo,
			projectRepo, guard, sink, logger),
		dashboardSvc: service.NewDashboardService(projectRepo, taskRepo, timesheetRepo, expenseRepo,
			salesOrderRepo, invoiceRepo, userRepo, financials, service.DashboardOptions{}, logger),
	}
}
