package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/repository"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DashboardOptions tune the dashboard
type DashboardOptions struct {
	// RevenueWindowDays is the trailing window for billed revenue and personal hours
	RevenueWindowDays int
	// TopProjects caps how many projects get a financial summary
	TopProjects int
}

// DashboardService compiles role-specific KPIs and analytics from the scoped
// filters and the financial aggregator
type DashboardService struct {
	projectRepo    *repository.ProjectRepository
	taskRepo       *repository.TaskRepository
	timesheetRepo  *repository.TimesheetRepository
	expenseRepo    *repository.ExpenseRepository
	salesOrderRepo *repository.DocumentRepository[domain.SalesOrder]
	invoiceRepo    *repository.DocumentRepository[domain.CustomerInvoice]
	userRepo       *repository.UserRepository
	financials     *FinancialService
	opts           DashboardOptions
	logger         *zap.Logger
	now            func() time.Time
}

func NewDashboardService(
	projectRepo *repository.ProjectRepository,
	taskRepo *repository.TaskRepository,
	timesheetRepo *repository.TimesheetRepository,
	expenseRepo *repository.ExpenseRepository,
	salesOrderRepo *repository.DocumentRepository[domain.SalesOrder],
	invoiceRepo *repository.DocumentRepository[domain.CustomerInvoice],
	userRepo *repository.UserRepository,
	financials *FinancialService,
	opts DashboardOptions,
	logger *zap.Logger,
) *DashboardService {
	if opts.RevenueWindowDays <= 0 {
		opts.RevenueWindowDays = 30
	}
	if opts.TopProjects <= 0 {
		opts.TopProjects = 10
	}
	return &DashboardService{
		projectRepo:    projectRepo,
		taskRepo:       taskRepo,
		timesheetRepo:  timesheetRepo,
		expenseRepo:    expenseRepo,
		salesOrderRepo: salesOrderRepo,
		invoiceRepo:    invoiceRepo,
		userRepo:       userRepo,
		financials:     financials,
		opts:           opts,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// GetDashboard returns the KPI set matching the principal's role
func (s *DashboardService) GetDashboard(ctx context.Context, p *auth.UserContext) (*domain.DashboardDTO, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	dashboardScope, projects, err := scope.Dashboard(p)
	if err != nil {
		return nil, err
	}

	now := s.now()
	windowStart := now.AddDate(0, 0, -s.opts.RevenueWindowDays)
	dto := &domain.DashboardDTO{
		Role:      p.Role,
		Scope:     dashboardScope,
		Generated: now.Format("2006-01-02T15:04:05Z"),
	}

	switch dashboardScope {
	case domain.DashboardScopeCompany, domain.DashboardScopeManaged:
		overview, err := s.overview(ctx, p, dashboardScope, projects, now, windowStart)
		if err != nil {
			return nil, err
		}
		dto.Overview = overview

		dto.Projects, err = s.topProjects(ctx, projects)
		if err != nil {
			return nil, err
		}
	case domain.DashboardScopePersonal:
		personal, err := s.personal(ctx, p, now, windowStart)
		if err != nil {
			return nil, err
		}
		dto.Personal = personal
	}

	return dto, nil
}

func (s *DashboardService) overview(ctx context.Context, p *auth.UserContext, dashboardScope domain.DashboardScope, projects scope.ProjectFilter, now, windowStart time.Time) (*domain.OverviewKPIs, error) {
	docs := scope.DocumentFilter{CompanyID: p.CompanyID}
	if dashboardScope == domain.DashboardScopeManaged {
		docs.Projects = &projects
	}
	tasks := scope.TaskFilter{Projects: projects}

	kpis := &domain.OverviewKPIs{
		RevenueWindowDays:     s.opts.RevenueWindowDays,
		RevenueWindowStartsAt: windowStart.Format(domain.DateLayout),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		active := projects
		status := domain.ProjectStatusInProgress
		active.Status = &status
		n, err := s.projectRepo.Count(gctx, active)
		if err != nil {
			return fmt.Errorf("failed to count active projects: %w", err)
		}
		kpis.ActiveProjects = n
		return nil
	})
	g.Go(func() error {
		n, err := s.taskRepo.CountOverdue(gctx, tasks, now)
		if err != nil {
			return fmt.Errorf("failed to count overdue tasks: %w", err)
		}
		kpis.OverdueTasks = n
		return nil
	})
	g.Go(func() error {
		sum, err := s.invoiceRepo.SumByStatus(gctx, docs, domain.RevenueInvoiceStatuses, windowStart)
		if err != nil {
			return fmt.Errorf("failed to sum billed revenue: %w", err)
		}
		kpis.RevenueBilled = sum.Round(2)
		return nil
	})
	g.Go(func() error {
		var n int64
		var err error
		if dashboardScope == domain.DashboardScopeManaged {
			n, err = s.expenseRepo.CountPendingInProjects(gctx, projects)
		} else {
			n, err = s.expenseRepo.CountByStatus(gctx, scope.ExpenseFilter{CompanyID: p.CompanyID}, domain.ExpenseStatusPending)
		}
		if err != nil {
			return fmt.Errorf("failed to count pending expenses: %w", err)
		}
		kpis.PendingExpenses = n
		return nil
	})
	g.Go(func() error {
		open := []domain.DocumentStatus{domain.DocumentStatusDraft, domain.DocumentStatusConfirmed}
		n, err := s.salesOrderRepo.CountByStatus(gctx, docs, open)
		if err != nil {
			return fmt.Errorf("failed to count open sales orders: %w", err)
		}
		kpis.OpenSalesOrders = n
		return nil
	})
	g.Go(func() error {
		unpaid := []domain.DocumentStatus{domain.DocumentStatusSent}
		n, err := s.invoiceRepo.CountByStatus(gctx, docs, unpaid)
		if err != nil {
			return fmt.Errorf("failed to count unpaid invoices: %w", err)
		}
		sum, err := s.invoiceRepo.SumByStatus(gctx, docs, unpaid, time.Time{})
		if err != nil {
			return fmt.Errorf("failed to sum unpaid invoices: %w", err)
		}
		kpis.UnpaidInvoices = n
		kpis.UnpaidInvoicesAmount = sum.Round(2)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return kpis, nil
}

func (s *DashboardService) personal(ctx context.Context, p *auth.UserContext, now, windowStart time.Time) (*domain.PersonalKPIs, error) {
	self := p.UserID
	// Own work stays countable after leaving a project, so only company isolation applies.
	company := scope.ProjectFilter{CompanyID: p.CompanyID, Visibility: scope.VisibilityCompany}
	own := scope.TaskFilter{Projects: company, AssigneeID: &self}

	kpis := &domain.PersonalKPIs{WindowDays: s.opts.RevenueWindowDays}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.taskRepo.CountOpen(gctx, own)
		if err != nil {
			return fmt.Errorf("failed to count open tasks: %w", err)
		}
		kpis.OpenTasks = n
		return nil
	})
	g.Go(func() error {
		totals, err := s.timesheetRepo.Totals(gctx, scope.TimesheetFilter{Projects: company, UserID: &self, From: &windowStart})
		if err != nil {
			return fmt.Errorf("failed to sum logged hours: %w", err)
		}
		kpis.HoursLogged = totals.Hours
		return nil
	})
	g.Go(func() error {
		n, err := s.taskRepo.CountOverdue(gctx, own, now)
		if err != nil {
			return fmt.Errorf("failed to count overdue tasks: %w", err)
		}
		kpis.OverdueTasks = n
		return nil
	})
	g.Go(func() error {
		n, err := s.expenseRepo.CountByStatus(gctx, scope.ExpenseFilter{CompanyID: p.CompanyID, UserID: &self}, domain.ExpenseStatusPending)
		if err != nil {
			return fmt.Errorf("failed to count pending expenses: %w", err)
		}
		kpis.PendingExpenses = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return kpis, nil
}

func (s *DashboardService) topProjects(ctx context.Context, projects scope.ProjectFilter) ([]domain.ProjectFinancials, error) {
	visible, err := s.projectRepo.ListAll(ctx, projects)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if len(visible) > s.opts.TopProjects {
		visible = visible[:s.opts.TopProjects]
	}
	ids := make([]uuid.UUID, len(visible))
	for i := range visible {
		ids[i] = visible[i].ID
	}
	return s.financials.ProjectsFinancials(ctx, ids), nil
}
