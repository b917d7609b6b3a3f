package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var hundred = decimal.NewFromInt(100)

// DocumentSumSource sums a project's documents in the given statuses
type DocumentSumSource interface {
	SumByProject(ctx context.Context, projectID uuid.UUID, statuses []domain.DocumentStatus) (decimal.Decimal, error)
}

// CostSumSource sums one cost source of a project
type CostSumSource interface {
	SumCostByProject(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error)
}

// FinancialService derives project revenue, cost, profit and margin from the
// linked documents, expenses and timesheets. Figures are recomputed on every
// call. A failing source counts as zero: summaries are advisory display data.
type FinancialService struct {
	invoices   DocumentSumSource
	bills      DocumentSumSource
	expenses   CostSumSource
	timesheets CostSumSource
	logger     *zap.Logger
}

func NewFinancialService(
	invoices DocumentSumSource,
	bills DocumentSumSource,
	expenses CostSumSource,
	timesheets CostSumSource,
	logger *zap.Logger,
) *FinancialService {
	return &FinancialService{
		invoices:   invoices,
		bills:      bills,
		expenses:   expenses,
		timesheets: timesheets,
		logger:     logger,
	}
}

// TimesheetCost is hours times rate, rounded to cents
func TimesheetCost(hours, rate decimal.Decimal) decimal.Decimal {
	return hours.Mul(rate).Round(2)
}

// ComputeFinancials combines revenue and cost into the financial summary.
// The margin is profit/revenue*100 rounded to 2 decimals, and exactly 0 when
// revenue is 0.
func ComputeFinancials(projectID uuid.UUID, revenue, cost decimal.Decimal) domain.ProjectFinancials {
	revenue = revenue.Round(2)
	cost = cost.Round(2)
	profit := revenue.Sub(cost)

	margin := decimal.Zero
	if !revenue.IsZero() {
		margin = profit.Div(revenue).Mul(hundred).Round(2)
	}

	return domain.ProjectFinancials{
		ProjectID:    projectID,
		Revenue:      revenue,
		Cost:         cost,
		Profit:       profit,
		ProfitMargin: margin,
	}
}

// ProjectRevenue sums Sent and Paid customer invoices of the project
func (s *FinancialService) ProjectRevenue(ctx context.Context, projectID uuid.UUID) decimal.Decimal {
	revenue, err := s.invoices.SumByProject(ctx, projectID, domain.RevenueInvoiceStatuses)
	if err != nil {
		s.logSourceFailure(projectID, "invoices", err)
		return decimal.Zero
	}
	return revenue
}

// ProjectCost sums vendor bills, expenses and timesheet cost of the project
func (s *FinancialService) ProjectCost(ctx context.Context, projectID uuid.UUID) decimal.Decimal {
	var bills, expenses, timesheets decimal.Decimal
	g, gctx := errgroup.WithContext(ctx)
	s.collectCost(gctx, g, projectID, &bills, &expenses, &timesheets)
	_ = g.Wait()
	return bills.Add(expenses).Add(timesheets)
}

// ProjectFinancials computes the full summary. The four sub-sums run concurrently.
func (s *FinancialService) ProjectFinancials(ctx context.Context, projectID uuid.UUID) domain.ProjectFinancials {
	var revenue, bills, expenses, timesheets decimal.Decimal

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		revenue = s.ProjectRevenue(gctx, projectID)
		return nil
	})
	s.collectCost(gctx, g, projectID, &bills, &expenses, &timesheets)
	_ = g.Wait()

	return ComputeFinancials(projectID, revenue, bills.Add(expenses).Add(timesheets))
}

// ProjectsFinancials computes summaries for several projects, preserving order
func (s *FinancialService) ProjectsFinancials(ctx context.Context, projectIDs []uuid.UUID) []domain.ProjectFinancials {
	results := make([]domain.ProjectFinancials, len(projectIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range projectIDs {
		g.Go(func() error {
			results[i] = s.ProjectFinancials(gctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *FinancialService) collectCost(ctx context.Context, g *errgroup.Group, projectID uuid.UUID, bills, expenses, timesheets *decimal.Decimal) {
	g.Go(func() error {
		*bills = s.sumOrZero(projectID, "vendor_bills", func() (decimal.Decimal, error) {
			return s.bills.SumByProject(ctx, projectID, domain.CostBillStatuses)
		})
		return nil
	})
	g.Go(func() error {
		*expenses = s.sumOrZero(projectID, "expenses", func() (decimal.Decimal, error) {
			return s.expenses.SumCostByProject(ctx, projectID)
		})
		return nil
	})
	g.Go(func() error {
		*timesheets = s.sumOrZero(projectID, "timesheets", func() (decimal.Decimal, error) {
			return s.timesheets.SumCostByProject(ctx, projectID)
		})
		return nil
	})
}

func (s *FinancialService) sumOrZero(projectID uuid.UUID, source string, sum func() (decimal.Decimal, error)) decimal.Decimal {
	v, err := sum()
	if err != nil {
		s.logSourceFailure(projectID, source, err)
		return decimal.Zero
	}
	return v
}

func (s *FinancialService) logSourceFailure(projectID uuid.UUID, source string, err error) {
	s.logger.Warn("financial source unavailable, counting as zero",
		zap.String("project_id", projectID.String()),
		zap.String("source", source),
		zap.Error(err),
	)
}
