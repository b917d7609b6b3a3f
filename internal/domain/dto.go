package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

type CompanyDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Country  string    `json:"country,omitempty"`
	Currency string    `json:"currency"`
	IsActive bool      `json:"isActive"`
}

type UserDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Role           UserRole        `json:"role"`
	HourlyRate     decimal.Decimal `json:"hourlyRate"`
	CompanyID      *uuid.UUID      `json:"companyId,omitempty"`
	CanManageUsers bool            `json:"canManageUsers"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      string          `json:"createdAt"` // ISO 8601
}

type ProjectDTO struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Status           ProjectStatus   `json:"status"`
	CompanyID        uuid.UUID       `json:"companyId"`
	ProjectManagerID uuid.UUID       `json:"projectManagerId"`
	ProjectManager   string          `json:"projectManagerName,omitempty"`
	Budget           decimal.Decimal `json:"budget"`
	StartDate        *string         `json:"startDate,omitempty"`
	EndDate          *string         `json:"endDate,omitempty"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
}

type ProjectMemberDTO struct {
	ProjectID uuid.UUID `json:"projectId"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
}

// ProjectFinancials is the derived financial summary of a project
type ProjectFinancials struct {
	ProjectID    uuid.UUID       `json:"projectId"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
	Profit       decimal.Decimal `json:"profit"`
	ProfitMargin decimal.Decimal `json:"profitMargin"`
}

type TaskDTO struct {
	ID          uuid.UUID    `json:"id"`
	ProjectID   uuid.UUID    `json:"projectId"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	AssigneeID  *uuid.UUID   `json:"assigneeId,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *string      `json:"dueDate,omitempty"`
	IsOverdue   bool         `json:"isOverdue"`
	CreatedAt   string       `json:"createdAt"`
}

type TimesheetDTO struct {
	ID          uuid.UUID       `json:"id"`
	TaskID      uuid.UUID       `json:"taskId"`
	UserID      uuid.UUID       `json:"userId"`
	HoursLogged decimal.Decimal `json:"hoursLogged"`
	LogDate     string          `json:"logDate"`
	Description string          `json:"description,omitempty"`
	IsBillable  bool            `json:"isBillable"`
	Cost        decimal.Decimal `json:"cost"`
	CreatedAt   string          `json:"createdAt"`
}

type ExpenseDTO struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"userId"`
	ProjectID    *uuid.UUID      `json:"projectId,omitempty"`
	Description  string          `json:"description"`
	Category     string          `json:"category,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Status       ExpenseStatus   `json:"status"`
	IsBillable   bool            `json:"isBillable"`
	ExpenseDate  string          `json:"expenseDate"`
	ReviewedByID *uuid.UUID      `json:"reviewedById,omitempty"`
	CreatedAt    string          `json:"createdAt"`
}

// DocumentDTO is the shared response shape of the four financial document kinds
type DocumentDTO struct {
	ID           uuid.UUID       `json:"id"`
	Kind         DocumentKind    `json:"kind"`
	Number       string          `json:"number"`
	CompanyID    uuid.UUID       `json:"companyId"`
	ProjectID    *uuid.UUID      `json:"projectId,omitempty"`
	ParentID     *uuid.UUID      `json:"parentId,omitempty"` // sales order of an invoice, purchase order of a bill
	Counterparty string          `json:"counterparty"`
	Amount       decimal.Decimal `json:"amount"`
	Status       DocumentStatus  `json:"status"`
	Date         string          `json:"date"`
	CreatedAt    string          `json:"createdAt"`
}

type NotificationDTO struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt string    `json:"createdAt"`
}

// PaginatedResponse wraps list endpoints
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Dashboard DTOs

// DashboardScope tells the client which KPI set a dashboard holds
type DashboardScope string

const (
	DashboardScopeCompany  DashboardScope = "company"
	DashboardScopeManaged  DashboardScope = "managed"
	DashboardScopePersonal DashboardScope = "personal"
)

// OverviewKPIs are the company-wide (or managed-projects) indicators
type OverviewKPIs struct {
	ActiveProjects        int64           `json:"activeProjects"`
	OverdueTasks          int64           `json:"overdueTasks"`
	RevenueBilled         decimal.Decimal `json:"revenueBilled"`
	PendingExpenses       int64           `json:"pendingExpenses"`
	OpenSalesOrders       int64           `json:"openSalesOrders"`
	UnpaidInvoices        int64           `json:"unpaidInvoices"`
	UnpaidInvoicesAmount  decimal.Decimal `json:"unpaidInvoicesAmount"`
	RevenueWindowDays     int             `json:"revenueWindowDays"`
	RevenueWindowStartsAt string          `json:"revenueWindowStartsAt"`
}

// PersonalKPIs are the indicators shown to a team member
type PersonalKPIs struct {
	OpenTasks       int64           `json:"openTasks"`
	HoursLogged     decimal.Decimal `json:"hoursLogged"`
	OverdueTasks    int64           `json:"overdueTasks"`
	PendingExpenses int64           `json:"pendingExpenses"`
	WindowDays      int             `json:"windowDays"`
}

type DashboardDTO struct {
	Role      UserRole            `json:"role"`
	Scope     DashboardScope      `json:"scope"`
	Overview  *OverviewKPIs       `json:"overview,omitempty"`
	Personal  *PersonalKPIs       `json:"personal,omitempty"`
	Projects  []ProjectFinancials `json:"projects,omitempty"`
	Generated string              `json:"generatedAt"`
}

// DateRange is the analytics period selector
type DateRange string

const (
	DateRangeLast7Days  DateRange = "last7Days"
	DateRangeLast30Days DateRange = "last30Days"
	DateRangeLast90Days DateRange = "last90Days"
	DateRangeThisMonth  DateRange = "thisMonth"
	DateRangeThisYear   DateRange = "thisYear"
	DateRangeAllTime    DateRange = "allTime"
)

// IsValid checks if the DateRange is a valid enum value
func (r DateRange) IsValid() bool {
	switch r {
	case DateRangeLast7Days, DateRangeLast30Days, DateRangeLast90Days,
		DateRangeThisMonth, DateRangeThisYear, DateRangeAllTime:
		return true
	}
	return false
}

// Start returns the inclusive lower bound of the range relative to now.
// The zero time means no lower bound.
func (r DateRange) Start(now time.Time) time.Time {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch r {
	case DateRangeLast7Days:
		return today.AddDate(0, 0, -7)
	case DateRangeLast30Days:
		return today.AddDate(0, 0, -30)
	case DateRangeLast90Days:
		return today.AddDate(0, 0, -90)
	case DateRangeThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	case DateRangeThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

// ProjectHours is one row of the per-project analytics breakdown
type ProjectHours struct {
	ProjectID   uuid.UUID       `json:"projectId"`
	ProjectName string          `json:"projectName"`
	Hours       decimal.Decimal `json:"hours"`
	Cost        decimal.Decimal `json:"cost"`
}

// DailyHours is one point of the analytics time series
type DailyHours struct {
	Date  string          `json:"date"`
	Hours decimal.Decimal `json:"hours"`
}

type AnalyticsDTO struct {
	TargetUserID  *uuid.UUID      `json:"targetUserId,omitempty"`
	Range         DateRange       `json:"range"`
	From          *string         `json:"from,omitempty"`
	ProjectCount  int             `json:"projectCount"`
	TotalHours    decimal.Decimal `json:"totalHours"`
	BillableHours decimal.Decimal `json:"billableHours"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	TasksDone     int64           `json:"tasksDone"`
	TasksOverdue  int64           `json:"tasksOverdue"`
	ByProject     []ProjectHours  `json:"byProject"`
	ByDay         []DailyHours    `json:"byDay"`
}

// Request DTOs

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"`
	User      UserDTO `json:"user"`
}

type CreateUserRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Email          string          `json:"email" validate:"required,email,max=255"`
	Password       string          `json:"password" validate:"required,min=8,max=72"`
	Role           UserRole        `json:"role" validate:"required"`
	HourlyRate     decimal.Decimal `json:"hourlyRate"`
	CanManageUsers bool            `json:"canManageUsers"`
}

type UpdateHourlyRateRequest struct {
	HourlyRate decimal.Decimal `json:"hourlyRate"`
}

type UpdateUserActiveRequest struct {
	IsActive bool `json:"isActive"`
}

type CreateProjectRequest struct {
	Name             string          `json:"name" validate:"required,max=200"`
	Description      string          `json:"description"`
	Status           ProjectStatus   `json:"status"`
	ProjectManagerID *uuid.UUID      `json:"projectManagerId"`
	Budget           decimal.Decimal `json:"budget"`
	StartDate        *string         `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate          *string         `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateProjectRequest struct {
	Name             *string          `json:"name" validate:"omitempty,max=200"`
	Description      *string          `json:"description"`
	Status           *ProjectStatus   `json:"status"`
	ProjectManagerID *uuid.UUID       `json:"projectManagerId"`
	Budget           *decimal.Decimal `json:"budget"`
}

type AddProjectMemberRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

type CreateTaskRequest struct {
	ProjectID   uuid.UUID    `json:"projectId" validate:"required"`
	Title       string       `json:"title" validate:"required,max=200"`
	Description string       `json:"description"`
	AssigneeID  *uuid.UUID   `json:"assigneeId"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate"`
}

type UpdateTaskRequest struct {
	Title       *string       `json:"title" validate:"omitempty,max=200"`
	Description *string       `json:"description"`
	AssigneeID  *uuid.UUID    `json:"assigneeId"`
	Status      *TaskStatus   `json:"status"`
	Priority    *TaskPriority `json:"priority"`
	DueDate     *time.Time    `json:"dueDate"`
}

type CreateTimesheetRequest struct {
	TaskID      uuid.UUID       `json:"taskId" validate:"required"`
	HoursLogged decimal.Decimal `json:"hoursLogged"`
	LogDate     string          `json:"logDate" validate:"required,datetime=2006-01-02"`
	Description string          `json:"description"`
	IsBillable  *bool           `json:"isBillable"`
}

type UpdateTimesheetRequest struct {
	HoursLogged *decimal.Decimal `json:"hoursLogged"`
	LogDate     *string          `json:"logDate" validate:"omitempty,datetime=2006-01-02"`
	Description *string          `json:"description"`
	IsBillable  *bool            `json:"isBillable"`
}

type CreateExpenseRequest struct {
	ProjectID   *uuid.UUID      `json:"projectId"`
	Description string          `json:"description" validate:"required,max=500"`
	Category    string          `json:"category" validate:"max=100"`
	Amount      decimal.Decimal `json:"amount"`
	IsBillable  bool            `json:"isBillable"`
	ExpenseDate string          `json:"expenseDate" validate:"required,datetime=2006-01-02"`
}

type UpdateExpenseStatusRequest struct {
	Status ExpenseStatus `json:"status" validate:"required"`
}

type CreateDocumentRequest struct {
	Number       string          `json:"number" validate:"required,max=50"`
	ProjectID    *uuid.UUID      `json:"projectId"`
	ParentID     *uuid.UUID      `json:"parentId"`
	Counterparty string          `json:"counterparty" validate:"required,max=200"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
}

type UpdateDocumentStatusRequest struct {
	Status DocumentStatus `json:"status" validate:"required"`
}
