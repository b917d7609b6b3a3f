package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserRole is the closed set of roles a user can hold. The string values are
// part of the wire contract.
type UserRole string

const (
	RoleAdmin          UserRole = "Admin"
	RoleProjectManager UserRole = "Project Manager"
	RoleTeamMember     UserRole = "Team Member"
	RoleSalesFinance   UserRole = "Sales/Finance"
)

// AllRoles lists every role in a stable order
var AllRoles = []UserRole{RoleAdmin, RoleProjectManager, RoleTeamMember, RoleSalesFinance}

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleTeamMember, RoleSalesFinance:
		return true
	}
	return false
}

// Company is a tenant. Users, projects and financial documents belong to exactly one company.
type Company struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Country  string `gorm:"type:varchar(100)"`
	Currency string `gorm:"type:varchar(3);not null;default:'USD'"`
	IsActive bool   `gorm:"not null;default:true;column:is_active"`
}

// User represents a person who can sign in
type User struct {
	BaseModel
	Name           string          `gorm:"type:varchar(200);not null"`
	Email          string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash   string          `gorm:"type:varchar(255);column:password_hash"`
	Role           UserRole        `gorm:"type:varchar(50);not null;default:'Team Member';index"`
	HourlyRate     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0;column:hourly_rate"`
	CompanyID      *uuid.UUID      `gorm:"type:uuid;column:company_id;index"`
	Company        *Company        `gorm:"foreignKey:CompanyID"`
	CreatedByID    *uuid.UUID      `gorm:"type:uuid;column:created_by_id"`
	CanManageUsers bool            `gorm:"not null;default:false;column:can_manage_users"`
	IsActive       bool            `gorm:"not null;default:true;column:is_active"`
}

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusPlanned    ProjectStatus = "Planned"
	ProjectStatusInProgress ProjectStatus = "In Progress"
	ProjectStatusCompleted  ProjectStatus = "Completed"
	ProjectStatusOnHold     ProjectStatus = "On Hold"
)

// IsValid checks if the ProjectStatus is a valid enum value
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanned, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusOnHold:
		return true
	}
	return false
}

// Project groups tasks, members and linked financial documents
type Project struct {
	BaseModel
	Name             string          `gorm:"type:varchar(200);not null;index"`
	Description      string          `gorm:"type:text"`
	Status           ProjectStatus   `gorm:"type:varchar(50);not null;default:'Planned';index"`
	CompanyID        uuid.UUID       `gorm:"type:uuid;not null;column:company_id;index"`
	ProjectManagerID uuid.UUID       `gorm:"type:uuid;not null;column:project_manager_id;index"`
	ProjectManager   *User           `gorm:"foreignKey:ProjectManagerID"`
	Budget           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	StartDate        *time.Time      `gorm:"type:date;column:start_date"`
	EndDate          *time.Time      `gorm:"type:date;column:end_date"`
}

// ProjectMember is a flat membership of a user in a project
type ProjectMember struct {
	BaseModel
	ProjectID uuid.UUID `gorm:"type:uuid;not null;column:project_id;uniqueIndex:idx_project_member"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_project_member;index"`
	User      *User     `gorm:"foreignKey:UserID"`
}

// TaskStatus represents the workflow state of a task
type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "New"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusBlocked    TaskStatus = "Blocked"
	TaskStatusDone       TaskStatus = "Done"
)

// IsValid checks if the TaskStatus is a valid enum value
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusNew, TaskStatusInProgress, TaskStatusBlocked, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority represents how urgent a task is
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
	TaskPriorityUrgent TaskPriority = "Urgent"
)

// IsValid checks if the TaskPriority is a valid enum value
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Task is a unit of work inside a project
type Task struct {
	BaseModel
	ProjectID   uuid.UUID    `gorm:"type:uuid;not null;column:project_id;index"`
	Project     *Project     `gorm:"foreignKey:ProjectID"`
	Title       string       `gorm:"type:varchar(200);not null"`
	Description string       `gorm:"type:text"`
	AssigneeID  *uuid.UUID   `gorm:"type:uuid;column:assignee_id;index"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID"`
	Status      TaskStatus   `gorm:"type:varchar(50);not null;default:'New';index"`
	Priority    TaskPriority `gorm:"type:varchar(50);not null;default:'Medium'"`
	DueDate     *time.Time   `gorm:"column:due_date;index"`
}

// IsOverdue reports whether the task is past due and not done
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != TaskStatusDone
}

// Timesheet records hours a user logged against a task. Cost is snapshotted at write time.
type Timesheet struct {
	BaseModel
	TaskID      uuid.UUID       `gorm:"type:uuid;not null;column:task_id;index"`
	Task        *Task           `gorm:"foreignKey:TaskID"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;column:user_id;index"`
	User        *User           `gorm:"foreignKey:UserID"`
	HoursLogged decimal.Decimal `gorm:"type:decimal(5,2);not null;column:hours_logged"`
	LogDate     time.Time       `gorm:"not null;column:log_date;index"`
	Description string          `gorm:"type:text"`
	IsBillable  bool            `gorm:"not null;column:is_billable"`
	Cost        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
}

// DocumentStatus is shared by the financial document types. Each type uses
// a three step subset, see the lifecycle definitions in lifecycle.go.
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "Draft"
	DocumentStatusSent      DocumentStatus = "Sent"
	DocumentStatusConfirmed DocumentStatus = "Confirmed"
	DocumentStatusSubmitted DocumentStatus = "Submitted"
	DocumentStatusPaid      DocumentStatus = "Paid"
	DocumentStatusBilled    DocumentStatus = "Billed"
)

// SalesOrder is a customer order, optionally tied to a project
type SalesOrder struct {
	BaseModel
	Number       string          `gorm:"type:varchar(50);not null;index"`
	CompanyID    uuid.UUID       `gorm:"type:uuid;not null;column:company_id;index"`
	ProjectID    *uuid.UUID      `gorm:"type:uuid;column:project_id;index"`
	CustomerName string          `gorm:"type:varchar(200);not null;column:customer_name"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Status       DocumentStatus  `gorm:"type:varchar(50);not null;default:'Draft';index"`
	OrderDate    time.Time       `gorm:"not null;column:order_date"`
}

// CustomerInvoice bills a customer. Sent and Paid invoices count as project revenue.
type CustomerInvoice struct {
	BaseModel
	Number       string          `gorm:"type:varchar(50);not null;index"`
	CompanyID    uuid.UUID       `gorm:"type:uuid;not null;column:company_id;index"`
	ProjectID    *uuid.UUID      `gorm:"type:uuid;column:project_id;index"`
	SalesOrderID *uuid.UUID      `gorm:"type:uuid;column:sales_order_id"`
	CustomerName string          `gorm:"type:varchar(200);not null;column:customer_name"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Status       DocumentStatus  `gorm:"type:varchar(50);not null;default:'Draft';index"`
	InvoiceDate  time.Time       `gorm:"not null;column:invoice_date;index"`
	DueDate      *time.Time      `gorm:"column:due_date"`
}

// PurchaseOrder is an order placed with a vendor
type PurchaseOrder struct {
	BaseModel
	Number     string          `gorm:"type:varchar(50);not null;index"`
	CompanyID  uuid.UUID       `gorm:"type:uuid;not null;column:company_id;index"`
	ProjectID  *uuid.UUID      `gorm:"type:uuid;column:project_id;index"`
	VendorName string          `gorm:"type:varchar(200);not null;column:vendor_name"`
	Amount     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Status     DocumentStatus  `gorm:"type:varchar(50);not null;default:'Draft';index"`
	OrderDate  time.Time       `gorm:"not null;column:order_date"`
}

// VendorBill is a bill received from a vendor. Submitted and Paid bills count as project cost.
type VendorBill struct {
	BaseModel
	Number          string          `gorm:"type:varchar(50);not null;index"`
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;column:company_id;index"`
	ProjectID       *uuid.UUID      `gorm:"type:uuid;column:project_id;index"`
	PurchaseOrderID *uuid.UUID      `gorm:"type:uuid;column:purchase_order_id"`
	VendorName      string          `gorm:"type:varchar(200);not null;column:vendor_name"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Status          DocumentStatus  `gorm:"type:varchar(50);not null;default:'Draft';index"`
	BillDate        time.Time       `gorm:"not null;column:bill_date"`
}

// ExpenseStatus represents the approval state of an expense
type ExpenseStatus string

const (
	ExpenseStatusPending    ExpenseStatus = "Pending"
	ExpenseStatusApproved   ExpenseStatus = "Approved"
	ExpenseStatusRejected   ExpenseStatus = "Rejected"
	ExpenseStatusReimbursed ExpenseStatus = "Reimbursed"
)

// IsValid checks if the ExpenseStatus is a valid enum value
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusPending, ExpenseStatusApproved, ExpenseStatusRejected, ExpenseStatusReimbursed:
		return true
	}
	return false
}

// Expense is an out-of-pocket cost submitted by a user
type Expense struct {
	BaseModel
	UserID       uuid.UUID       `gorm:"type:uuid;not null;column:user_id;index"`
	User         *User           `gorm:"foreignKey:UserID"`
	ProjectID    *uuid.UUID      `gorm:"type:uuid;column:project_id;index"`
	Description  string          `gorm:"type:varchar(500);not null"`
	Category     string          `gorm:"type:varchar(100)"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Status       ExpenseStatus   `gorm:"type:varchar(50);not null;default:'Pending';index"`
	IsBillable   bool            `gorm:"not null;default:false;column:is_billable"`
	ExpenseDate  time.Time       `gorm:"not null;column:expense_date"`
	ReviewedByID *uuid.UUID      `gorm:"type:uuid;column:reviewed_by_id"`
	ReviewedAt   *time.Time      `gorm:"column:reviewed_at"`
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeTaskAssigned    NotificationType = "task_assigned"
	NotificationTypeTaskOverdue     NotificationType = "task_overdue"
	NotificationTypeExpenseReviewed NotificationType = "expense_reviewed"
	NotificationTypeProjectUpdate   NotificationType = "project_update"
	NotificationTypeDocumentStatus  NotificationType = "document_status"
)

// IsValid checks if the NotificationType is a valid enum value
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypeTaskAssigned, NotificationTypeTaskOverdue, NotificationTypeExpenseReviewed,
		NotificationTypeProjectUpdate, NotificationTypeDocumentStatus:
		return true
	}
	return false
}

// Notification represents a user notification
type Notification struct {
	BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Type    string    `gorm:"type:varchar(50);not null"`
	Title   string    `gorm:"type:varchar(200);not null"`
	Message string    `gorm:"type:varchar(500);not null"`
	Link    string    `gorm:"type:varchar(500)"`
	IsRead  bool      `gorm:"column:is_read;not null;default:false;index"`
	ReadAt  *time.Time
}
