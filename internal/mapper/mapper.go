package mapper

import (
	"time"

	"github.com/straye-as/project-ledger-api/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(domain.DateLayout)
	return &s
}

// ToCompanyDTO converts Company to CompanyDTO
func ToCompanyDTO(company *domain.Company) domain.CompanyDTO {
	return domain.CompanyDTO{
		ID:       company.ID,
		Name:     company.Name,
		Country:  company.Country,
		Currency: company.Currency,
		IsActive: company.IsActive,
	}
}

// ToUserDTO converts User to UserDTO. The password hash is never copied.
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		HourlyRate:     user.HourlyRate,
		CompanyID:      user.CompanyID,
		CanManageUsers: user.CanManageUsers,
		IsActive:       user.IsActive,
		CreatedAt:      formatTimestamp(user.CreatedAt),
	}
}

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	dto := domain.ProjectDTO{
		ID:               project.ID,
		Name:             project.Name,
		Description:      project.Description,
		Status:           project.Status,
		CompanyID:        project.CompanyID,
		ProjectManagerID: project.ProjectManagerID,
		Budget:           project.Budget,
		StartDate:        formatDatePtr(project.StartDate),
		EndDate:          formatDatePtr(project.EndDate),
		CreatedAt:        formatTimestamp(project.CreatedAt),
		UpdatedAt:        formatTimestamp(project.UpdatedAt),
	}
	if project.ProjectManager != nil {
		dto.ProjectManager = project.ProjectManager.Name
	}
	return dto
}

// ToProjectMemberDTO converts ProjectMember to ProjectMemberDTO
func ToProjectMemberDTO(member *domain.ProjectMember) domain.ProjectMemberDTO {
	dto := domain.ProjectMemberDTO{
		ProjectID: member.ProjectID,
		UserID:    member.UserID,
	}
	if member.User != nil {
		dto.Name = member.User.Name
		dto.Email = member.User.Email
	}
	return dto
}

// ToTaskDTO converts Task to TaskDTO, evaluating overdue against now
func ToTaskDTO(task *domain.Task, now time.Time) domain.TaskDTO {
	return domain.TaskDTO{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		AssigneeID:  task.AssigneeID,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     formatDatePtr(task.DueDate),
		IsOverdue:   task.IsOverdue(now),
		CreatedAt:   formatTimestamp(task.CreatedAt),
	}
}

// ToTimesheetDTO converts Timesheet to TimesheetDTO
func ToTimesheetDTO(timesheet *domain.Timesheet) domain.TimesheetDTO {
	return domain.TimesheetDTO{
		ID:          timesheet.ID,
		TaskID:      timesheet.TaskID,
		UserID:      timesheet.UserID,
		HoursLogged: timesheet.HoursLogged,
		LogDate:     timesheet.LogDate.UTC().Format(domain.DateLayout),
		Description: timesheet.Description,
		IsBillable:  timesheet.IsBillable,
		Cost:        timesheet.Cost,
		CreatedAt:   formatTimestamp(timesheet.CreatedAt),
	}
}

// ToExpenseDTO converts Expense to ExpenseDTO
func ToExpenseDTO(expense *domain.Expense) domain.ExpenseDTO {
	return domain.ExpenseDTO{
		ID:           expense.ID,
		UserID:       expense.UserID,
		ProjectID:    expense.ProjectID,
		Description:  expense.Description,
		Category:     expense.Category,
		Amount:       expense.Amount,
		Status:       expense.Status,
		IsBillable:   expense.IsBillable,
		ExpenseDate:  expense.ExpenseDate.UTC().Format(domain.DateLayout),
		ReviewedByID: expense.ReviewedByID,
		CreatedAt:    formatTimestamp(expense.CreatedAt),
	}
}

func ToSalesOrderDTO(order *domain.SalesOrder) domain.DocumentDTO {
	return domain.DocumentDTO{
		ID:           order.ID,
		Kind:         domain.DocumentKindSalesOrder,
		Number:       order.Number,
		CompanyID:    order.CompanyID,
		ProjectID:    order.ProjectID,
		Counterparty: order.CustomerName,
		Amount:       order.Amount,
		Status:       order.Status,
		Date:         order.OrderDate.UTC().Format(domain.DateLayout),
		CreatedAt:    formatTimestamp(order.CreatedAt),
	}
}

func ToCustomerInvoiceDTO(invoice *domain.CustomerInvoice) domain.DocumentDTO {
	return domain.DocumentDTO{
		ID:           invoice.ID,
		Kind:         domain.DocumentKindCustomerInvoice,
		Number:       invoice.Number,
		CompanyID:    invoice.CompanyID,
		ProjectID:    invoice.ProjectID,
		ParentID:     invoice.SalesOrderID,
		Counterparty: invoice.CustomerName,
		Amount:       invoice.Amount,
		Status:       invoice.Status,
		Date:         invoice.InvoiceDate.UTC().Format(domain.DateLayout),
		CreatedAt:    formatTimestamp(invoice.CreatedAt),
	}
}

func ToPurchaseOrderDTO(order *domain.PurchaseOrder) domain.DocumentDTO {
	return domain.DocumentDTO{
		ID:           order.ID,
		Kind:         domain.DocumentKindPurchaseOrder,
		Number:       order.Number,
		CompanyID:    order.CompanyID,
		ProjectID:    order.ProjectID,
		Counterparty: order.VendorName,
		Amount:       order.Amount,
		Status:       order.Status,
		Date:         order.OrderDate.UTC().Format(domain.DateLayout),
		CreatedAt:    formatTimestamp(order.CreatedAt),
	}
}

func ToVendorBillDTO(bill *domain.VendorBill) domain.DocumentDTO {
	return domain.DocumentDTO{
		ID:           bill.ID,
		Kind:         domain.DocumentKindVendorBill,
		Number:       bill.Number,
		CompanyID:    bill.CompanyID,
		ProjectID:    bill.ProjectID,
		ParentID:     bill.PurchaseOrderID,
		Counterparty: bill.VendorName,
		Amount:       bill.Amount,
		Status:       bill.Status,
		Date:         bill.BillDate.UTC().Format(domain.DateLayout),
		CreatedAt:    formatTimestamp(bill.CreatedAt),
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:        notification.ID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		Link:      notification.Link,
		IsRead:    notification.IsRead,
		CreatedAt: formatTimestamp(notification.CreatedAt),
	}
}
