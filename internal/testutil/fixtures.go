package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// D parses a decimal literal, panicking on malformed input
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Date returns UTC midnight of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestCompany creates an active company
func CreateTestCompany(t *testing.T, db *gorm.DB, name string) *domain.Company {
	t.Helper()
	company := &domain.Company{Name: name, Currency: "USD", IsActive: true}
	require.NoError(t, db.Create(company).Error)
	return company
}

// CreateTestUser creates an active user in the company with the given role and hourly rate
func CreateTestUser(t *testing.T, db *gorm.DB, companyID uuid.UUID, role domain.UserRole, rate string) *domain.User {
	t.Helper()
	id := uuid.New()
	user := &domain.User{
		BaseModel:  domain.BaseModel{ID: id},
		Name:       string(role) + " " + id.String()[:8],
		Email:      id.String()[:8] + "@example.com",
		Role:       role,
		HourlyRate: D(rate),
		CompanyID:  &companyID,
		IsActive:   true,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(user).Error)
	return user
}

// CreateTestProject creates an in-progress project managed by managerID
func CreateTestProject(t *testing.T, db *gorm.DB, companyID, managerID uuid.UUID, name string) *domain.Project {
	t.Helper()
	project := &domain.Project{
		Name:             name,
		Status:           domain.ProjectStatusInProgress,
		CompanyID:        companyID,
		ProjectManagerID: managerID,
		Budget:           D("10000"),
	}
	require.NoError(t, db.Omit(clause.Associations).Create(project).Error)
	return project
}

// AddTestMember adds userID to the project
func AddTestMember(t *testing.T, db *gorm.DB, projectID, userID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Omit(clause.Associations).Create(&domain.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
	}).Error)
}

// CreateTestTask creates a New task in the project, optionally assigned
func CreateTestTask(t *testing.T, db *gorm.DB, projectID uuid.UUID, assigneeID *uuid.UUID, title string) *domain.Task {
	t.Helper()
	task := &domain.Task{
		ProjectID:  projectID,
		Title:      title,
		AssigneeID: assigneeID,
		Status:     domain.TaskStatusNew,
		Priority:   domain.TaskPriorityMedium,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(task).Error)
	return task
}

// Tenant is one company populated with a user per role and a single project.
// The project is managed by PM; TM is a member and assignee of Task.
type Tenant struct {
	Company *domain.Company
	Admin   *domain.User
	PM      *domain.User
	TM      *domain.User
	SF      *domain.User
	Project *domain.Project
	Task    *domain.Task
}

// SeedTenant creates a Tenant named name
func SeedTenant(t *testing.T, db *gorm.DB, name string) *Tenant {
	t.Helper()
	company := CreateTestCompany(t, db, name)
	tenant := &Tenant{
		Company: company,
		Admin:   CreateTestUser(t, db, company.ID, domain.RoleAdmin, "80"),
		PM:      CreateTestUser(t, db, company.ID, domain.RoleProjectManager, "60"),
		TM:      CreateTestUser(t, db, company.ID, domain.RoleTeamMember, "45"),
		SF:      CreateTestUser(t, db, company.ID, domain.RoleSalesFinance, "55"),
	}
	tenant.Project = CreateTestProject(t, db, company.ID, tenant.PM.ID, name+" project")
	AddTestMember(t, db, tenant.Project.ID, tenant.TM.ID)
	tenant.Task = CreateTestTask(t, db, tenant.Project.ID, &tenant.TM.ID, name+" task")
	return tenant
}

// Principal builds the request principal of a stored user
func Principal(user *domain.User) *auth.UserContext {
	return auth.NewUserContext(user)
}

// SentNotification is one call recorded by RecordingSink
type SentNotification struct {
	UserID  uuid.UUID
	Title   string
	Message string
	Type    domain.NotificationType
	Link    string
}

// RecordingSink is a notify.Sink that keeps every notification in memory
type RecordingSink struct {
	mu   sync.Mutex
	sent []SentNotification
}

func (s *RecordingSink) Notify(_ context.Context, userID uuid.UUID, title, message string, notificationType domain.NotificationType, link string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, SentNotification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notificationType,
		Link:    link,
	})
}

// Sent returns a copy of the recorded notifications
func (s *RecordingSink) Sent() []SentNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentNotification(nil), s.sent...)
}
