package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/repository"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"gorm.io/gorm"
)

// Analytics aggregates hours, cost and task throughput over a date range.
// With a target user, the target's own visible project set is re-derived and
// the figures are limited to that user's work.
func (s *DashboardService) Analytics(ctx context.Context, p *auth.UserContext, targetUserID *uuid.UUID, dateRange domain.DateRange) (*domain.AnalyticsDTO, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	if dateRange == "" {
		dateRange = domain.DateRangeLast30Days
	}
	if !dateRange.IsValid() {
		return nil, ErrInvalidDateRange
	}

	var target *domain.User
	teammate := false
	if targetUserID != nil {
		user, err := s.userRepo.GetByID(ctx, *targetUserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to get target user: %w", err)
		}
		target = user
		if p.Role == domain.RoleProjectManager && target.ID != p.UserID {
			teammate, err = s.userRepo.IsTeammate(ctx, p.UserID, target.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check teammate: %w", err)
			}
		}
	}

	projects, subject, err := scope.Analytics(p, target, teammate)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from := dateRange.Start(now)
	timesheets := scope.TimesheetFilter{Projects: projects, UserID: subject}
	tasks := scope.TaskFilter{Projects: projects, AssigneeID: subject}

	dto := &domain.AnalyticsDTO{
		TargetUserID: targetUserID,
		Range:        dateRange,
		ByProject:    []domain.ProjectHours{},
		ByDay:        []domain.DailyHours{},
	}
	if !from.IsZero() {
		timesheets.From = &from
		f := from.Format(domain.DateLayout)
		dto.From = &f
	}

	visible, err := s.projectRepo.ListAll(ctx, projects)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	dto.ProjectCount = len(visible)
	names := make(map[uuid.UUID]string, len(visible))
	for i := range visible {
		names[visible[i].ID] = visible[i].Name
	}

	totals, err := s.timesheetRepo.Totals(ctx, timesheets)
	if err != nil {
		return nil, fmt.Errorf("failed to sum timesheets: %w", err)
	}
	dto.TotalHours = totals.Hours
	dto.BillableHours = totals.BillableHours
	dto.TotalCost = totals.Cost.Round(2)

	byProject, err := s.timesheetRepo.TotalsByProject(ctx, timesheets)
	if err != nil {
		return nil, fmt.Errorf("failed to group timesheets by project: %w", err)
	}
	for _, row := range byProject {
		dto.ByProject = append(dto.ByProject, domain.ProjectHours{
			ProjectID:   row.ProjectID,
			ProjectName: names[row.ProjectID],
			Hours:       row.Hours,
			Cost:        row.Cost.Round(2),
		})
	}
	sort.Slice(dto.ByProject, func(i, j int) bool {
		return dto.ByProject[i].Hours.GreaterThan(dto.ByProject[j].Hours)
	})

	dated, err := s.timesheetRepo.DatedHours(ctx, timesheets)
	if err != nil {
		return nil, fmt.Errorf("failed to load timesheet dates: %w", err)
	}
	dto.ByDay = bucketByDay(dated)

	if dto.TasksDone, err = s.taskRepo.CountDoneSince(ctx, tasks, from); err != nil {
		return nil, fmt.Errorf("failed to count done tasks: %w", err)
	}
	if dto.TasksOverdue, err = s.taskRepo.CountOverdue(ctx, tasks, now); err != nil {
		return nil, fmt.Errorf("failed to count overdue tasks: %w", err)
	}

	return dto, nil
}

// bucketByDay sums hours per calendar day, in ascending date order
func bucketByDay(rows []repository.DatedHours) []domain.DailyHours {
	days := []domain.DailyHours{}
	index := make(map[string]int)
	for _, row := range rows {
		day := row.LogDate.UTC().Format(domain.DateLayout)
		if i, ok := index[day]; ok {
			days[i].Hours = days[i].Hours.Add(row.HoursLogged)
			continue
		}
		index[day] = len(days)
		days = append(days, domain.DailyHours{Date: day, Hours: row.HoursLogged})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}
