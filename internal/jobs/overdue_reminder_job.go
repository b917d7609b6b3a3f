package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/notify"
	"go.uber.org/zap"
)

// OverdueReminderJobName is the name of the overdue task reminder job
const OverdueReminderJobName = "overdue_task_reminder"

// OverdueTaskSource lists overdue tasks that have an assignee
type OverdueTaskSource interface {
	ListOverdueAssigned(ctx context.Context, now time.Time, limit int) ([]domain.Task, error)
}

// ReminderLog reports whether a reminder was already sent
type ReminderLog interface {
	ExistsSince(ctx context.Context, userID uuid.UUID, notificationType, link string, since time.Time) (bool, error)
}

// OverdueReminderJob notifies assignees of tasks that are past due and not done.
// Each task is reminded at most once per day.
type OverdueReminderJob struct {
	tasks    OverdueTaskSource
	sent     ReminderLog
	notifier notify.Sink
	logger   *zap.Logger
	timeout  time.Duration
	batch    int
	now      func() time.Time
}

func NewOverdueReminderJob(tasks OverdueTaskSource, sent ReminderLog, notifier notify.Sink, logger *zap.Logger, timeout time.Duration) *OverdueReminderJob {
	return &OverdueReminderJob{
		tasks:    tasks,
		sent:     sent,
		notifier: notifier,
		logger:   logger,
		timeout:  timeout,
		batch:    500,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (j *OverdueReminderJob) Name() string { return OverdueReminderJobName }

// Run sends the reminders and logs the outcome
func (j *OverdueReminderJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	sent, skipped, err := j.remind(ctx)
	if err != nil {
		j.logger.Error("overdue reminder job failed",
			zap.Error(err),
			zap.Int("sent", sent),
			zap.Duration("duration", time.Since(start)))
		return
	}
	j.logger.Info("overdue reminder job finished",
		zap.Int("sent", sent),
		zap.Int("skipped", skipped),
		zap.Duration("duration", time.Since(start)))
}

func (j *OverdueReminderJob) remind(ctx context.Context) (sent, skipped int, err error) {
	now := j.now()
	since := now.Add(-24 * time.Hour)

	tasks, err := j.tasks.ListOverdueAssigned(ctx, now, j.batch)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list overdue tasks: %w", err)
	}

	for i := range tasks {
		task := &tasks[i]
		if !task.IsOverdue(now) || task.AssigneeID == nil {
			continue
		}
		link := "/tasks/" + task.ID.String()

		already, err := j.sent.ExistsSince(ctx, *task.AssigneeID, string(domain.NotificationTypeTaskOverdue), link, since)
		if err != nil {
			return sent, skipped, fmt.Errorf("failed to check previous reminder: %w", err)
		}
		if already {
			skipped++
			continue
		}

		j.notifier.Notify(ctx, *task.AssigneeID,
			"Task overdue",
			fmt.Sprintf("%q was due %s", task.Title, task.DueDate.UTC().Format(domain.DateLayout)),
			domain.NotificationTypeTaskOverdue,
			link,
		)
		sent++
	}
	return sent, skipped, nil
}
