package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/mapper"
	"github.com/straye-as/project-ledger-api/internal/repository"
	"go.uber.org/zap"
)

// NotificationListResponse is a page of notifications plus the unread total
type NotificationListResponse struct {
	domain.PaginatedResponse
	Unread int64 `json:"unread"`
}

// NotificationService handles business logic for notifications
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// List returns the principal's notifications, newest first
func (s *NotificationService) List(ctx context.Context, p *auth.UserContext, page, pageSize int, unreadOnly bool, notificationType string) (*NotificationListResponse, error) {
	if err := principal(p); err != nil {
		return nil, err
	}
	if notificationType != "" && !domain.NotificationType(notificationType).IsValid() {
		return nil, fmt.Errorf("invalid notification type: %w", domain.ErrValidation)
	}

	notifications, total, err := s.notificationRepo.ListByUser(ctx, p.UserID, page, pageSize, unreadOnly, notificationType)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.notificationRepo.CountUnread(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = mapper.ToNotificationDTO(&notifications[i])
	}
	return &NotificationListResponse{
		PaginatedResponse: *paginate(dtos, total, page, pageSize),
		Unread:            unread,
	}, nil
}

// MarkAsRead marks one of the principal's notifications as read.
// Notifications of other users are reported as not found.
func (s *NotificationService) MarkAsRead(ctx context.Context, p *auth.UserContext, id uuid.UUID) error {
	if err := principal(p); err != nil {
		return err
	}
	found, err := s.notificationRepo.MarkAsRead(ctx, p.UserID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if !found {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead marks every unread notification of the principal as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, p *auth.UserContext) (int64, error) {
	if err := principal(p); err != nil {
		return 0, err
	}
	count, err := s.notificationRepo.MarkAllAsRead(ctx, p.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	s.logger.Debug("notifications marked as read",
		zap.String("user_id", p.UserID.String()),
		zap.Int64("count", count),
	)
	return count, nil
}
