package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
)

// NotificationService reads the notification feed. Writing happens inside the
// services that cause notifications; this one only serves them back.
type NotificationService interface {
	// ListForUser returns notifications addressed to the user directly or to
	// their role, newest first.
	ListForUser(ctx context.Context, userID string, role models.UserRole, limit, offset int) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, id uint) error
}

type notificationService struct {
	repo   repositories.Repository
	logger *slog.Logger

	now func() time.Time
}

func NewNotificationService(repo repositories.Repository, logger *slog.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger, now: time.Now}
}

func (s *notificationService) ListForUser(ctx context.Context, userID string, role models.UserRole, limit, offset int) ([]*models.Notification, int64, error) {
	return s.repo.Notifications().ListForRecipient(ctx, userID, role, limit, offset)
}

func (s *notificationService) MarkRead(ctx context.Context, id uint) error {
	if err := s.repo.Notifications().MarkRead(ctx, id, s.now()); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
