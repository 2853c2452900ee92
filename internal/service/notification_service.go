package service

import (
	"context"

	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationService interface {
	// Warn records a warning for the user. Implements xp.Notifier; failures
	// are logged and swallowed so a notification never blocks the caller.
	Warn(ctx context.Context, userID uuid.UUID, message string)
	ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

type notificationService struct {
	db               *gorm.DB
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(db *gorm.DB, notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{
		db:               db,
		notificationRepo: notificationRepo,
	}
}

func (s *notificationService) Warn(ctx context.Context, userID uuid.UUID, message string) {
	notification := &model.Notification{
		NotificationID: uuid.New(),
		UserID:         userID,
		Type:           model.NotificationWarning,
		Message:        message,
	}
	if err := s.notificationRepo.Create(ctx, s.db, notification); err != nil {
		middleware.GetLogger(ctx).Error("Failed to persist warning notification",
			"error", err,
			"user_id", userID.String(),
		)
	}
}

func (s *notificationService) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	notifications, err := s.notificationRepo.FindByUser(ctx, s.db, userID, limit)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list notifications", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, s.db, userID, notificationID)
}
