//go:generate mockery --name NotificationRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"fmt"

	"studyflow/internal/middleware"
	"studyflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, db *gorm.DB, notification *model.Notification) error
	FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, db *gorm.DB, userID, notificationID uuid.UUID) error
}

type gormNotificationRepository struct{}

func NewGormNotificationRepository() NotificationRepository {
	return &gormNotificationRepository{}
}

func (r *gormNotificationRepository) Create(ctx context.Context, db *gorm.DB, notification *model.Notification) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Create(notification)
	if result.Error != nil {
		logger.Error("Error creating notification in DB",
			"error", result.Error,
			"user_id", notification.UserID.String(),
		)
		return fmt.Errorf("gormNotificationRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormNotificationRepository) FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]*model.Notification, error) {
	logger := middleware.GetLogger(ctx)
	var notifications []*model.Notification
	query := db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&notifications).Error; err != nil {
		logger.Error("Error finding notifications by user in DB",
			"error", err,
			"user_id", userID.String(),
		)
		return nil, fmt.Errorf("gormNotificationRepository.FindByUser: %w", err)
	}
	return notifications, nil
}

func (r *gormNotificationRepository) MarkRead(ctx context.Context, db *gorm.DB, userID, notificationID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND notification_id = ?", userID, notificationID).
		Update("is_read", true)
	if result.Error != nil {
		logger.Error("Error marking notification read in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return fmt.Errorf("gormNotificationRepository.MarkRead: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
