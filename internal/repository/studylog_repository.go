//go:generate mockery --name StudyLogRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studyflow/internal/middleware"
	"studyflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudyLogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, log *model.StudyLog) error
	FindByID(ctx context.Context, db *gorm.DB, userID, logID uuid.UUID) (*model.StudyLog, error)
	FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.StudyLog, error)
	FindByUserBetween(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*model.StudyLog, error)
	Delete(ctx context.Context, tx *gorm.DB, userID, logID uuid.UUID) error
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type gormStudyLogRepository struct{}

func NewGormStudyLogRepository() StudyLogRepository {
	return &gormStudyLogRepository{}
}

func (r *gormStudyLogRepository) Create(ctx context.Context, tx *gorm.DB, log *model.StudyLog) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(log)
	if result.Error != nil {
		logger.Error("Error creating study log in DB",
			"error", result.Error,
			"user_id", log.UserID.String(),
			"subject_id", log.SubjectID.String(),
		)
		return fmt.Errorf("gormStudyLogRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormStudyLogRepository) FindByID(ctx context.Context, db *gorm.DB, userID, logID uuid.UUID) (*model.StudyLog, error) {
	logger := middleware.GetLogger(ctx)
	var log model.StudyLog
	result := db.WithContext(ctx).Where("user_id = ? AND log_id = ?", userID, logID).First(&log)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding study log by ID in DB",
			"error", result.Error,
			"user_id", userID.String(),
			"log_id", logID.String(),
		)
		return nil, fmt.Errorf("gormStudyLogRepository.FindByID: %w", result.Error)
	}
	return &log, nil
}

func (r *gormStudyLogRepository) FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.StudyLog, error) {
	logger := middleware.GetLogger(ctx)
	var logs []*model.StudyLog
	result := db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&logs)
	if result.Error != nil {
		logger.Error("Error finding study logs by user in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return nil, fmt.Errorf("gormStudyLogRepository.FindByUser: %w", result.Error)
	}
	return logs, nil
}

func (r *gormStudyLogRepository) FindByUserBetween(ctx context.Context, db *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*model.StudyLog, error) {
	logger := middleware.GetLogger(ctx)
	var logs []*model.StudyLog
	result := db.WithContext(ctx).
		Where("user_id = ? AND studied_at >= ? AND studied_at < ?", userID, from, to).
		Order("studied_at ASC").
		Find(&logs)
	if result.Error != nil {
		logger.Error("Error finding study logs by range in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return nil, fmt.Errorf("gormStudyLogRepository.FindByUserBetween: %w", result.Error)
	}
	return logs, nil
}

func (r *gormStudyLogRepository) Delete(ctx context.Context, tx *gorm.DB, userID, logID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("user_id = ? AND log_id = ?", userID, logID).Delete(&model.StudyLog{})
	if result.Error != nil {
		logger.Error("Error deleting study log in DB",
			"error", result.Error,
			"user_id", userID.String(),
			"log_id", logID.String(),
		)
		return fmt.Errorf("gormStudyLogRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormStudyLogRepository) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.StudyLog{})
	if result.Error != nil {
		logger.Error("Error deleting study logs by user in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return fmt.Errorf("gormStudyLogRepository.DeleteByUser: %w", result.Error)
	}
	return nil
}
