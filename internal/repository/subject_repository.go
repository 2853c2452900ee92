//go:generate mockery --name SubjectRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"studyflow/internal/middleware"
	"studyflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubjectRepository interface {
	Create(ctx context.Context, tx *gorm.DB, subject *model.Subject) error
	FindByID(ctx context.Context, db *gorm.DB, userID, subjectID uuid.UUID) (*model.Subject, error)
	FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.Subject, error)
	Update(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) error
	CheckNameExists(ctx context.Context, db *gorm.DB, userID uuid.UUID, name string, excludeSubjectID *uuid.UUID) (bool, error)
}

type gormSubjectRepository struct{}

func NewGormSubjectRepository() SubjectRepository {
	return &gormSubjectRepository{}
}

func (r *gormSubjectRepository) Create(ctx context.Context, tx *gorm.DB, subject *model.Subject) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(subject)
	if result.Error != nil {
		logger.Error("Error creating subject in DB",
			"error", result.Error,
			"user_id", subject.UserID.String(),
			"name", subject.Name,
		)
		return fmt.Errorf("gormSubjectRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormSubjectRepository) FindByID(ctx context.Context, db *gorm.DB, userID, subjectID uuid.UUID) (*model.Subject, error) {
	logger := middleware.GetLogger(ctx)
	var subject model.Subject
	result := db.WithContext(ctx).Where("user_id = ? AND subject_id = ?", userID, subjectID).First(&subject)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding subject by ID in DB",
			"error", result.Error,
			"user_id", userID.String(),
			"subject_id", subjectID.String(),
		)
		return nil, fmt.Errorf("gormSubjectRepository.FindByID: %w", result.Error)
	}
	return &subject, nil
}

func (r *gormSubjectRepository) FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.Subject, error) {
	logger := middleware.GetLogger(ctx)
	var subjects []*model.Subject
	result := db.WithContext(ctx).Where("user_id = ?", userID).Order("cycle_position ASC, created_at ASC").Find(&subjects)
	if result.Error != nil {
		logger.Error("Error finding subjects by user in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return nil, fmt.Errorf("gormSubjectRepository.FindByUser: %w", result.Error)
	}
	return subjects, nil
}

func (r *gormSubjectRepository) Update(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Subject{}).Where("user_id = ? AND subject_id = ?", userID, subjectID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating subject in DB",
			"error", result.Error,
			"user_id", userID.String(),
			"subject_id", subjectID.String(),
		)
		return fmt.Errorf("gormSubjectRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormSubjectRepository) Delete(ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Subject{}, subjectID)
	if result.Error != nil {
		logger.Error("Error deleting subject in DB",
			"error", result.Error,
			"user_id", userID.String(),
			"subject_id", subjectID.String(),
		)
		return fmt.Errorf("gormSubjectRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormSubjectRepository) CheckNameExists(ctx context.Context, db *gorm.DB, userID uuid.UUID, name string, excludeSubjectID *uuid.UUID) (bool, error) {
	logger := middleware.GetLogger(ctx)
	var count int64
	query := db.WithContext(ctx).Model(&model.Subject{}).Where("user_id = ? AND name = ?", userID, name)
	if excludeSubjectID != nil {
		query = query.Where("subject_id != ?", *excludeSubjectID)
	}
	result := query.Count(&count)
	if result.Error != nil {
		logger.Error("Error checking subject name existence in DB",
			"error", result.Error,
			"user_id", userID.String(),
			"name", name,
		)
		return false, fmt.Errorf("gormSubjectRepository.CheckNameExists: %w", result.Error)
	}
	return count > 0, nil
}
