//go:generate mockery --name XPRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"studyflow/internal/middleware"
	"studyflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// XPRepository persists the durable XP ledger: one summary row per user plus
// the capped history entries, and the processed-log id set. Absent tables are
// reported as model.ErrSchemaMissing so the engine can treat a fresh database
// as an expected first-use state.
type XPRepository interface {
	FetchLedger(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int, []model.XPHistoryEntry, error)
	UpsertLedger(ctx context.Context, db *gorm.DB, userID uuid.UUID, total int, history []model.XPHistoryEntry) error
	ClearLedger(ctx context.Context, db *gorm.DB, userID uuid.UUID) error
	LoadProcessed(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]string, error)
	AddProcessed(ctx context.Context, db *gorm.DB, userID uuid.UUID, logIDs []string) error
	ClearProcessed(ctx context.Context, db *gorm.DB, userID uuid.UUID) error
}

type gormXPRepository struct{}

func NewGormXPRepository() XPRepository {
	return &gormXPRepository{}
}

func (r *gormXPRepository) FetchLedger(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int, []model.XPHistoryEntry, error) {
	logger := middleware.GetLogger(ctx)

	var record model.XPLedgerRecord
	result := db.WithContext(ctx).Where("user_id = ?", userID).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil, model.ErrNotFound
		}
		if isUndefinedTable(result.Error) {
			return 0, nil, model.ErrSchemaMissing
		}
		logger.Error("Error fetching XP ledger from DB", "error", result.Error, "user_id", userID.String())
		return 0, nil, fmt.Errorf("gormXPRepository.FetchLedger: %w", result.Error)
	}

	var history []model.XPHistoryEntry
	result = db.WithContext(ctx).Where("user_id = ?", userID).Order("position ASC").Find(&history)
	if result.Error != nil {
		if isUndefinedTable(result.Error) {
			return 0, nil, model.ErrSchemaMissing
		}
		logger.Error("Error fetching XP history from DB", "error", result.Error, "user_id", userID.String())
		return 0, nil, fmt.Errorf("gormXPRepository.FetchLedger: %w", result.Error)
	}
	return record.TotalXP, history, nil
}

func (r *gormXPRepository) UpsertLedger(ctx context.Context, db *gorm.DB, userID uuid.UUID, total int, history []model.XPHistoryEntry) error {
	logger := middleware.GetLogger(ctx)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := model.XPLedgerRecord{UserID: userID, TotalXP: total}
		res := tx.Model(&model.XPLedgerRecord{}).Where("user_id = ?", userID).Update("total_xp", total)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		// The history is small (<= 50 entries) and immutable per entry, so a
		// full replace keeps the write simple and order-faithful.
		if err := tx.Where("user_id = ?", userID).Delete(&model.XPHistoryEntry{}).Error; err != nil {
			return err
		}
		for i := range history {
			history[i].Position = i
		}
		if len(history) > 0 {
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUndefinedTable(err) {
			return model.ErrSchemaMissing
		}
		logger.Error("Error upserting XP ledger in DB", "error", err, "user_id", userID.String())
		return fmt.Errorf("gormXPRepository.UpsertLedger: %w", err)
	}
	return nil
}

func (r *gormXPRepository) ClearLedger(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.XPHistoryEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&model.XPLedgerRecord{}).Error
	})
	if err != nil {
		if isUndefinedTable(err) {
			return model.ErrSchemaMissing
		}
		logger.Error("Error clearing XP ledger in DB", "error", err, "user_id", userID.String())
		return fmt.Errorf("gormXPRepository.ClearLedger: %w", err)
	}
	return nil
}

func (r *gormXPRepository) LoadProcessed(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]string, error) {
	logger := middleware.GetLogger(ctx)
	var rows []model.XPProcessedLog
	result := db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows)
	if result.Error != nil {
		if isUndefinedTable(result.Error) {
			return nil, model.ErrSchemaMissing
		}
		logger.Error("Error loading processed log ids from DB", "error", result.Error, "user_id", userID.String())
		return nil, fmt.Errorf("gormXPRepository.LoadProcessed: %w", result.Error)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.LogID)
	}
	return ids, nil
}

func (r *gormXPRepository) AddProcessed(ctx context.Context, db *gorm.DB, userID uuid.UUID, logIDs []string) error {
	logger := middleware.GetLogger(ctx)
	if len(logIDs) == 0 {
		return nil
	}
	rows := make([]model.XPProcessedLog, 0, len(logIDs))
	for _, id := range logIDs {
		rows = append(rows, model.XPProcessedLog{UserID: userID, LogID: id})
	}
	// Re-marking an already processed id is harmless.
	result := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if result.Error != nil {
		if isUndefinedTable(result.Error) {
			return model.ErrSchemaMissing
		}
		logger.Error("Error adding processed log ids in DB", "error", result.Error, "user_id", userID.String())
		return fmt.Errorf("gormXPRepository.AddProcessed: %w", result.Error)
	}
	return nil
}

func (r *gormXPRepository) ClearProcessed(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.XPProcessedLog{})
	if result.Error != nil {
		if isUndefinedTable(result.Error) {
			return model.ErrSchemaMissing
		}
		logger.Error("Error clearing processed log ids in DB", "error", result.Error, "user_id", userID.String())
		return fmt.Errorf("gormXPRepository.ClearProcessed: %w", result.Error)
	}
	return nil
}
