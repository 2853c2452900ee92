// internal/repository/local_store.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"studyflow/internal/model"
)

// LocalStore is the local-only fallback for the XP engine: a sqlite file that
// takes ledger writes when the durable store is unreachable and keeps the
// processed-log snapshot across restarts. It reuses the same gorm models as
// the durable store.
type LocalStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewLocalStore opens (or creates) the sqlite file at path and migrates the
// ledger tables. Use ":memory:" for an ephemeral store.
func NewLocalStore(path string, logger *slog.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("repository.NewLocalStore: %w", err)
	}
	if err := db.AutoMigrate(&model.XPLedgerRecord{}, &model.XPHistoryEntry{}, &model.XPProcessedLog{}); err != nil {
		return nil, fmt.Errorf("repository.NewLocalStore: migrate: %w", err)
	}
	return &LocalStore{db: db, logger: logger}, nil
}

func (s *LocalStore) Fetch(ctx context.Context, userID uuid.UUID) (int, []model.XPHistoryEntry, error) {
	var record model.XPLedgerRecord
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil, model.ErrNotFound
		}
		return 0, nil, fmt.Errorf("LocalStore.Fetch: %w", result.Error)
	}
	var history []model.XPHistoryEntry
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("position ASC").Find(&history).Error; err != nil {
		return 0, nil, fmt.Errorf("LocalStore.Fetch: %w", err)
	}
	return record.TotalXP, history, nil
}

func (s *LocalStore) Upsert(ctx context.Context, userID uuid.UUID, total int, history []model.XPHistoryEntry) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.XPLedgerRecord{}).Where("user_id = ?", userID).Update("total_xp", total)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&model.XPLedgerRecord{UserID: userID, TotalXP: total}).Error; err != nil {
				return err
			}
		}
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
		return fmt.Errorf("LocalStore.Upsert: %w", err)
	}
	return nil
}

func (s *LocalStore) Clear(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.XPHistoryEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.XPLedgerRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&model.XPProcessedLog{}).Error
	})
	if err != nil {
		return fmt.Errorf("LocalStore.Clear: %w", err)
	}
	return nil
}

func (s *LocalStore) Load(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var rows []model.XPProcessedLog
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("LocalStore.Load: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.LogID)
	}
	return ids, nil
}

func (s *LocalStore) Add(ctx context.Context, userID uuid.UUID, logIDs []string) error {
	if len(logIDs) == 0 {
		return nil
	}
	rows := make([]model.XPProcessedLog, 0, len(logIDs))
	for _, id := range logIDs {
		rows = append(rows, model.XPProcessedLog{UserID: userID, LogID: id})
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("LocalStore.Add: %w", err)
	}
	return nil
}

// Close releases the underlying sqlite handle.
func (s *LocalStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
