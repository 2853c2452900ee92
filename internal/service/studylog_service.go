package service

import (
	"context"
	"errors"
	"time"

	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudyLogService interface {
	CreateStudyLog(ctx context.Context, userID uuid.UUID, req *model.PostStudyLogRequest) (*model.StudyLog, error)
	GetStudyLog(ctx context.Context, userID, logID uuid.UUID) (*model.StudyLog, error)
	ListStudyLogs(ctx context.Context, userID uuid.UUID) ([]*model.StudyLog, error)
	// DeleteStudyLog removes the session. XP already granted for it stays
	// on the ledger; the processed set keeps the log id so nothing is
	// re-evaluated.
	DeleteStudyLog(ctx context.Context, userID, logID uuid.UUID) error
	// ResetAccount deletes every study log and wipes the XP ledger. The
	// subjects themselves survive a reset.
	ResetAccount(ctx context.Context, userID uuid.UUID) error
}

type studyLogService struct {
	db           *gorm.DB
	studyLogRepo repository.StudyLogRepository
	subjectRepo  repository.SubjectRepository
	xpService    XPService
}

func NewStudyLogService(db *gorm.DB, studyLogRepo repository.StudyLogRepository, subjectRepo repository.SubjectRepository, xpService XPService) StudyLogService {
	return &studyLogService{
		db:           db,
		studyLogRepo: studyLogRepo,
		subjectRepo:  subjectRepo,
		xpService:    xpService,
	}
}

// CreateStudyLog persists the session and runs an XP evaluation pass so the
// new log is granted exactly once.
func (s *studyLogService) CreateStudyLog(ctx context.Context, userID uuid.UUID, req *model.PostStudyLogRequest) (*model.StudyLog, error) {
	logger := middleware.GetLogger(ctx)

	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		return nil, model.NewAppError("INVALID_SUBJECT_ID", "O identificador da disciplina é inválido.", "subject_id", model.ErrInvalidInput)
	}

	// The subject must exist at creation time. It may be deleted later; the
	// log then keeps a dangling reference on purpose.
	if _, err := s.subjectRepo.FindByID(ctx, s.db, userID, subjectID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("SUBJECT_NOT_FOUND", "Disciplina não encontrada.", "subject_id", model.ErrNotFound)
		}
		logger.Error("Failed to check subject existence", "error", err)
		return nil, model.ErrInternalServer
	}

	studyType := req.StudyType
	if studyType == "" {
		studyType = model.StudyTypeTheory
	}
	studiedAt := time.Now()
	if req.StudiedAt != nil {
		studiedAt = *req.StudiedAt
	}

	studyLog := &model.StudyLog{
		LogID:     uuid.New(),
		UserID:    userID,
		SubjectID: subjectID,
		StudyType: studyType,
		Hours:     req.Hours,
		Minutes:   req.Minutes,
		Seconds:   req.Seconds,
		Pages:     req.Pages,
		Correct:   req.Correct,
		Wrong:     req.Wrong,
		Blank:     req.Blank,
		StudiedAt: studiedAt,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.studyLogRepo.Create(ctx, tx, studyLog)
	})
	if err != nil {
		logger.Error("Failed to create study log", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}

	// XP is awarded outside the transaction: the engine's processed set
	// makes the pass idempotent, so a failure here only delays the grant
	// until the next pass.
	if err := s.xpService.SyncLogs(ctx, userID); err != nil {
		logger.Error("XP evaluation pass failed after study log creation", "error", err, "log_id", studyLog.LogID.String())
	}

	return studyLog, nil
}

func (s *studyLogService) GetStudyLog(ctx context.Context, userID, logID uuid.UUID) (*model.StudyLog, error) {
	return s.studyLogRepo.FindByID(ctx, s.db, userID, logID)
}

func (s *studyLogService) ListStudyLogs(ctx context.Context, userID uuid.UUID) ([]*model.StudyLog, error) {
	logs, err := s.studyLogRepo.FindByUser(ctx, s.db, userID)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list study logs", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}
	return logs, nil
}

func (s *studyLogService) DeleteStudyLog(ctx context.Context, userID, logID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.studyLogRepo.Delete(ctx, tx, userID, logID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		middleware.GetLogger(ctx).Error("Failed to delete study log", "error", err, "user_id", userID.String(), "log_id", logID.String())
		return model.ErrInternalServer
	}
	return nil
}

func (s *studyLogService) ResetAccount(ctx context.Context, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.studyLogRepo.DeleteByUser(ctx, tx, userID)
	})
	if err != nil {
		logger.Error("Failed to delete study logs on reset", "error", err, "user_id", userID.String())
		return model.ErrInternalServer
	}

	if err := s.xpService.Reset(ctx, userID); err != nil {
		logger.Error("Failed to reset XP ledger on account reset", "error", err, "user_id", userID.String())
		return err
	}

	logger.Info("Account reset completed", "user_id", userID.String())
	return nil
}
