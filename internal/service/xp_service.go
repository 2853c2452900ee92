package service

import (
	"context"
	"log/slog"
	"sync"

	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/repository"
	"studyflow/internal/xp"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type XPService interface {
	// Overview returns the user's XP state and consumes any pending rank
	// upgrade signal.
	Overview(ctx context.Context, userID uuid.UUID) (*model.XPOverviewResponse, error)
	// SyncLogs runs an incremental evaluation pass over the user's study
	// logs, granting XP for any log not yet processed.
	SyncLogs(ctx context.Context, userID uuid.UUID) error
	Grant(ctx context.Context, userID uuid.UUID, req *model.GrantXPRequest) (*model.XPOverviewResponse, error)
	Remove(ctx context.Context, userID uuid.UUID, req *model.RemoveXPRequest) (*model.XPOverviewResponse, error)
	// Reset wipes the ledger, processed set and cached engine for the user.
	Reset(ctx context.Context, userID uuid.UUID) error
}

// gormLedgerStore adapts XPRepository to the engine's LedgerStore.
type gormLedgerStore struct {
	db   *gorm.DB
	repo repository.XPRepository
}

func (s *gormLedgerStore) Fetch(ctx context.Context, userID uuid.UUID) (int, []model.XPHistoryEntry, error) {
	return s.repo.FetchLedger(ctx, s.db, userID)
}

func (s *gormLedgerStore) Upsert(ctx context.Context, userID uuid.UUID, total int, history []model.XPHistoryEntry) error {
	return s.repo.UpsertLedger(ctx, s.db, userID, total, history)
}

func (s *gormLedgerStore) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.repo.ClearLedger(ctx, s.db, userID)
}

// gormProcessedStore adapts XPRepository to the engine's ProcessedLogStore.
type gormProcessedStore struct {
	db   *gorm.DB
	repo repository.XPRepository
}

func (s *gormProcessedStore) Load(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.repo.LoadProcessed(ctx, s.db, userID)
}

func (s *gormProcessedStore) Add(ctx context.Context, userID uuid.UUID, logIDs []string) error {
	return s.repo.AddProcessed(ctx, s.db, userID, logIDs)
}

func (s *gormProcessedStore) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.repo.ClearProcessed(ctx, s.db, userID)
}

type xpService struct {
	db           *gorm.DB
	studyLogRepo repository.StudyLogRepository
	store        xp.LedgerStore
	fallback     xp.FallbackStore
	processed    xp.ProcessedLogStore
	notifier     xp.Notifier
	logger       *slog.Logger

	mu      sync.Mutex
	engines map[uuid.UUID]*xp.Engine
}

// NewXPService wires the durable gorm-backed stores, the local fallback and
// the notifier into per-user engines. fallback is usually a
// repository.LocalStore; it carries both the ledger and the processed-log set
// when the durable store is unreachable.
func NewXPService(
	db *gorm.DB,
	xpRepo repository.XPRepository,
	studyLogRepo repository.StudyLogRepository,
	fallback xp.FallbackStore,
	notifier xp.Notifier,
	logger *slog.Logger,
) XPService {
	if logger == nil {
		logger = slog.Default()
	}
	return &xpService{
		db:           db,
		studyLogRepo: studyLogRepo,
		store:        &gormLedgerStore{db: db, repo: xpRepo},
		fallback:     fallback,
		processed:    &gormProcessedStore{db: db, repo: xpRepo},
		notifier:     notifier,
		logger:       logger,
		engines:      make(map[uuid.UUID]*xp.Engine),
	}
}

// engineFor returns the user's engine, creating and hydrating it on first
// use. The log list is only fetched when hydration still needs it, so a
// missing ledger can be bulk-initialized; hydrated engines skip the query.
func (s *xpService) engineFor(ctx context.Context, userID uuid.UUID) (*xp.Engine, error) {
	s.mu.Lock()
	engine, ok := s.engines[userID]
	if !ok {
		engine = xp.NewEngine(userID, s.store, s.fallback, s.processed, s.fallback, s.notifier, s.logger)
		s.engines[userID] = engine
	}
	s.mu.Unlock()

	if engine.Hydrated() {
		return engine, nil
	}
	logs, err := s.studyLogRepo.FindByUser(ctx, s.db, userID)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to load study logs for XP engine", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}
	engine.Load(ctx, logs)
	return engine, nil
}

func (s *xpService) Overview(ctx context.Context, userID uuid.UUID) (*model.XPOverviewResponse, error) {
	engine, err := s.engineFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	overview := engine.Overview()
	return &overview, nil
}

func (s *xpService) SyncLogs(ctx context.Context, userID uuid.UUID) error {
	engine, err := s.engineFor(ctx, userID)
	if err != nil {
		return err
	}
	logs, err := s.studyLogRepo.FindByUser(ctx, s.db, userID)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list study logs for XP sync", "error", err, "user_id", userID.String())
		return model.ErrInternalServer
	}
	engine.ProcessLogs(ctx, logs)
	return nil
}

func (s *xpService) Grant(ctx context.Context, userID uuid.UUID, req *model.GrantXPRequest) (*model.XPOverviewResponse, error) {
	engine, err := s.engineFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	icon := req.Icon
	if icon == "" {
		icon = xp.IconManual
	}
	if err := engine.AddXP(ctx, req.Amount, req.Reason, icon, req.IsBonus); err != nil {
		return nil, model.NewAppError("INVALID_AMOUNT", "A quantidade de XP deve ser positiva.", "amount", err)
	}

	overview := engine.Overview()
	return &overview, nil
}

func (s *xpService) Remove(ctx context.Context, userID uuid.UUID, req *model.RemoveXPRequest) (*model.XPOverviewResponse, error) {
	engine, err := s.engineFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := engine.RemoveXP(ctx, req.Amount, req.Reason); err != nil {
		return nil, model.NewAppError("INVALID_AMOUNT", "A quantidade de XP deve ser positiva.", "amount", err)
	}

	overview := engine.Overview()
	return &overview, nil
}

func (s *xpService) Reset(ctx context.Context, userID uuid.UUID) error {
	engine, err := s.engineFor(ctx, userID)
	if err != nil {
		return err
	}
	if err := engine.Reset(ctx); err != nil {
		middleware.GetLogger(ctx).Error("Failed to reset XP ledger", "error", err, "user_id", userID.String())
		return model.ErrInternalServer
	}

	// Drop the cached engine so the next access re-hydrates from scratch.
	s.mu.Lock()
	delete(s.engines, userID)
	s.mu.Unlock()
	return nil
}
