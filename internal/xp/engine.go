// internal/xp/engine.go
package xp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyflow/internal/model"
)

// HistoryLimit caps the retained history. Older entries are evicted from the
// tail; the total remains derivable from the full sequence of applied deltas.
const HistoryLimit = 50

// LedgerStore persists a user's total and history. Implementations must
// return model.ErrNotFound when no ledger exists yet and model.ErrSchemaMissing
// when the backing table has not been created; both are expected first-use
// states, not failures.
type LedgerStore interface {
	Fetch(ctx context.Context, userID uuid.UUID) (int, []model.XPHistoryEntry, error)
	Upsert(ctx context.Context, userID uuid.UUID, total int, history []model.XPHistoryEntry) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// ProcessedLogStore persists the set of log ids already converted into XP.
type ProcessedLogStore interface {
	Load(ctx context.Context, userID uuid.UUID) ([]string, error)
	Add(ctx context.Context, userID uuid.UUID, logIDs []string) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// FallbackStore is the local-only persistence tier: it takes both the ledger
// and the processed-log set when the durable store is unreachable.
type FallbackStore interface {
	LedgerStore
	ProcessedLogStore
}

// Notifier surfaces user-facing warnings (XP removals). Fire and forget.
type Notifier interface {
	Warn(ctx context.Context, userID uuid.UUID, message string)
}

// Engine owns one user's XP ledger: the running total, the capped history and
// the processed-log bookkeeping that guarantees each study log grants XP at
// most once no matter how often the log list is re-evaluated.
//
// All state lives on the instance (no package-level globals) and is guarded
// by a single mutex. Durable-store failures never corrupt in-memory state:
// the in-memory ledger stays authoritative and writes fall back to the local
// store. Across processes the backing store is last-write-wins; the engine
// makes no cross-process exclusion claims.
type Engine struct {
	userID       uuid.UUID
	store        LedgerStore // durable, keyed by user
	fallback     LedgerStore // local-only fallback
	processed    ProcessedLogStore
	fallbackSeen ProcessedLogStore // local-only fallback for the seen-set
	notifier     Notifier
	logger       *slog.Logger

	mu       sync.Mutex
	loaded   bool
	totalXP  int
	history  []model.XPHistoryEntry
	seen     map[string]struct{} // processed log ids
	inflight map[string]struct{} // guards a single evaluation pass
	detector Detector
}

func NewEngine(userID uuid.UUID, store, fallback LedgerStore, processed, fallbackSeen ProcessedLogStore, notifier Notifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		userID:       userID,
		store:        store,
		fallback:     fallback,
		processed:    processed,
		fallbackSeen: fallbackSeen,
		notifier:     notifier,
		logger:       logger.With(slog.String("component", "xp_engine"), slog.String("user_id", userID.String())),
		seen:         make(map[string]struct{}),
		inflight:     make(map[string]struct{}),
	}
}

// Load hydrates the engine from the durable store, falling back to the local
// store, and finally bulk-initializing from the known logs when no ledger
// exists anywhere. Bulk initialization marks every known log id as processed,
// including those worth zero XP, so the subsequent incremental pass cannot
// re-award them. Safe to call more than once; only the first call hydrates.
func (e *Engine) Load(ctx context.Context, logs []*model.StudyLog) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return
	}

	// The seen-set is the union of both tiers: during a durable-store outage
	// new ids land only in the fallback, and they must survive the store
	// coming back.
	ids, err := e.processed.Load(ctx, e.userID)
	if err != nil && !e.isExpectedAbsence(err) {
		e.logger.Error("Failed to load processed log ids from durable store", slog.Any("error", err))
	}
	for _, id := range ids {
		e.seen[id] = struct{}{}
	}
	ids, err = e.fallbackSeen.Load(ctx, e.userID)
	if err != nil && !e.isExpectedAbsence(err) {
		e.logger.Error("Failed to load processed log ids from fallback store", slog.Any("error", err))
	}
	for _, id := range ids {
		e.seen[id] = struct{}{}
	}

	total, history, err := e.store.Fetch(ctx, e.userID)
	if err != nil {
		if !e.isExpectedAbsence(err) {
			e.logger.Error("Failed to fetch ledger from durable store", slog.Any("error", err))
		}
		total, history, err = e.fallback.Fetch(ctx, e.userID)
	}
	if err == nil {
		e.totalXP = total
		e.history = history
		e.loaded = true
		e.detector.Observe(model.ResolveElo(e.totalXP))
		return
	}
	if !e.isExpectedAbsence(err) {
		e.logger.Error("Failed to fetch ledger from fallback store", slog.Any("error", err))
	}

	// No stored ledger anywhere: bulk-initialize from all known logs.
	sum := 0
	newIDs := make([]string, 0, len(logs))
	for _, l := range logs {
		sum += ForLog(l)
		id := l.LogID.String()
		if _, ok := e.seen[id]; !ok {
			e.seen[id] = struct{}{}
			newIDs = append(newIDs, id)
		}
	}
	e.totalXP = sum
	e.history = nil
	e.loaded = true
	e.markProcessed(ctx, newIDs)
	e.persistLocked(ctx)
	e.detector.Observe(model.ResolveElo(e.totalXP))
}

// ProcessLogs runs one incremental evaluation pass: every log not yet marked
// processed is converted into a grant (when its XP is positive) and marked
// processed. The in-flight set keeps a re-entrant scan from double-counting a
// log before its processed mark persists.
func (e *Engine) ProcessLogs(ctx context.Context, logs []*model.StudyLog) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		e.logger.Warn("ProcessLogs called before Load; ignoring pass")
		return
	}

	var newIDs []string
	for _, l := range logs {
		id := l.LogID.String()
		if _, ok := e.seen[id]; ok {
			continue
		}
		if _, ok := e.inflight[id]; ok {
			continue
		}
		e.inflight[id] = struct{}{}

		if amount := ForLog(l); amount > 0 {
			e.applyLocked(ctx, amount, GrantReason(l), IconStudy, false)
		}
		e.seen[id] = struct{}{}
		delete(e.inflight, id)
		newIDs = append(newIDs, id)
	}
	if len(newIDs) > 0 {
		e.markProcessed(ctx, newIDs)
		e.persistLocked(ctx)
		e.detector.Observe(model.ResolveElo(e.totalXP))
	}
}

// AddXP grants amount XP with an audit entry. amount must be non-negative;
// zero is a valid no-op.
func (e *Engine) AddXP(ctx context.Context, amount int, reason, icon string, isBonus bool) error {
	if amount < 0 {
		return model.ErrInvalidInput
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if amount == 0 {
		return nil
	}
	e.applyLocked(ctx, amount, reason, icon, isBonus)
	e.persistLocked(ctx)
	e.detector.Observe(model.ResolveElo(e.totalXP))
	return nil
}

// RemoveXP deducts amount XP, flooring the total at zero, and records the
// requested (not the realized) delta in the history. The user is warned via
// the notifier whenever amount is positive.
func (e *Engine) RemoveXP(ctx context.Context, amount int, reason string) error {
	if amount < 0 {
		return model.ErrInvalidInput
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if amount == 0 {
		return nil
	}
	e.totalXP -= amount
	if e.totalXP < 0 {
		e.totalXP = 0
	}
	e.prependLocked(-amount, reason, "", false)
	e.persistLocked(ctx)
	e.detector.Observe(model.ResolveElo(e.totalXP))
	if e.notifier != nil {
		e.notifier.Warn(ctx, e.userID, fmt.Sprintf("Você perdeu %d XP: %s", amount, reason))
	}
	return nil
}

// Hydrated reports whether Load already ran. Callers use it to skip
// assembling the log list a repeated Load would ignore anyway.
func (e *Engine) Hydrated() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Snapshot returns the current total and a copy of the history (newest first).
func (e *Engine) Snapshot() (int, []model.XPHistoryEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	history := make([]model.XPHistoryEntry, len(e.history))
	copy(history, e.history)
	return e.totalXP, history
}

// ConsumeUpgrade returns and clears the pending elo upgrade signal, if any.
func (e *Engine) ConsumeUpgrade() *model.EloUpgradeResponse {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detector.Consume()
}

// Overview assembles the full state the UI consumes. The pending upgrade
// signal is consumed by this call.
func (e *Engine) Overview() model.XPOverviewResponse {
	e.mu.Lock()
	defer e.mu.Unlock()
	history := make([]model.XPHistoryEntry, len(e.history))
	copy(history, e.history)
	current, next, progress, forNext := model.EloProgress(e.totalXP)
	return model.XPOverviewResponse{
		TotalXP:   e.totalXP,
		History:   history,
		Elo:       current,
		NextElo:   next,
		Progress:  progress,
		XPForNext: forNext,
		Upgrade:   e.detector.Consume(),
	}
}

// Reset wipes the ledger and the processed set, in memory and in both stores.
// Used by the account reset flow.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.totalXP = 0
	e.history = nil
	e.seen = make(map[string]struct{})
	e.inflight = make(map[string]struct{})
	e.loaded = false
	e.detector = Detector{}

	var errs []error
	if err := e.store.Clear(ctx, e.userID); err != nil && !e.isExpectedAbsence(err) {
		errs = append(errs, err)
	}
	if err := e.fallback.Clear(ctx, e.userID); err != nil && !e.isExpectedAbsence(err) {
		errs = append(errs, err)
	}
	if err := e.processed.Clear(ctx, e.userID); err != nil && !e.isExpectedAbsence(err) {
		errs = append(errs, err)
	}
	if err := e.fallbackSeen.Clear(ctx, e.userID); err != nil && !e.isExpectedAbsence(err) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (e *Engine) applyLocked(ctx context.Context, amount int, reason, icon string, isBonus bool) {
	e.totalXP += amount
	e.prependLocked(amount, reason, icon, isBonus)
}

func (e *Engine) prependLocked(amount int, reason, icon string, isBonus bool) {
	entry := model.XPHistoryEntry{
		EntryID:   uuid.New(),
		UserID:    e.userID,
		Amount:    amount,
		Reason:    reason,
		Icon:      icon,
		IsBonus:   isBonus,
		CreatedAt: time.Now(),
	}
	e.history = append([]model.XPHistoryEntry{entry}, e.history...)
	if len(e.history) > HistoryLimit {
		e.history = e.history[:HistoryLimit]
	}
}

// persistLocked writes the ledger best-effort: durable store first, local
// fallback when that fails. Failures are logged, never returned; in-memory
// state remains authoritative either way.
func (e *Engine) persistLocked(ctx context.Context) {
	err := e.store.Upsert(ctx, e.userID, e.totalXP, e.history)
	if err == nil {
		return
	}
	if !e.isExpectedAbsence(err) {
		e.logger.Error("Failed to persist ledger to durable store, using fallback", slog.Any("error", err))
	}
	if err := e.fallback.Upsert(ctx, e.userID, e.totalXP, e.history); err != nil {
		e.logger.Error("Failed to persist ledger to fallback store", slog.Any("error", err))
	}
}

// markProcessed persists newly seen ids the same way persistLocked writes the
// ledger: durable store first, local fallback when that fails. Losing the ids
// would re-grant the logs on the next hydration.
func (e *Engine) markProcessed(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	err := e.processed.Add(ctx, e.userID, ids)
	if err == nil {
		return
	}
	if !e.isExpectedAbsence(err) {
		e.logger.Error("Failed to persist processed log ids to durable store, using fallback", slog.Any("error", err))
	}
	if err := e.fallbackSeen.Add(ctx, e.userID, ids); err != nil {
		e.logger.Error("Failed to persist processed log ids to fallback store", slog.Any("error", err))
	}
}

// isExpectedAbsence reports whether err is one of the recognized first-use
// conditions (no ledger yet, table not migrated) that are intentionally not
// logged as errors.
func (e *Engine) isExpectedAbsence(err error) bool {
	return errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrSchemaMissing)
}
