// internal/xp/engine_test.go
package xp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"studyflow/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- in-memory store fakes ---

type fakeLedgerStore struct {
	mu      sync.Mutex
	totals  map[uuid.UUID]int
	history map[uuid.UUID][]model.XPHistoryEntry

	fetchErr  error
	upsertErr error
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		totals:  make(map[uuid.UUID]int),
		history: make(map[uuid.UUID][]model.XPHistoryEntry),
	}
}

func (s *fakeLedgerStore) Fetch(ctx context.Context, userID uuid.UUID) (int, []model.XPHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return 0, nil, s.fetchErr
	}
	total, ok := s.totals[userID]
	if !ok {
		return 0, nil, model.ErrNotFound
	}
	history := make([]model.XPHistoryEntry, len(s.history[userID]))
	copy(history, s.history[userID])
	return total, history, nil
}

func (s *fakeLedgerStore) Upsert(ctx context.Context, userID uuid.UUID, total int, history []model.XPHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.totals[userID] = total
	copied := make([]model.XPHistoryEntry, len(history))
	copy(copied, history)
	s.history[userID] = copied
	return nil
}

func (s *fakeLedgerStore) Clear(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.totals, userID)
	delete(s.history, userID)
	return nil
}

type fakeProcessedStore struct {
	mu   sync.Mutex
	sets map[uuid.UUID]map[string]struct{}

	loadErr error
	addErr  error
}

func newFakeProcessedStore() *fakeProcessedStore {
	return &fakeProcessedStore{sets: make(map[uuid.UUID]map[string]struct{})}
}

func (s *fakeProcessedStore) Load(ctx context.Context, userID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	var ids []string
	for id := range s.sets[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *fakeProcessedStore) Add(ctx context.Context, userID uuid.UUID, logIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addErr != nil {
		return s.addErr
	}
	if s.sets[userID] == nil {
		s.sets[userID] = make(map[string]struct{})
	}
	for _, id := range logIDs {
		s.sets[userID][id] = struct{}{}
	}
	return nil
}

func (s *fakeProcessedStore) Clear(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, userID)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Warn(ctx context.Context, userID uuid.UUID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

// --- helpers ---

func testEngine(t *testing.T) (*Engine, uuid.UUID, *fakeLedgerStore, *fakeLedgerStore, *fakeProcessedStore, *fakeNotifier) {
	t.Helper()
	userID := uuid.New()
	store := newFakeLedgerStore()
	fallback := newFakeLedgerStore()
	processed := newFakeProcessedStore()
	notifier := &fakeNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := NewEngine(userID, store, fallback, processed, newFakeProcessedStore(), notifier, logger)
	return engine, userID, store, fallback, processed, notifier
}

func studyLog(hours, minutes, pages, correct int) *model.StudyLog {
	return &model.StudyLog{
		LogID:   uuid.New(),
		Hours:   hours,
		Minutes: minutes,
		Pages:   pages,
		Correct: correct,
	}
}

// --- tests ---

func TestEngine_BulkInitSumsAllLogs(t *testing.T) {
	ctx := context.Background()
	engine, userID, store, _, processed, _ := testEngine(t)

	logs := []*model.StudyLog{
		studyLog(1, 0, 10, 4), // 50 XP
		studyLog(0, 30, 0, 0), // 5 XP
		studyLog(0, 5, 0, 0),  // 0 XP, still marked processed
	}
	engine.Load(ctx, logs)

	total, history := engine.Snapshot()
	assert.Equal(t, 55, total)
	assert.Empty(t, history, "bulk init carries no per-log entries")

	// Every log id is marked processed, including the zero-XP one.
	ids, err := processed.Load(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	// The ledger was persisted.
	storedTotal, _, err := store.Fetch(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 55, storedTotal)
}

func TestEngine_ProcessLogsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	engine, _, _, _, _, _ := testEngine(t)

	engine.Load(ctx, nil)

	logs := []*model.StudyLog{studyLog(1, 0, 10, 4)}
	engine.ProcessLogs(ctx, logs)
	engine.ProcessLogs(ctx, logs)
	engine.ProcessLogs(ctx, logs)

	total, history := engine.Snapshot()
	assert.Equal(t, 50, total, "re-running the pass must not double count")
	assert.Len(t, history, 1)
	assert.Equal(t, 50, history[0].Amount)
	assert.Equal(t, IconStudy, history[0].Icon)
}

func TestEngine_ZeroXPLogsMarkedProcessedWithoutEntry(t *testing.T) {
	ctx := context.Background()
	engine, userID, _, _, processed, _ := testEngine(t)

	engine.Load(ctx, nil)
	engine.ProcessLogs(ctx, []*model.StudyLog{studyLog(0, 5, 0, 0)})

	total, history := engine.Snapshot()
	assert.Equal(t, 0, total)
	assert.Empty(t, history)

	ids, err := processed.Load(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestEngine_BulkAndIncrementalAgree(t *testing.T) {
	ctx := context.Background()
	logs := []*model.StudyLog{
		studyLog(1, 0, 10, 4),
		studyLog(0, 30, 0, 0),
		studyLog(2, 15, 3, 7),
	}

	bulk, _, _, _, _, _ := testEngine(t)
	bulk.Load(ctx, logs)
	bulkTotal, _ := bulk.Snapshot()

	incremental, _, _, _, _, _ := testEngine(t)
	incremental.Load(ctx, nil)
	for _, l := range logs {
		incremental.ProcessLogs(ctx, []*model.StudyLog{l})
	}
	incrementalTotal, _ := incremental.Snapshot()

	assert.Equal(t, bulkTotal, incrementalTotal)
}

func TestEngine_LoadHydratesFromStore(t *testing.T) {
	ctx := context.Background()
	engine, userID, store, _, _, _ := testEngine(t)

	require.NoError(t, store.Upsert(ctx, userID, 1200, []model.XPHistoryEntry{
		{EntryID: uuid.New(), UserID: userID, Amount: 1200, Reason: "seed"},
	}))

	// Logs are ignored when a ledger already exists.
	engine.Load(ctx, []*model.StudyLog{studyLog(10, 0, 0, 0)})

	total, history := engine.Snapshot()
	assert.Equal(t, 1200, total)
	require.Len(t, history, 1)
	assert.Equal(t, "seed", history[0].Reason)

	// Hydrating an account above a threshold must not fire an upgrade.
	assert.Nil(t, engine.ConsumeUpgrade())
}

func TestEngine_LoadFallsBackToLocalStore(t *testing.T) {
	ctx := context.Background()
	engine, userID, store, fallback, _, _ := testEngine(t)

	store.fetchErr = errors.New("connection refused")
	require.NoError(t, fallback.Upsert(ctx, userID, 300, nil))

	engine.Load(ctx, nil)

	total, _ := engine.Snapshot()
	assert.Equal(t, 300, total)
}

func TestEngine_AddXP(t *testing.T) {
	ctx := context.Background()
	engine, _, _, _, _, _ := testEngine(t)
	engine.Load(ctx, nil)

	t.Run("negativo é rejeitado", func(t *testing.T) {
		err := engine.AddXP(ctx, -10, "hack", IconManual, false)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("zero é um no-op", func(t *testing.T) {
		require.NoError(t, engine.AddXP(ctx, 0, "nada", IconManual, false))
		total, history := engine.Snapshot()
		assert.Equal(t, 0, total)
		assert.Empty(t, history)
	})

	t.Run("concede e registra", func(t *testing.T) {
		require.NoError(t, engine.AddXP(ctx, 25, "Bônus semanal", IconBonus, true))
		total, history := engine.Snapshot()
		assert.Equal(t, 25, total)
		require.Len(t, history, 1)
		assert.Equal(t, 25, history[0].Amount)
		assert.True(t, history[0].IsBonus)
	})
}

func TestEngine_RemoveXPFloorsAtZeroAndRecordsRequested(t *testing.T) {
	ctx := context.Background()
	engine, _, _, _, _, notifier := testEngine(t)
	engine.Load(ctx, nil)

	require.NoError(t, engine.AddXP(ctx, 10, "inicial", IconManual, false))
	require.NoError(t, engine.RemoveXP(ctx, 15, "Penalidade"))

	total, history := engine.Snapshot()
	assert.Equal(t, 0, total, "total never goes below zero")
	require.Len(t, history, 2)
	assert.Equal(t, -15, history[0].Amount, "history records the requested amount")
	assert.Equal(t, "Penalidade", history[0].Reason)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "Você perdeu 15 XP: Penalidade", notifier.messages[0])
}

func TestEngine_RemoveXPRejectsNegative(t *testing.T) {
	ctx := context.Background()
	engine, _, _, _, _, notifier := testEngine(t)
	engine.Load(ctx, nil)

	err := engine.RemoveXP(ctx, -5, "negativo")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Empty(t, notifier.messages)
}

func TestEngine_HistoryCappedNewestFirst(t *testing.T) {
	ctx := context.Background()
	engine, _, _, _, _, _ := testEngine(t)
	engine.Load(ctx, nil)

	for i := 1; i <= HistoryLimit+10; i++ {
		require.NoError(t, engine.AddXP(ctx, i, "grant", IconManual, false))
	}

	total, history := engine.Snapshot()
	assert.Len(t, history, HistoryLimit)
	assert.Equal(t, HistoryLimit+10, history[0].Amount, "newest entry first")
	assert.Equal(t, 11, history[len(history)-1].Amount, "oldest surviving entry")

	// The total still reflects every applied delta, evicted or not.
	want := 0
	for i := 1; i <= HistoryLimit+10; i++ {
		want += i
	}
	assert.Equal(t, want, total)
}

func TestEngine_PersistFallsBackOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	engine, userID, store, fallback, _, _ := testEngine(t)
	engine.Load(ctx, nil)

	store.upsertErr = errors.New("connection refused")
	require.NoError(t, engine.AddXP(ctx, 40, "offline", IconManual, false))

	// In-memory state is authoritative.
	total, _ := engine.Snapshot()
	assert.Equal(t, 40, total)

	// The write landed in the fallback store.
	fallbackTotal, _, err := fallback.Fetch(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 40, fallbackTotal)
}

func TestEngine_SeenSetSurvivesRestartDuringOutage(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	down := errors.New("connection refused")

	// The fallback stores outlive the process; the durable stores stay down
	// for the whole scenario.
	fallback := newFakeLedgerStore()
	fallbackSeen := newFakeProcessedStore()

	newOutageEngine := func() *Engine {
		store := newFakeLedgerStore()
		store.fetchErr = down
		store.upsertErr = down
		processed := newFakeProcessedStore()
		processed.loadErr = down
		processed.addErr = down
		return NewEngine(userID, store, fallback, processed, fallbackSeen, nil, logger)
	}

	logs := []*model.StudyLog{studyLog(1, 0, 0, 0)} // 10 XP

	first := newOutageEngine()
	first.Load(ctx, nil)
	first.ProcessLogs(ctx, logs)
	total, _ := first.Snapshot()
	require.Equal(t, 10, total)

	// A restart drops the in-memory seen-set. With the durable store still
	// unreachable, only the fallback knows the log was already granted.
	second := newOutageEngine()
	second.Load(ctx, logs)
	second.ProcessLogs(ctx, logs)

	total, history := second.Snapshot()
	assert.Equal(t, 10, total, "the same log must not be granted twice")
	assert.Len(t, history, 1)
}

func TestEngine_UpgradeSignalConsumedByOverview(t *testing.T) {
	ctx := context.Background()
	engine, _, _, _, _, _ := testEngine(t)
	engine.Load(ctx, nil)

	require.NoError(t, engine.AddXP(ctx, 950, "quase lá", IconManual, false))
	overview := engine.Overview()
	assert.Nil(t, overview.Upgrade)

	require.NoError(t, engine.AddXP(ctx, 50, "cruzou", IconManual, false))
	overview = engine.Overview()
	require.NotNil(t, overview.Upgrade)
	assert.Equal(t, "bronze", overview.Upgrade.From.ID)
	assert.Equal(t, "prata", overview.Upgrade.To.ID)

	// One-shot: the next overview carries no upgrade.
	overview = engine.Overview()
	assert.Nil(t, overview.Upgrade)
	assert.Equal(t, 1000, overview.TotalXP)
	assert.Equal(t, "prata", overview.Elo.ID)
}

func TestEngine_Reset(t *testing.T) {
	ctx := context.Background()
	engine, userID, store, _, processed, _ := testEngine(t)

	logs := []*model.StudyLog{studyLog(1, 0, 0, 0)}
	engine.Load(ctx, logs)
	require.NoError(t, engine.AddXP(ctx, 100, "extra", IconManual, false))

	require.NoError(t, engine.Reset(ctx))

	_, _, err := store.Fetch(ctx, userID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	ids, err := processed.Load(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	// A fresh Load bulk-initializes again from the logs.
	engine.Load(ctx, logs)
	total, _ := engine.Snapshot()
	assert.Equal(t, 10, total)
}

func TestEngine_LastWriteWinsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := newFakeLedgerStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a := NewEngine(userID, store, newFakeLedgerStore(), newFakeProcessedStore(), newFakeProcessedStore(), nil, logger)
	b := NewEngine(userID, store, newFakeLedgerStore(), newFakeProcessedStore(), newFakeProcessedStore(), nil, logger)
	a.Load(ctx, nil)
	b.Load(ctx, nil)

	require.NoError(t, a.AddXP(ctx, 10, "a", IconManual, false))
	require.NoError(t, b.AddXP(ctx, 20, "b", IconManual, false))

	// Concurrent instances overwrite each other; the store holds the last
	// writer's view, not a merge.
	total, _, err := store.Fetch(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 20, total)
}

func TestEngine_ProcessLogsBeforeLoadIsIgnored(t *testing.T) {
	ctx := context.Background()
	engine, _, _, _, _, _ := testEngine(t)

	engine.ProcessLogs(ctx, []*model.StudyLog{studyLog(1, 0, 0, 0)})
	total, _ := engine.Snapshot()
	assert.Equal(t, 0, total)
}
