// internal/service/xp_service_test.go
package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"studyflow/internal/model"
	"studyflow/internal/repository"
	"studyflow/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *testNotifier) Warn(ctx context.Context, userID uuid.UUID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

// setupXPServiceTest wires a real migrated sqlite DB and a real local store;
// the study log source is mocked so each test controls the log list.
func setupXPServiceTest(t *testing.T, dsn string) (*gorm.DB, *repository.LocalStore, *mocks.StudyLogRepository, *testNotifier, XPService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.XPLedgerRecord{},
		&model.XPHistoryEntry{},
		&model.XPProcessedLog{},
	))

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	localStore, err := repository.NewLocalStore(filepath.Join(t.TempDir(), "local.db"), testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { localStore.Close() })

	studyLogRepo := new(mocks.StudyLogRepository)
	notifier := &testNotifier{}
	svc := NewXPService(db, repository.NewGormXPRepository(), studyLogRepo, localStore, notifier, testLogger)
	return db, localStore, studyLogRepo, notifier, svc
}

func xpTestLog(hours, pages, correct int) *model.StudyLog {
	return &model.StudyLog{
		LogID:   uuid.New(),
		Hours:   hours,
		Pages:   pages,
		Correct: correct,
	}
}

func Test_xpService_OverviewBulkInitializes(t *testing.T) {
	ctx := context.Background()
	_, _, studyLogRepo, _, svc := setupXPServiceTest(t, "file:xp_overview?mode=memory&cache=shared")

	userID := uuid.New()
	logs := []*model.StudyLog{
		xpTestLog(1, 10, 4), // 50 XP
		xpTestLog(0, 0, 1),  // 5 XP
	}
	studyLogRepo.On("FindByUser", mock.Anything, mock.AnythingOfType("*gorm.DB"), userID).
		Return(logs, nil)

	overview, err := svc.Overview(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 55, overview.TotalXP)
	assert.Empty(t, overview.History)
	assert.Equal(t, "bronze", overview.Elo.ID)
	require.NotNil(t, overview.NextElo)
	assert.Equal(t, "prata", overview.NextElo.ID)
	assert.Nil(t, overview.Upgrade, "hydration must not fire an upgrade")
}

func Test_xpService_SyncLogsGrantsOnce(t *testing.T) {
	ctx := context.Background()
	_, _, studyLogRepo, _, svc := setupXPServiceTest(t, "file:xp_sync?mode=memory&cache=shared")

	userID := uuid.New()
	first := xpTestLog(1, 0, 0) // 10 XP

	studyLogRepo.On("FindByUser", mock.Anything, mock.AnythingOfType("*gorm.DB"), userID).
		Return([]*model.StudyLog{first}, nil)

	require.NoError(t, svc.SyncLogs(ctx, userID))

	// First pass bulk-initializes with the log already present.
	overview, err := svc.Overview(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10, overview.TotalXP)

	// A second log shows up; only it is granted.
	second := xpTestLog(2, 0, 0) // 20 XP
	studyLogRepo.ExpectedCalls = nil
	studyLogRepo.On("FindByUser", mock.Anything, mock.AnythingOfType("*gorm.DB"), userID).
		Return([]*model.StudyLog{first, second}, nil)

	require.NoError(t, svc.SyncLogs(ctx, userID))
	require.NoError(t, svc.SyncLogs(ctx, userID)) // idempotent

	overview, err = svc.Overview(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 30, overview.TotalXP)
	require.Len(t, overview.History, 1, "only the incremental grant has an entry")
	assert.Equal(t, 20, overview.History[0].Amount)
}

func Test_xpService_GrantAndRemove(t *testing.T) {
	ctx := context.Background()
	_, _, studyLogRepo, notifier, svc := setupXPServiceTest(t, "file:xp_grant?mode=memory&cache=shared")

	userID := uuid.New()
	studyLogRepo.On("FindByUser", mock.Anything, mock.AnythingOfType("*gorm.DB"), userID).
		Return([]*model.StudyLog{}, nil)

	overview, err := svc.Grant(ctx, userID, &model.GrantXPRequest{
		Amount: 10, Reason: "Bônus de constância", IsBonus: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, overview.TotalXP)

	overview, err = svc.Remove(ctx, userID, &model.RemoveXPRequest{
		Amount: 15, Reason: "Meta semanal não cumprida",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, overview.TotalXP, "floored at zero")
	require.NotEmpty(t, overview.History)
	assert.Equal(t, -15, overview.History[0].Amount, "requested amount recorded")

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "Você perdeu 15 XP: Meta semanal não cumprida", notifier.messages[0])
}

func Test_xpService_StateSurvivesServiceRestart(t *testing.T) {
	ctx := context.Background()
	db, localStore, studyLogRepo, notifier, svc := setupXPServiceTest(t, "file:xp_restart?mode=memory&cache=shared")

	userID := uuid.New()
	studyLogRepo.On("FindByUser", mock.Anything, mock.AnythingOfType("*gorm.DB"), userID).
		Return([]*model.StudyLog{}, nil)

	_, err := svc.Grant(ctx, userID, &model.GrantXPRequest{Amount: 120, Reason: "Simulado"})
	require.NoError(t, err)

	// A new service instance over the same DB hydrates from the durable
	// store instead of re-initializing.
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc2 := NewXPService(db, repository.NewGormXPRepository(), studyLogRepo, localStore, notifier, testLogger)
	overview, err := svc2.Overview(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 120, overview.TotalXP)
	require.Len(t, overview.History, 1)
	assert.Equal(t, "Simulado", overview.History[0].Reason)
}

func Test_xpService_ResetWipesEverything(t *testing.T) {
	ctx := context.Background()
	db, _, studyLogRepo, _, svc := setupXPServiceTest(t, "file:xp_reset?mode=memory&cache=shared")

	userID := uuid.New()
	studyLogRepo.On("FindByUser", mock.Anything, mock.AnythingOfType("*gorm.DB"), userID).
		Return([]*model.StudyLog{xpTestLog(1, 0, 0)}, nil)

	overview, err := svc.Overview(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10, overview.TotalXP)

	require.NoError(t, svc.Reset(ctx, userID))

	var count int64
	require.NoError(t, db.Model(&model.XPLedgerRecord{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&model.XPProcessedLog{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Zero(t, count)
}

func Test_xpService_HydratedEngineSkipsLogFetch(t *testing.T) {
	ctx := context.Background()
	_, _, studyLogRepo, _, svc := setupXPServiceTest(t, "file:xp_hydrated?mode=memory&cache=shared")

	userID := uuid.New()
	studyLogRepo.On("FindByUser", mock.Anything, mock.AnythingOfType("*gorm.DB"), userID).
		Return([]*model.StudyLog{xpTestLog(1, 0, 0)}, nil).Once()

	overview, err := svc.Overview(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10, overview.TotalXP)

	// Later calls reuse the hydrated engine without refetching the log list.
	_, err = svc.Overview(ctx, userID)
	require.NoError(t, err)
	_, err = svc.Grant(ctx, userID, &model.GrantXPRequest{Amount: 5, Reason: "Extra"})
	require.NoError(t, err)

	studyLogRepo.AssertNumberOfCalls(t, "FindByUser", 1)
}

func Test_xpService_UpgradeSignalConsumedOnce(t *testing.T) {
	ctx := context.Background()
	_, _, studyLogRepo, _, svc := setupXPServiceTest(t, "file:xp_upgrade?mode=memory&cache=shared")

	userID := uuid.New()
	studyLogRepo.On("FindByUser", mock.Anything, mock.AnythingOfType("*gorm.DB"), userID).
		Return([]*model.StudyLog{}, nil)

	_, err := svc.Grant(ctx, userID, &model.GrantXPRequest{Amount: 950, Reason: "Acúmulo"})
	require.NoError(t, err)

	overview, err := svc.Grant(ctx, userID, &model.GrantXPRequest{Amount: 50, Reason: "Virada"})
	require.NoError(t, err)
	require.NotNil(t, overview.Upgrade)
	assert.Equal(t, "bronze", overview.Upgrade.From.ID)
	assert.Equal(t, "prata", overview.Upgrade.To.ID)

	overview, err = svc.Overview(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, overview.Upgrade)
}
