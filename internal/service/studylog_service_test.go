// internal/service/studylog_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"studyflow/internal/model"
	"studyflow/internal/repository/mocks"
	servicemocks "studyflow/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDBStudyLog() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect database for testing: " + err.Error())
	}
	return db
}

func Test_studyLogService_CreateStudyLog(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBStudyLog()

	userID := uuid.New()
	subjectID := uuid.New()
	subject := &model.Subject{SubjectID: subjectID, UserID: userID, Name: "Português"}

	tests := []struct {
		name      string
		req       *model.PostStudyLogRequest
		setupMock func(logRepo *mocks.StudyLogRepository, subjRepo *mocks.SubjectRepository, xpSvc *servicemocks.MockXPService)
		wantErr   error
		check     func(t *testing.T, log *model.StudyLog)
	}{
		{
			name: "cria sessão e dispara a avaliação de XP",
			req: &model.PostStudyLogRequest{
				SubjectID: subjectID.String(),
				Hours:     1,
				Pages:     10,
				Correct:   4,
			},
			setupMock: func(logRepo *mocks.StudyLogRepository, subjRepo *mocks.SubjectRepository, xpSvc *servicemocks.MockXPService) {
				subjRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID, subjectID).
					Return(subject, nil).Once()
				logRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.StudyLog")).
					Run(func(args mock.Arguments) {
						log := args.Get(2).(*model.StudyLog)
						assert.Equal(t, userID, log.UserID)
						assert.Equal(t, subjectID, log.SubjectID)
						assert.Equal(t, model.StudyTypeTheory, log.StudyType, "study type defaults to theory")
						assert.False(t, log.StudiedAt.IsZero(), "studied_at defaults to now")
					}).
					Return(nil).Once()
				xpSvc.On("SyncLogs", ctx, userID).Return(nil).Once()
			},
			check: func(t *testing.T, log *model.StudyLog) {
				assert.NotEqual(t, uuid.Nil, log.LogID)
				assert.Equal(t, 1, log.Hours)
				assert.Equal(t, 10, log.Pages)
			},
		},
		{
			name: "sessão persiste mesmo com falha na avaliação de XP",
			req: &model.PostStudyLogRequest{
				SubjectID: subjectID.String(),
				Minutes:   30,
			},
			setupMock: func(logRepo *mocks.StudyLogRepository, subjRepo *mocks.SubjectRepository, xpSvc *servicemocks.MockXPService) {
				subjRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID, subjectID).
					Return(subject, nil).Once()
				logRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.StudyLog")).
					Return(nil).Once()
				// The grant is only delayed: the next evaluation pass picks
				// the log up, so creation still succeeds.
				xpSvc.On("SyncLogs", ctx, userID).Return(model.ErrInternalServer).Once()
			},
			check: func(t *testing.T, log *model.StudyLog) {
				assert.Equal(t, 30, log.Minutes)
			},
		},
		{
			name: "rejeita identificador de disciplina inválido",
			req: &model.PostStudyLogRequest{
				SubjectID: "not-a-uuid",
			},
			setupMock: func(logRepo *mocks.StudyLogRepository, subjRepo *mocks.SubjectRepository, xpSvc *servicemocks.MockXPService) {},
			wantErr:   model.ErrInvalidInput,
		},
		{
			name: "rejeita disciplina inexistente",
			req: &model.PostStudyLogRequest{
				SubjectID: subjectID.String(),
			},
			setupMock: func(logRepo *mocks.StudyLogRepository, subjRepo *mocks.SubjectRepository, xpSvc *servicemocks.MockXPService) {
				subjRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID, subjectID).
					Return(nil, model.ErrNotFound).Once()
			},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logRepo := mocks.NewStudyLogRepository(t)
			subjRepo := mocks.NewSubjectRepository(t)
			xpSvc := servicemocks.NewMockXPService(t)
			tc.setupMock(logRepo, subjRepo, xpSvc)

			svc := NewStudyLogService(db, logRepo, subjRepo, xpSvc)
			log, err := svc.CreateStudyLog(ctx, userID, tc.req)

			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, log)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, log)
			if tc.check != nil {
				tc.check(t, log)
			}
		})
	}
}

func Test_studyLogService_CreateStudyLog_KeepsExplicitStudiedAt(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBStudyLog()

	userID := uuid.New()
	subjectID := uuid.New()
	studiedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	logRepo := mocks.NewStudyLogRepository(t)
	subjRepo := mocks.NewSubjectRepository(t)
	xpSvc := servicemocks.NewMockXPService(t)

	subjRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID, subjectID).
		Return(&model.Subject{SubjectID: subjectID, UserID: userID, Name: "Matemática"}, nil).Once()
	logRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.StudyLog")).
		Return(nil).Once()
	xpSvc.On("SyncLogs", ctx, userID).Return(nil).Once()

	svc := NewStudyLogService(db, logRepo, subjRepo, xpSvc)
	log, err := svc.CreateStudyLog(ctx, userID, &model.PostStudyLogRequest{
		SubjectID: subjectID.String(),
		StudyType: "questions",
		StudiedAt: &studiedAt,
	})

	require.NoError(t, err)
	assert.Equal(t, studiedAt, log.StudiedAt)
	assert.Equal(t, "questions", log.StudyType)
}

func Test_studyLogService_DeleteStudyLog(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBStudyLog()

	userID := uuid.New()
	logID := uuid.New()

	t.Run("apaga a sessão sem mexer no XP", func(t *testing.T) {
		logRepo := mocks.NewStudyLogRepository(t)
		subjRepo := mocks.NewSubjectRepository(t)
		xpSvc := servicemocks.NewMockXPService(t)

		// No XP service expectation: the grant already made stays put.
		logRepo.On("Delete", ctx, mock.AnythingOfType("*gorm.DB"), userID, logID).
			Return(nil).Once()

		svc := NewStudyLogService(db, logRepo, subjRepo, xpSvc)
		require.NoError(t, svc.DeleteStudyLog(ctx, userID, logID))
	})

	t.Run("retorna não encontrado para sessão inexistente", func(t *testing.T) {
		logRepo := mocks.NewStudyLogRepository(t)
		subjRepo := mocks.NewSubjectRepository(t)
		xpSvc := servicemocks.NewMockXPService(t)

		logRepo.On("Delete", ctx, mock.AnythingOfType("*gorm.DB"), userID, logID).
			Return(model.ErrNotFound).Once()

		svc := NewStudyLogService(db, logRepo, subjRepo, xpSvc)
		assert.ErrorIs(t, svc.DeleteStudyLog(ctx, userID, logID), model.ErrNotFound)
	})
}

func Test_studyLogService_ResetAccount(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBStudyLog()

	userID := uuid.New()

	t.Run("apaga sessões e zera o XP", func(t *testing.T) {
		logRepo := mocks.NewStudyLogRepository(t)
		subjRepo := mocks.NewSubjectRepository(t)
		xpSvc := servicemocks.NewMockXPService(t)

		logRepo.On("DeleteByUser", ctx, mock.AnythingOfType("*gorm.DB"), userID).
			Return(nil).Once()
		xpSvc.On("Reset", ctx, userID).Return(nil).Once()

		svc := NewStudyLogService(db, logRepo, subjRepo, xpSvc)
		require.NoError(t, svc.ResetAccount(ctx, userID))
	})

	t.Run("propaga falha do reset de XP", func(t *testing.T) {
		logRepo := mocks.NewStudyLogRepository(t)
		subjRepo := mocks.NewSubjectRepository(t)
		xpSvc := servicemocks.NewMockXPService(t)

		logRepo.On("DeleteByUser", ctx, mock.AnythingOfType("*gorm.DB"), userID).
			Return(nil).Once()
		xpSvc.On("Reset", ctx, userID).Return(model.ErrInternalServer).Once()

		svc := NewStudyLogService(db, logRepo, subjRepo, xpSvc)
		assert.ErrorIs(t, svc.ResetAccount(ctx, userID), model.ErrInternalServer)
	})
}
