// internal/handlers/xp_handler_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"studyflow/internal/handlers"
	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/service/mocks"
)

func newXPRouter(mockService *mocks.MockXPService) *chi.Mux {
	handler := handlers.NewXPHandler(mockService, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := chi.NewRouter()
	router.Use(middleware.DevUserContextMiddleware)
	router.Get("/api/v1/xp", handler.GetOverview)
	router.Post("/api/v1/xp/sync", handler.PostSync)
	router.Post("/api/v1/xp/grant", handler.PostGrant)
	router.Post("/api/v1/xp/remove", handler.PostRemove)
	return router
}

func newXPRequest(t *testing.T, method, url string, body interface{}, userID *uuid.UUID) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = bytes.NewBufferString(raw)
		} else {
			encoded, err := json.Marshal(body)
			assert.NoError(t, err)
			reader = bytes.NewBuffer(encoded)
		}
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	return req
}

func TestXPHandler_GetOverview(t *testing.T) {
	testUserID := uuid.New()

	overview := &model.XPOverviewResponse{
		TotalXP:   1200,
		History:   []model.XPHistoryEntry{},
		Elo:       model.Elos[1],
		NextElo:   &model.Elos[2],
		Progress:  5.0,
		XPForNext: 3800,
	}

	tests := []struct {
		name           string
		userID         *uuid.UUID
		setupMock      func(m *mocks.MockXPService)
		expectedStatus int
		expectedTotal  int
	}{
		{
			name:   "Sucesso - retorna o estado de XP",
			userID: &testUserID,
			setupMock: func(m *mocks.MockXPService) {
				m.On("Overview", mock.Anything, testUserID).
					Return(overview, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedTotal:  1200,
		},
		{
			name:           "Falha - sem usuário autenticado",
			userID:         nil,
			setupMock:      func(m *mocks.MockXPService) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "Falha - erro interno do serviço",
			userID: &testUserID,
			setupMock: func(m *mocks.MockXPService) {
				m.On("Overview", mock.Anything, testUserID).
					Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := mocks.NewMockXPService(t)
			tc.setupMock(mockService)
			router := newXPRouter(mockService)

			req := newXPRequest(t, "GET", "/api/v1/xp", nil, tc.userID)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)

			if tc.expectedStatus == http.StatusOK {
				var resp model.XPOverviewResponse
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tc.expectedTotal, resp.TotalXP)
				assert.Equal(t, "prata", resp.Elo.ID)
			} else {
				var errResp model.APIErrorResponse
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
				assert.NotEmpty(t, errResp.Error.Message)
			}
		})
	}
}

func TestXPHandler_PostSync(t *testing.T) {
	testUserID := uuid.New()

	overview := &model.XPOverviewResponse{
		TotalXP: 30,
		Elo:     model.Elos[0],
	}

	tests := []struct {
		name           string
		userID         *uuid.UUID
		setupMock      func(m *mocks.MockXPService)
		expectedStatus int
	}{
		{
			name:   "Sucesso - sincroniza e devolve o estado",
			userID: &testUserID,
			setupMock: func(m *mocks.MockXPService) {
				m.On("SyncLogs", mock.Anything, testUserID).Return(nil).Once()
				m.On("Overview", mock.Anything, testUserID).Return(overview, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Falha - sincronização falha",
			userID: &testUserID,
			setupMock: func(m *mocks.MockXPService) {
				m.On("SyncLogs", mock.Anything, testUserID).
					Return(model.ErrInternalServer).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "Falha - sem usuário autenticado",
			userID:         nil,
			setupMock:      func(m *mocks.MockXPService) {},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := mocks.NewMockXPService(t)
			tc.setupMock(mockService)
			router := newXPRouter(mockService)

			req := newXPRequest(t, "POST", "/api/v1/xp/sync", nil, tc.userID)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestXPHandler_PostGrant(t *testing.T) {
	testUserID := uuid.New()

	validReq := model.GrantXPRequest{Amount: 25, Reason: "Bônus de constância", IsBonus: true}
	granted := &model.XPOverviewResponse{TotalXP: 25, Elo: model.Elos[0]}

	tests := []struct {
		name           string
		userID         *uuid.UUID
		body           interface{}
		setupMock      func(m *mocks.MockXPService)
		expectedStatus int
	}{
		{
			name:   "Sucesso - concede XP",
			userID: &testUserID,
			body:   validReq,
			setupMock: func(m *mocks.MockXPService) {
				m.On("Grant", mock.Anything, testUserID, &validReq).
					Return(granted, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Falha - motivo ausente",
			userID:         &testUserID,
			body:           model.GrantXPRequest{Amount: 25},
			setupMock:      func(m *mocks.MockXPService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Falha - JSON malformado",
			userID:         &testUserID,
			body:           `{"amount": 25,`,
			setupMock:      func(m *mocks.MockXPService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "Falha - serviço rejeita a quantidade",
			userID: &testUserID,
			body:   validReq,
			setupMock: func(m *mocks.MockXPService) {
				appErr := model.NewAppError("INVALID_AMOUNT", "A quantidade de XP deve ser positiva.", "amount", model.ErrInvalidInput)
				m.On("Grant", mock.Anything, testUserID, &validReq).
					Return(nil, appErr).Once()
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Falha - sem usuário autenticado",
			userID:         nil,
			body:           validReq,
			setupMock:      func(m *mocks.MockXPService) {},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := mocks.NewMockXPService(t)
			tc.setupMock(mockService)
			router := newXPRouter(mockService)

			req := newXPRequest(t, "POST", "/api/v1/xp/grant", tc.body, tc.userID)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)

			if tc.expectedStatus == http.StatusOK {
				var resp model.XPOverviewResponse
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, 25, resp.TotalXP)
			}
		})
	}
}

func TestXPHandler_PostRemove(t *testing.T) {
	testUserID := uuid.New()

	validReq := model.RemoveXPRequest{Amount: 15, Reason: "Meta semanal não cumprida"}
	// The floor keeps the total at zero while the history records the
	// requested amount.
	afterRemove := &model.XPOverviewResponse{
		TotalXP: 0,
		History: []model.XPHistoryEntry{{Amount: -15, Reason: validReq.Reason}},
		Elo:     model.Elos[0],
	}

	tests := []struct {
		name           string
		userID         *uuid.UUID
		body           interface{}
		setupMock      func(m *mocks.MockXPService)
		expectedStatus int
	}{
		{
			name:   "Sucesso - remove XP com piso em zero",
			userID: &testUserID,
			body:   validReq,
			setupMock: func(m *mocks.MockXPService) {
				m.On("Remove", mock.Anything, testUserID, &validReq).
					Return(afterRemove, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Falha - motivo ausente",
			userID:         &testUserID,
			body:           model.RemoveXPRequest{Amount: 15},
			setupMock:      func(m *mocks.MockXPService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Falha - sem usuário autenticado",
			userID:         nil,
			body:           validReq,
			setupMock:      func(m *mocks.MockXPService) {},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := mocks.NewMockXPService(t)
			tc.setupMock(mockService)
			router := newXPRouter(mockService)

			req := newXPRequest(t, "POST", "/api/v1/xp/remove", tc.body, tc.userID)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)

			if tc.expectedStatus == http.StatusOK {
				var resp model.XPOverviewResponse
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, 0, resp.TotalXP)
				assert.Equal(t, -15, resp.History[0].Amount)
			}
		})
	}
}
