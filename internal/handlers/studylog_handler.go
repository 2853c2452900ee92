// internal/handlers/studylog_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/service"
	"studyflow/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type StudyLogHandler struct {
	service service.StudyLogService
	logger  *slog.Logger
}

func NewStudyLogHandler(s service.StudyLogService, logger *slog.Logger) *StudyLogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StudyLogHandler{
		service: s,
		logger:  logger,
	}
}

// PostStudyLog records a study session. The XP grant for the new session
// happens as part of the same request.
func (h *StudyLogHandler) PostStudyLog(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostStudyLog"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	var req model.PostStudyLogRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "O corpo da requisição é inválido.", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed", slog.Any("errors", validationErrors.Error()))
			appErr := webutil.NewValidationErrorResponse(validationErrors)
			webutil.HandleError(w, logger, appErr)
		} else {
			logger.Error("Unexpected error during validation", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
		}
		return
	}

	studyLog, err := h.service.CreateStudyLog(r.Context(), userID, &req)
	if err != nil {
		logger.Error("Error creating study log in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Study log created successfully", slog.String("log_id", studyLog.LogID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, studyLog, logger)
}

// GetStudyLogs lists the user's study sessions, newest first.
func (h *StudyLogHandler) GetStudyLogs(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetStudyLogs"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	logs, err := h.service.ListStudyLogs(r.Context(), userID)
	if err != nil {
		logger.Error("Error listing study logs in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if logs == nil {
		logs = []*model.StudyLog{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, logs, logger)
}

// GetStudyLog fetches one study session.
func (h *StudyLogHandler) GetStudyLog(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetStudyLog"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	logID, err := uuid.Parse(chi.URLParam(r, "log_id"))
	if err != nil {
		appErr := model.NewAppError("INVALID_URL_PARAM", "O identificador do registro é inválido.", "log_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	studyLog, err := h.service.GetStudyLog(r.Context(), userID, logID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Study log not found", slog.String("log_id", logID.String()))
		} else {
			logger.Error("Error getting study log from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, studyLog, logger)
}

// DeleteStudyLog removes one study session. The XP it already earned stays
// on the ledger.
func (h *StudyLogHandler) DeleteStudyLog(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteStudyLog"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	logID, err := uuid.Parse(chi.URLParam(r, "log_id"))
	if err != nil {
		appErr := model.NewAppError("INVALID_URL_PARAM", "O identificador do registro é inválido.", "log_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.service.DeleteStudyLog(r.Context(), userID, logID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Study log not found", slog.String("log_id", logID.String()))
		} else {
			logger.Error("Error deleting study log in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Study log deleted successfully", slog.String("log_id", logID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// ResetAccount wipes every study log and the XP ledger. Subjects are kept.
func (h *StudyLogHandler) ResetAccount(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ResetAccount"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	if err := h.service.ResetAccount(r.Context(), userID); err != nil {
		logger.Error("Error resetting account in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Account reset successfully")
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Todos os registros de estudo e o XP foram apagados.",
	}, logger)
}
