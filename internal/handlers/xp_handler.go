// internal/handlers/xp_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/service"
	"studyflow/internal/webutil"

	"github.com/go-playground/validator/v10"
)

type XPHandler struct {
	service service.XPService
	logger  *slog.Logger
}

func NewXPHandler(s service.XPService, logger *slog.Logger) *XPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &XPHandler{
		service: s,
		logger:  logger,
	}
}

// GetOverview returns the XP total, history, current rank and, at most once
// per upgrade, the pending rank-up signal.
func (h *XPHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetOverview"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	overview, err := h.service.Overview(r.Context(), userID)
	if err != nil {
		logger.Error("Error building XP overview in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, overview, logger)
}

// PostSync runs an incremental XP evaluation pass over the user's logs.
func (h *XPHandler) PostSync(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostSync"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	if err := h.service.SyncLogs(r.Context(), userID); err != nil {
		logger.Error("XP sync failed in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	overview, err := h.service.Overview(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, overview, logger)
}

// PostGrant awards XP manually (bonuses, achievements).
func (h *XPHandler) PostGrant(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostGrant"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	var req model.GrantXPRequest
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

	overview, err := h.service.Grant(r.Context(), userID, &req)
	if err != nil {
		logger.Error("Error granting XP in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("XP granted successfully", slog.Int("amount", req.Amount))
	webutil.RespondWithJSON(w, http.StatusOK, overview, logger)
}

// PostRemove deducts XP. The total never goes below zero, but the history
// records the amount that was requested.
func (h *XPHandler) PostRemove(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostRemove"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	var req model.RemoveXPRequest
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

	overview, err := h.service.Remove(r.Context(), userID, &req)
	if err != nil {
		logger.Error("Error removing XP in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("XP removed successfully", slog.Int("amount", req.Amount))
	webutil.RespondWithJSON(w, http.StatusOK, overview, logger)
}
