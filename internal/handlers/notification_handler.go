// internal/handlers/notification_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/service"
	"studyflow/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	service service.NotificationService
	logger  *slog.Logger
}

func NewNotificationHandler(s service.NotificationService, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		service: s,
		logger:  logger,
	}
}

// GetNotifications lists the user's notifications, newest first. The "limit"
// query parameter caps the page size.
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetNotifications"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, _ = strconv.Atoi(s)
	}

	notifications, err := h.service.ListNotifications(r.Context(), userID, limit)
	if err != nil {
		logger.Error("Error listing notifications in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if notifications == nil {
		notifications = []*model.Notification{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, notifications, logger)
}

// PostMarkRead marks one notification as read.
func (h *NotificationHandler) PostMarkRead(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostMarkRead"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	notificationID, err := uuid.Parse(chi.URLParam(r, "notification_id"))
	if err != nil {
		appErr := model.NewAppError("INVALID_URL_PARAM", "O identificador da notificação é inválido.", "notification_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.service.MarkRead(r.Context(), userID, notificationID); err != nil {
		logger.Error("Error marking notification read in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
