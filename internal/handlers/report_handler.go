// internal/handlers/report_handler.go
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/service"
	"studyflow/internal/webutil"
)

type ReportHandler struct {
	service service.ReportService
	logger  *slog.Logger
}

func NewReportHandler(s service.ReportService, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service: s,
		logger:  logger,
	}
}

// parsePeriod reads the optional "from"/"to" query parameters (RFC 3339).
// Defaults to the last 30 days.
func parsePeriod(r *http.Request) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, model.NewAppError("INVALID_URL_PARAM", "O parâmetro 'from' deve estar no formato RFC 3339.", "from", model.ErrInvalidInput)
		}
		from = t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, model.NewAppError("INVALID_URL_PARAM", "O parâmetro 'to' deve estar no formato RFC 3339.", "to", model.ErrInvalidInput)
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, model.NewAppError("INVALID_URL_PARAM", "O período informado é inválido: 'to' é anterior a 'from'.", "to", model.ErrInvalidInput)
	}
	return from, to, nil
}

// GetSummary returns aggregate statistics for the period.
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetSummary"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	from, to, err := parsePeriod(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), userID, from, to)
	if err != nil {
		logger.Error("Error building study summary in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, summary, logger)
}

// GetExport streams the period's study logs as an XLSX workbook.
func (h *ReportHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetExport"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	from, to, err := parsePeriod(r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	data, err := h.service.ExportXLSX(r.Context(), userID, from, to)
	if err != nil {
		logger.Error("Error exporting study report in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	filename := fmt.Sprintf("studyflow_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Error("Failed to write XLSX response", slog.Any("error", err))
	}
}
