// internal/handlers/subject_handler.go
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

type SubjectHandler struct {
	service service.SubjectService
	logger  *slog.Logger
}

func NewSubjectHandler(s service.SubjectService, logger *slog.Logger) *SubjectHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubjectHandler{
		service: s,
		logger:  logger,
	}
}

// PostSubject creates a subject inside the user's study cycle.
func (h *SubjectHandler) PostSubject(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostSubject"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	var req model.PostSubjectRequest
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

	subject, err := h.service.CreateSubject(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			appErr := model.NewAppError("DUPLICATE_SUBJECT", "Já existe uma disciplina com este nome.", "name", model.ErrConflict)
			webutil.HandleError(w, logger, appErr)
			return
		}
		logger.Error("Error creating subject in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Subject created successfully", slog.String("subject_id", subject.SubjectID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, subject, logger)
}

// GetSubjects lists the user's subjects ordered by cycle position.
func (h *SubjectHandler) GetSubjects(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetSubjects"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	subjects, err := h.service.ListSubjects(r.Context(), userID)
	if err != nil {
		logger.Error("Error listing subjects in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	if subjects == nil {
		subjects = []*model.Subject{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, subjects, logger)
}

// GetSubject fetches one subject.
func (h *SubjectHandler) GetSubject(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetSubject"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	subjectID, err := uuid.Parse(chi.URLParam(r, "subject_id"))
	if err != nil {
		appErr := model.NewAppError("INVALID_URL_PARAM", "O identificador da disciplina é inválido.", "subject_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	subject, err := h.service.GetSubject(r.Context(), userID, subjectID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Subject not found", slog.String("subject_id", subjectID.String()))
		} else {
			logger.Error("Error getting subject from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, subject, logger)
}

// PatchSubject updates the provided fields of a subject.
func (h *SubjectHandler) PatchSubject(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchSubject"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	subjectID, err := uuid.Parse(chi.URLParam(r, "subject_id"))
	if err != nil {
		appErr := model.NewAppError("INVALID_URL_PARAM", "O identificador da disciplina é inválido.", "subject_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("subject_id", subjectID.String()))

	var req model.PatchSubjectRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "O corpo da requisição é inválido.", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if req.Name == nil && req.Color == nil && req.CyclePosition == nil && req.Weight == nil {
		appErr := model.NewAppError("VALIDATION_ERROR", "Nenhum campo para atualizar foi informado.", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			appErr := webutil.NewValidationErrorResponse(validationErrors)
			webutil.HandleError(w, logger, appErr)
		} else {
			webutil.HandleError(w, logger, err)
		}
		return
	}

	subject, err := h.service.UpdateSubject(r.Context(), userID, subjectID, &req)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			appErr := model.NewAppError("DUPLICATE_SUBJECT", "Já existe uma disciplina com este nome.", "name", model.ErrConflict)
			webutil.HandleError(w, logger, appErr)
			return
		}
		logger.Error("Error updating subject in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Subject updated successfully")
	webutil.RespondWithJSON(w, http.StatusOK, subject, logger)
}

// DeleteSubject soft-deletes a subject. Existing study logs keep pointing at
// it.
func (h *SubjectHandler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteSubject"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "Credenciais de autenticação não encontradas.", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	subjectID, err := uuid.Parse(chi.URLParam(r, "subject_id"))
	if err != nil {
		appErr := model.NewAppError("INVALID_URL_PARAM", "O identificador da disciplina é inválido.", "subject_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.service.DeleteSubject(r.Context(), userID, subjectID); err != nil {
		logger.Error("Error deleting subject in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Subject deleted successfully", slog.String("subject_id", subjectID.String()))
	w.WriteHeader(http.StatusNoContent)
}
