package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"studyflow/internal/middleware"
	"studyflow/internal/model"
	"studyflow/internal/repository"
	"studyflow/internal/xp"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ReportService interface {
	// Summary aggregates the user's study logs in [from, to].
	Summary(ctx context.Context, userID uuid.UUID, from, to time.Time) (*model.StudySummaryResponse, error)
	// ExportXLSX renders the logs in [from, to] as an XLSX workbook.
	ExportXLSX(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]byte, error)
}

type reportService struct {
	db           *gorm.DB
	studyLogRepo repository.StudyLogRepository
	subjectRepo  repository.SubjectRepository
}

func NewReportService(db *gorm.DB, studyLogRepo repository.StudyLogRepository, subjectRepo repository.SubjectRepository) ReportService {
	return &reportService{
		db:           db,
		studyLogRepo: studyLogRepo,
		subjectRepo:  subjectRepo,
	}
}

func (s *reportService) Summary(ctx context.Context, userID uuid.UUID, from, to time.Time) (*model.StudySummaryResponse, error) {
	logger := middleware.GetLogger(ctx)

	logs, err := s.studyLogRepo.FindByUserBetween(ctx, s.db, userID, from, to)
	if err != nil {
		logger.Error("Failed to load study logs for summary", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}

	summary := &model.StudySummaryResponse{
		From:     from.Format(time.RFC3339),
		To:       to.Format(time.RFC3339),
		Sessions: len(logs),
	}

	hours := make([]float64, 0, len(logs))
	for _, l := range logs {
		h := xp.HoursEquivalent(l)
		hours = append(hours, h)
		summary.TotalHours += h
		summary.TotalPages += l.Pages
		summary.TotalCorrect += l.Correct
		summary.TotalWrong += l.Wrong
		summary.TotalBlank += l.Blank
	}

	if len(hours) > 0 {
		// stats only errors on empty input, which is excluded here.
		summary.MeanHours, _ = stats.Mean(hours)
		summary.MedianHours, _ = stats.Median(hours)
		summary.StdDevHours, _ = stats.StandardDeviation(hours)
	}

	return summary, nil
}

func (s *reportService) ExportXLSX(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]byte, error) {
	logger := middleware.GetLogger(ctx)

	logs, err := s.studyLogRepo.FindByUserBetween(ctx, s.db, userID, from, to)
	if err != nil {
		logger.Error("Failed to load study logs for export", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}

	subjects, err := s.subjectRepo.FindByUser(ctx, s.db, userID)
	if err != nil {
		logger.Error("Failed to load subjects for export", "error", err, "user_id", userID.String())
		return nil, model.ErrInternalServer
	}
	subjectNames := make(map[uuid.UUID]string, len(subjects))
	for _, sub := range subjects {
		subjectNames[sub.SubjectID] = sub.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if err := f.SetSheetName(sheet, "Sessões"); err == nil {
		sheet = "Sessões"
	}

	headers := []string{"Data", "Disciplina", "Tipo", "Horas", "Páginas", "Acertos", "Erros", "Em branco", "XP"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("reportService.ExportXLSX: %w", err)
		}
	}

	for row, l := range logs {
		name, ok := subjectNames[l.SubjectID]
		if !ok {
			name = "Disciplina removida"
		}
		values := []interface{}{
			l.StudiedAt.Format("2006-01-02 15:04"),
			name,
			l.StudyType,
			xp.HoursEquivalent(l),
			l.Pages,
			l.Correct,
			l.Wrong,
			l.Blank,
			xp.ForLog(l),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("reportService.ExportXLSX: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to serialize XLSX report", "error", err)
		return nil, model.ErrInternalServer
	}
	return buf.Bytes(), nil
}
