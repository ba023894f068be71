package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/board-result-api/internal/models"
	"github.com/noah-isme/board-result-api/internal/repository"
	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
	"github.com/noah-isme/board-result-api/pkg/export"
)

type resultSheetReader interface {
	SheetByExamination(ctx context.Context, examinationID string) ([]repository.ResultSheetRow, error)
}

type exportExaminationReader interface {
	FindByID(ctx context.Context, id string) (*models.Examination, error)
}

// ExportFormat selects the rendering backend for result sheets.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportArtifact is a rendered result sheet ready for download.
type ExportArtifact struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders examination result sheets to CSV or PDF.
type ExportService struct {
	results      resultSheetReader
	examinations exportExaminationReader
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	logger       *zap.Logger
}

// NewExportService creates a new export service.
func NewExportService(results resultSheetReader, examinations exportExaminationReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		results:      results,
		examinations: examinations,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
	}
}

// ResultSheet renders the ranked sheet for an examination.
func (s *ExportService) ResultSheet(ctx context.Context, examinationID string, format ExportFormat) (*ExportArtifact, error) {
	exam, err := s.examinations.FindByID(ctx, examinationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "examination not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load examination")
	}

	rows, err := s.results.SheetByExamination(ctx, examinationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result sheet")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no results recorded for this examination")
	}

	sheet := export.Sheet{
		Headers: []string{"Rank", "Roll Number", "Student", "Obtained", "Max Marks", "Percentage", "Grade", "Status"},
	}
	for _, row := range rows {
		rank := ""
		if row.OverallRank != nil {
			rank = strconv.Itoa(*row.OverallRank)
		}
		sheet.Rows = append(sheet.Rows, []string{
			rank,
			row.RollNumber,
			row.StudentName,
			fmt.Sprintf("%.2f", row.Obtained),
			fmt.Sprintf("%.2f", row.MaxMarks),
			fmt.Sprintf("%.2f", row.Percentage),
			row.Grade,
			row.ResultStatus,
		})
	}

	title := fmt.Sprintf("%s (%s) Result Sheet", exam.Name, exam.ExamType)

	switch format {
	case FormatPDF:
		data, err := s.pdf.Render(sheet, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportArtifact{
			FileName:    fmt.Sprintf("result-sheet-%s.pdf", examinationID),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	case FormatCSV, "":
		data, err := s.csv.Render(sheet)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportArtifact{
			FileName:    fmt.Sprintf("result-sheet-%s.csv", examinationID),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
