package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fieldpilot/dispatch-api/internal/models"
	appErrors "github.com/fieldpilot/dispatch-api/pkg/errors"
	"github.com/fieldpilot/dispatch-api/pkg/export"
)

// ExportFormat identifies a supported evaluation export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportEvaluationRepository interface {
	List(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, int, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult carries a rendered evaluation history file.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

// ExportService renders evaluation history as downloadable files.
type ExportService struct {
	evaluations exportEvaluationRepository
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
	maxRows     int
}

// NewExportService constructs an ExportService. maxRows bounds a single
// export; zero applies the default of 5000.
func NewExportService(evaluations exportEvaluationRepository, logger *zap.Logger, maxRows int) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = 5000
	}
	return &ExportService{
		evaluations: evaluations,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
		maxRows:     maxRows,
	}
}

var exportHeaders = []string{"created_at", "cron_id", "work_order_id", "payment_ok", "schedule_ok", "action", "counter_offer"}

// Evaluations renders the filtered evaluation history in the given format.
func (s *ExportService) Evaluations(ctx context.Context, filter models.EvaluationFilter, format ExportFormat) (*ExportResult, error) {
	filter.PageSize = s.maxRows
	if filter.Page < 1 {
		filter.Page = 1
	}

	evaluations, _, err := s.evaluations.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluations")
	}

	dataset := export.Dataset{Headers: exportHeaders}
	for _, evaluation := range evaluations {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"created_at":    evaluation.CreatedAt.UTC().Format(time.RFC3339),
			"cron_id":       evaluation.CronID,
			"work_order_id": evaluation.WorkOrderID,
			"payment_ok":    fmt.Sprintf("%t", evaluation.PaymentSatisfied),
			"schedule_ok":   fmt.Sprintf("%t", evaluation.ScheduleSatisfied),
			"action":        string(evaluation.Action),
			"counter_offer": string(evaluation.CounterOffer),
		})
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	result := &ExportResult{Rows: len(dataset.Rows)}
	switch format {
	case ExportFormatCSV:
		result.Payload, err = s.csv.Render(dataset)
		result.Filename = fmt.Sprintf("evaluations-%s.csv", stamp)
		result.ContentType = "text/csv"
	case ExportFormatPDF:
		result.Payload, err = s.pdf.Render(dataset, "Evaluation History")
		result.Filename = fmt.Sprintf("evaluations-%s.pdf", stamp)
		result.ContentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("evaluation export rendered",
		zap.String("format", string(format)),
		zap.Int("rows", result.Rows))
	return result, nil
}
