package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studytrack/studytrack-api/internal/dates"
	"github.com/studytrack/studytrack-api/internal/models"
	appErrors "github.com/studytrack/studytrack-api/pkg/errors"
	"github.com/studytrack/studytrack-api/pkg/export"
	"github.com/studytrack/studytrack-api/pkg/storage"
)

// ExportKind selects what gets exported.
type ExportKind string

const (
	ExportGrades      ExportKind = "grades"
	ExportAssignments ExportKind = "assignments"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportFileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	ExportID     string       `json:"export_id"`
	RelativePath string       `json:"-"`
	Token        string       `json:"token"`
	URL          string       `json:"url"`
	Format       ExportFormat `json:"format"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// ExportService renders a user's grades or assignments to downloadable
// CSV/PDF files behind signed URLs.
type ExportService struct {
	grades      gradeRepository
	assignments assignmentRepository
	storage     exportFileStorage
	csv         csvRenderer
	pdf         pdfRenderer
	signer      *storage.SignedURLSigner
	clock       dates.Clock
	logger      *zap.Logger
	cfg         ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(grades gradeRepository, assignments assignmentRepository, fileStorage exportFileStorage, signer *storage.SignedURLSigner, clock dates.Clock, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = dates.System
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		grades:      grades,
		assignments: assignments,
		storage:     fileStorage,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		signer:      signer,
		clock:       clock,
		logger:      logger,
		cfg:         cfg,
	}
}

// Generate builds the dataset for the caller and stores the rendered file.
func (s *ExportService) Generate(ctx context.Context, studentID string, kind ExportKind, format ExportFormat) (*ExportResult, error) {
	dataset, title, err := s.buildDataset(ctx, studentID, kind)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("%s_%s_%s.%s", kind, studentID, s.clock.Now().UTC().Format("20060102_150405"), format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export URL")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ExportResult{
		ExportID:     exportID,
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download?token=%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildDataset(ctx context.Context, studentID string, kind ExportKind) (export.Dataset, string, error) {
	switch kind {
	case ExportGrades:
		return s.buildGradesDataset(ctx, studentID)
	case ExportAssignments:
		return s.buildAssignmentsDataset(ctx, studentID)
	default:
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export kind %q", kind))
	}
}

func (s *ExportService) buildGradesDataset(ctx context.Context, studentID string) (export.Dataset, string, error) {
	grades, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	rows := make([]map[string]string, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, map[string]string{
			"Assignment": g.AssignmentName,
			"Class":      g.ClassName,
			"Grade":      fmt.Sprintf("%.1f", g.Value),
			"Band":       string(models.BandFor(g.Value)),
			"Received":   g.DateReceived.Format("Jan 2, 2006"),
			"Notes":      g.Notes,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Assignment", "Class", "Grade", "Band", "Received", "Notes"},
		Rows:    rows,
	}
	return dataset, "Grade Report", nil
}

func (s *ExportService) buildAssignmentsDataset(ctx context.Context, studentID string) (export.Dataset, string, error) {
	assignments, err := s.assignments.ListByStudent(ctx, studentID)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	now := s.clock.Now()
	rows := make([]map[string]string, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, map[string]string{
			"Title":   a.Title,
			"Class":   a.ClassName,
			"Subject": a.Subject,
			"Type":    string(a.Type),
			"Status":  string(a.Status),
			"Due":     dates.FormatDueDateWithTime(now, a.DueDate, a.DueTime),
			"Urgency": string(dates.UrgencyFor(now, a.DueDate)),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Title", "Class", "Subject", "Type", "Status", "Due", "Urgency"},
		Rows:    rows,
	}
	return dataset, "Assignment Report", nil
}
