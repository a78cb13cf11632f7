package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studytrack/studytrack-api/internal/models"
	appErrors "github.com/studytrack/studytrack-api/pkg/errors"
	"github.com/studytrack/studytrack-api/pkg/kvstore"
)

type gradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error)
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id string) error
}

// GradeView decorates a grade with its display band.
type GradeView struct {
	models.Grade
	Band      models.GradeBand `json:"band"`
	BandLabel string           `json:"band_label"`
	BandColor string           `json:"band_color"`
}

// ClassAverage is the per-class aggregate of the grade summary.
type ClassAverage struct {
	ClassName string           `json:"class_name"`
	Average   float64          `json:"average"`
	Band      models.GradeBand `json:"band"`
	Count     int              `json:"count"`
}

// GradeSummary aggregates a student's grades for the grades page.
type GradeSummary struct {
	OverallAverage float64          `json:"overall_average"`
	OverallBand    models.GradeBand `json:"overall_band"`
	TotalGrades    int              `json:"total_grades"`
	ClassAverages  []ClassAverage   `json:"class_averages"`
}

// GradeService provides grade-tracking use cases.
type GradeService struct {
	repo      gradeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService instance.
func NewGradeService(repo gradeRepository, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GradeService{repo: repo, validator: validate, logger: logger}
}

// List returns the user's grades, newest received first.
func (s *GradeService) List(ctx context.Context, studentID string) ([]GradeView, error) {
	grades, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	views := make([]GradeView, 0, len(grades))
	for _, g := range grades {
		views = append(views, newGradeView(g))
	}
	return views, nil
}

// Get returns a single grade owned by the user.
func (s *GradeService) Get(ctx context.Context, studentID, id string) (*GradeView, error) {
	grade, err := s.loadOwned(ctx, studentID, id)
	if err != nil {
		return nil, err
	}
	v := newGradeView(*grade)
	return &v, nil
}

// Create records a new grade for the user.
func (s *GradeService) Create(ctx context.Context, studentID string, req models.CreateGradeRequest) (*GradeView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	received := req.DateReceived
	if received.IsZero() {
		received = time.Now().UTC()
	}
	grade := &models.Grade{
		StudentID:      studentID,
		AssignmentName: req.AssignmentName,
		ClassID:        req.ClassID,
		ClassName:      req.ClassName,
		Value:          req.Grade,
		DateReceived:   received,
		Notes:          req.Notes,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to create grade")
	}

	v := newGradeView(*grade)
	return &v, nil
}

// Update applies partial edits to a grade owned by the user.
func (s *GradeService) Update(ctx context.Context, studentID, id string, req models.UpdateGradeRequest) (*GradeView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	grade, err := s.loadOwned(ctx, studentID, id)
	if err != nil {
		return nil, err
	}

	if req.AssignmentName != nil {
		grade.AssignmentName = *req.AssignmentName
	}
	if req.ClassName != nil {
		grade.ClassName = *req.ClassName
	}
	if req.Grade != nil {
		grade.Value = *req.Grade
	}
	if req.DateReceived != nil {
		grade.DateReceived = *req.DateReceived
	}
	if req.Notes != nil {
		grade.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to update grade")
	}

	v := newGradeView(*grade)
	return &v, nil
}

// Delete removes a grade. Deleting an already-absent record succeeds.
func (s *GradeService) Delete(ctx context.Context, studentID, id string) error {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if grade.StudentID != studentID {
		return appErrors.Clone(appErrors.ErrForbidden, "grade belongs to another user")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreWrite.Code, appErrors.ErrStoreWrite.Status, "failed to delete grade")
	}
	return nil
}

// Summary aggregates the user's grades: overall average plus per-class
// averages sorted best first.
func (s *GradeService) Summary(ctx context.Context, studentID string) (*GradeSummary, error) {
	grades, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}

	summary := &GradeSummary{TotalGrades: len(grades), ClassAverages: []ClassAverage{}}
	if len(grades) == 0 {
		summary.OverallBand = models.BandFor(0)
		return summary, nil
	}

	var total float64
	perClass := make(map[string][]float64)
	for _, g := range grades {
		total += g.Value
		perClass[g.ClassName] = append(perClass[g.ClassName], g.Value)
	}
	summary.OverallAverage = round1(total / float64(len(grades)))
	summary.OverallBand = models.BandFor(summary.OverallAverage)

	for name, values := range perClass {
		var sum float64
		for _, v := range values {
			sum += v
		}
		avg := round1(sum / float64(len(values)))
		summary.ClassAverages = append(summary.ClassAverages, ClassAverage{
			ClassName: name,
			Average:   avg,
			Band:      models.BandFor(avg),
			Count:     len(values),
		})
	}
	sort.Slice(summary.ClassAverages, func(i, j int) bool {
		if summary.ClassAverages[i].Average != summary.ClassAverages[j].Average {
			return summary.ClassAverages[i].Average > summary.ClassAverages[j].Average
		}
		return summary.ClassAverages[i].ClassName < summary.ClassAverages[j].ClassName
	})

	return summary, nil
}

func (s *GradeService) loadOwned(ctx context.Context, studentID, id string) (*models.Grade, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if grade.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "grade belongs to another user")
	}
	return grade, nil
}

func newGradeView(g models.Grade) GradeView {
	band := models.BandFor(g.Value)
	return GradeView{Grade: g, Band: band, BandLabel: band.Label(), BandColor: band.Color()}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
