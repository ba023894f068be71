package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/board-result-api/internal/grading"
	"github.com/noah-isme/board-result-api/internal/models"
	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
)

type examinationRepository interface {
	List(ctx context.Context, filter models.ExaminationFilter) ([]models.Examination, int, error)
	FindByID(ctx context.Context, id string) (*models.Examination, error)
	ExistsByComposite(ctx context.Context, academicYearID, name string, classLevelID, streamID *string, examType models.ExamType, excludeID string) (bool, error)
	Create(ctx context.Context, exam *models.Examination) error
	Update(ctx context.Context, exam *models.Examination) error
	Delete(ctx context.Context, id string) error
}

// CreateExaminationRequest captures fields for scheduling an exam.
type CreateExaminationRequest struct {
	AcademicYearID   string    `json:"academic_year_id" validate:"required,uuid4"`
	Name             string    `json:"name" validate:"required"`
	ClassLevelID     *string   `json:"class_level_id,omitempty" validate:"omitempty,uuid4"`
	StreamID         *string   `json:"stream_id,omitempty" validate:"omitempty,uuid4"`
	ExamType         string    `json:"exam_type" validate:"required,oneof=MID_TERM FINAL UNIT_TEST PRACTICAL"`
	ExamDate         time.Time `json:"exam_date" validate:"required"`
	GradingPolicy    string    `json:"grading_policy" validate:"omitempty,oneof=LETTERED PASS_FAIL"`
	PassingThreshold *float64  `json:"passing_threshold,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// UpdateExaminationRequest modifies examination fields.
type UpdateExaminationRequest struct {
	Name             string    `json:"name" validate:"required"`
	ClassLevelID     *string   `json:"class_level_id,omitempty" validate:"omitempty,uuid4"`
	StreamID         *string   `json:"stream_id,omitempty" validate:"omitempty,uuid4"`
	ExamType         string    `json:"exam_type" validate:"required,oneof=MID_TERM FINAL UNIT_TEST PRACTICAL"`
	ExamDate         time.Time `json:"exam_date" validate:"required"`
	GradingPolicy    string    `json:"grading_policy" validate:"omitempty,oneof=LETTERED PASS_FAIL"`
	PassingThreshold *float64  `json:"passing_threshold,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// ExaminationService handles examination workflows.
type ExaminationService struct {
	repo      examinationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExaminationService creates a new examination service.
func NewExaminationService(repo examinationRepository, validate *validator.Validate, logger *zap.Logger) *ExaminationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExaminationService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated examinations.
func (s *ExaminationService) List(ctx context.Context, filter models.ExaminationFilter) ([]models.Examination, *models.Pagination, error) {
	exams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list examinations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return exams, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an examination by identifier.
func (s *ExaminationService) Get(ctx context.Context, id string) (*models.Examination, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "examination not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load examination")
	}
	return exam, nil
}

// Create schedules an examination. The year, name, class level,
// stream and exam type combination must be unique, with NULL parts
// compared as distinct values.
func (s *ExaminationService) Create(ctx context.Context, req CreateExaminationRequest) (*models.Examination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid examination payload")
	}

	req.Name = strings.TrimSpace(req.Name)
	examType := models.ExamType(req.ExamType)

	exists, err := s.repo.ExistsByComposite(ctx, req.AcademicYearID, req.Name, req.ClassLevelID, req.StreamID, examType, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check examination uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "examination already exists for this year, class, stream and type")
	}

	policy := models.PolicyLettered
	if req.GradingPolicy != "" {
		policy = models.GradingPolicy(req.GradingPolicy)
	}
	threshold := grading.DefaultPassingThreshold
	if req.PassingThreshold != nil {
		threshold = *req.PassingThreshold
	}

	exam := &models.Examination{
		AcademicYearID:   req.AcademicYearID,
		Name:             req.Name,
		ClassLevelID:     req.ClassLevelID,
		StreamID:         req.StreamID,
		ExamType:         examType,
		ExamDate:         req.ExamDate,
		GradingPolicy:    policy,
		PassingThreshold: threshold,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "examination already exists for this year, class, stream and type")
		}
		if errors.Is(err, appErrors.ErrInvalidReference) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "referenced year, class level or stream does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create examination")
	}
	return exam, nil
}

// Update modifies an examination.
func (s *ExaminationService) Update(ctx context.Context, id string, req UpdateExaminationRequest) (*models.Examination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid examination payload")
	}

	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "examination not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load examination")
	}

	req.Name = strings.TrimSpace(req.Name)
	examType := models.ExamType(req.ExamType)

	exists, err := s.repo.ExistsByComposite(ctx, exam.AcademicYearID, req.Name, req.ClassLevelID, req.StreamID, examType, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check examination uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "examination already exists for this year, class, stream and type")
	}

	exam.Name = req.Name
	exam.ClassLevelID = req.ClassLevelID
	exam.StreamID = req.StreamID
	exam.ExamType = examType
	exam.ExamDate = req.ExamDate
	if req.GradingPolicy != "" {
		exam.GradingPolicy = models.GradingPolicy(req.GradingPolicy)
	}
	if req.PassingThreshold != nil {
		exam.PassingThreshold = *req.PassingThreshold
	}

	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update examination")
	}
	return exam, nil
}

// Delete removes an examination and, via cascade, its results.
func (s *ExaminationService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "examination not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load examination")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete examination")
	}
	return nil
}
