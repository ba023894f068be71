package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/board-result-api/internal/models"
	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
)

type academicYearSubjectRepository interface {
	List(ctx context.Context, filter models.AcademicYearSubjectFilter) ([]models.AcademicYearSubject, int, error)
	FindByID(ctx context.Context, id string) (*models.AcademicYearSubject, error)
	ExistsByCombination(ctx context.Context, academicYearID, subjectID string, classLevelID, streamID *string, excludeID string) (bool, error)
	Create(ctx context.Context, mapping *models.AcademicYearSubject) error
	Update(ctx context.Context, mapping *models.AcademicYearSubject) error
	Delete(ctx context.Context, id string) error
}

// CreateAcademicYearSubjectRequest binds a subject to a year.
type CreateAcademicYearSubjectRequest struct {
	AcademicYearID  string  `json:"academic_year_id" validate:"required,uuid4"`
	SubjectID       string  `json:"subject_id" validate:"required,uuid4"`
	ClassLevelID    *string `json:"class_level_id,omitempty" validate:"omitempty,uuid4"`
	StreamID        *string `json:"stream_id,omitempty" validate:"omitempty,uuid4"`
	MaxMarks        float64 `json:"max_marks" validate:"required,gt=0"`
	MinPassingMarks float64 `json:"min_passing_marks" validate:"gte=0"`
	IsCompulsory    bool    `json:"is_compulsory"`
	SyllabusVersion string  `json:"syllabus_version"`
}

// UpdateAcademicYearSubjectRequest modifies mapping fields. The key
// columns stay frozen; remappings are a delete plus create.
type UpdateAcademicYearSubjectRequest struct {
	MaxMarks        float64 `json:"max_marks" validate:"required,gt=0"`
	MinPassingMarks float64 `json:"min_passing_marks" validate:"gte=0"`
	IsCompulsory    bool    `json:"is_compulsory"`
	SyllabusVersion string  `json:"syllabus_version"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

// AcademicYearSubjectService manages the year-subject mappings that
// subject results reference.
type AcademicYearSubjectService struct {
	repo      academicYearSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicYearSubjectService creates a new mapping service.
func NewAcademicYearSubjectService(repo academicYearSubjectRepository, validate *validator.Validate, logger *zap.Logger) *AcademicYearSubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicYearSubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated mappings.
func (s *AcademicYearSubjectService) List(ctx context.Context, filter models.AcademicYearSubjectFilter) ([]models.AcademicYearSubject, *models.Pagination, error) {
	mappings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list year subjects")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return mappings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a mapping by identifier.
func (s *AcademicYearSubjectService) Get(ctx context.Context, id string) (*models.AcademicYearSubject, error) {
	mapping, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "year subject mapping not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year subject mapping")
	}
	return mapping, nil
}

// Create binds a subject to a year. A NULL class level or stream is a
// distinct key value, not a wildcard, so two mappings differing only
// in the NULL part are both allowed.
func (s *AcademicYearSubjectService) Create(ctx context.Context, req CreateAcademicYearSubjectRequest) (*models.AcademicYearSubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid year subject payload")
	}
	if req.MinPassingMarks > req.MaxMarks {
		return nil, appErrors.Clone(appErrors.ErrValidation, "min passing marks cannot exceed max marks")
	}

	exists, err := s.repo.ExistsByCombination(ctx, req.AcademicYearID, req.SubjectID, req.ClassLevelID, req.StreamID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check year subject combination")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject already mapped for this year, class level and stream")
	}

	mapping := &models.AcademicYearSubject{
		AcademicYearID:  req.AcademicYearID,
		SubjectID:       req.SubjectID,
		ClassLevelID:    req.ClassLevelID,
		StreamID:        req.StreamID,
		MaxMarks:        req.MaxMarks,
		MinPassingMarks: req.MinPassingMarks,
		IsCompulsory:    req.IsCompulsory,
		SyllabusVersion: req.SyllabusVersion,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, mapping); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "subject already mapped for this year, class level and stream")
		}
		if errors.Is(err, appErrors.ErrInvalidReference) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "referenced year, subject, class level or stream does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create year subject mapping")
	}
	return mapping, nil
}

// Update modifies marks configuration on an existing mapping.
func (s *AcademicYearSubjectService) Update(ctx context.Context, id string, req UpdateAcademicYearSubjectRequest) (*models.AcademicYearSubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid year subject payload")
	}
	if req.MinPassingMarks > req.MaxMarks {
		return nil, appErrors.Clone(appErrors.ErrValidation, "min passing marks cannot exceed max marks")
	}

	mapping, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "year subject mapping not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year subject mapping")
	}

	mapping.MaxMarks = req.MaxMarks
	mapping.MinPassingMarks = req.MinPassingMarks
	mapping.IsCompulsory = req.IsCompulsory
	mapping.SyllabusVersion = req.SyllabusVersion
	if req.IsActive != nil {
		mapping.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, mapping); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update year subject mapping")
	}
	return mapping, nil
}

// Delete removes a mapping.
func (s *AcademicYearSubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "year subject mapping not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year subject mapping")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete year subject mapping")
	}
	return nil
}
