package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/board-result-api/internal/models"
	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	ExistsByRollNumber(ctx context.Context, academicYearID string, classLevelID *string, rollNumber string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// userDirectory verifies identities against the external user service.
type userDirectory interface {
	VerifyStudent(ctx context.Context, userID string) (bool, error)
}

// CreateStudentRequest captures fields for enrolling a student.
type CreateStudentRequest struct {
	UserID         string  `json:"user_id" validate:"required"`
	RollNumber     string  `json:"roll_number" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	Email          string  `json:"email" validate:"required,email"`
	AcademicYearID string  `json:"academic_year_id" validate:"required,uuid4"`
	ClassLevelID   *string `json:"class_level_id,omitempty" validate:"omitempty,uuid4"`
	StreamID       *string `json:"stream_id,omitempty" validate:"omitempty,uuid4"`
}

// UpdateStudentRequest modifies student fields.
type UpdateStudentRequest struct {
	RollNumber   string  `json:"roll_number" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	ClassLevelID *string `json:"class_level_id,omitempty" validate:"omitempty,uuid4"`
	StreamID     *string `json:"stream_id,omitempty" validate:"omitempty,uuid4"`
	Active       *bool   `json:"active,omitempty"`
}

// StudentService handles student enrollment workflows.
type StudentService struct {
	repo      studentRepository
	directory userDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService creates a new student service. The directory may
// be nil, in which case identity verification is skipped.
func NewStudentService(repo studentRepository, directory userDirectory, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, directory: directory, validator: validate, logger: logger}
}

// List returns paginated students.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student by identifier.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// GetByUserID resolves a student through the external user identity.
func (s *StudentService) GetByUserID(ctx context.Context, userID string) (*models.Student, error) {
	student, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create enrolls a student after verifying the identity with the user
// directory and checking roll number uniqueness within the year and
// class level.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	req.RollNumber = strings.TrimSpace(req.RollNumber)

	if s.directory != nil {
		ok, err := s.directory.VerifyStudent(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "user is not an active student in the directory")
		}
	}

	exists, err := s.repo.ExistsByRollNumber(ctx, req.AcademicYearID, req.ClassLevelID, req.RollNumber, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check roll number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "roll number already taken for this year and class level")
	}

	student := &models.Student{
		UserID:         req.UserID,
		RollNumber:     req.RollNumber,
		Name:           req.Name,
		Email:          req.Email,
		AcademicYearID: req.AcademicYearID,
		ClassLevelID:   req.ClassLevelID,
		StreamID:       req.StreamID,
		Active:         true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "roll number already taken for this year and class level")
		}
		if errors.Is(err, appErrors.ErrInvalidReference) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "referenced year, class level or stream does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update modifies an existing student.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	req.RollNumber = strings.TrimSpace(req.RollNumber)

	exists, err := s.repo.ExistsByRollNumber(ctx, student.AcademicYearID, req.ClassLevelID, req.RollNumber, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check roll number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "roll number already taken for this year and class level")
	}

	student.RollNumber = req.RollNumber
	student.Name = req.Name
	student.Email = req.Email
	student.ClassLevelID = req.ClassLevelID
	student.StreamID = req.StreamID
	if req.Active != nil {
		student.Active = *req.Active
	}

	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, appErrors.ErrInvalidReference) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "referenced class level or stream does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student permanently.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}
