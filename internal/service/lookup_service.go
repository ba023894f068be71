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

type classLevelRepository interface {
	List(ctx context.Context, filter models.LookupFilter) ([]models.ClassLevel, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassLevel, error)
	ExistsByLevel(ctx context.Context, level string, excludeID string) (bool, error)
	Create(ctx context.Context, level *models.ClassLevel) error
	Update(ctx context.Context, level *models.ClassLevel) error
	Delete(ctx context.Context, id string) error
}

type streamRepository interface {
	List(ctx context.Context, filter models.LookupFilter) ([]models.Stream, int, error)
	FindByID(ctx context.Context, id string) (*models.Stream, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, stream *models.Stream) error
	Update(ctx context.Context, stream *models.Stream) error
	Delete(ctx context.Context, id string) error
}

// ClassLevelRequest captures the single mutable field of a class level.
type ClassLevelRequest struct {
	Level string `json:"level" validate:"required"`
}

// StreamRequest captures the single mutable field of a stream.
type StreamRequest struct {
	Name string `json:"name" validate:"required"`
}

// ClassLevelService handles class level workflows.
type ClassLevelService struct {
	repo      classLevelRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassLevelService creates a new class level service.
func NewClassLevelService(repo classLevelRepository, validate *validator.Validate, logger *zap.Logger) *ClassLevelService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassLevelService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated class levels.
func (s *ClassLevelService) List(ctx context.Context, filter models.LookupFilter) ([]models.ClassLevel, *models.Pagination, error) {
	levels, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class levels")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return levels, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a class level by identifier.
func (s *ClassLevelService) Get(ctx context.Context, id string) (*models.ClassLevel, error) {
	level, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class level not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class level")
	}
	return level, nil
}

// Create adds a new class level ensuring level uniqueness.
func (s *ClassLevelService) Create(ctx context.Context, req ClassLevelRequest) (*models.ClassLevel, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class level payload")
	}
	req.Level = strings.TrimSpace(req.Level)

	exists, err := s.repo.ExistsByLevel(ctx, req.Level, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class level")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class level already exists")
	}

	level := &models.ClassLevel{Level: req.Level}
	if err := s.repo.Create(ctx, level); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "class level already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class level")
	}
	return level, nil
}

// Update modifies an existing class level.
func (s *ClassLevelService) Update(ctx context.Context, id string, req ClassLevelRequest) (*models.ClassLevel, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class level payload")
	}

	level, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class level not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class level")
	}

	req.Level = strings.TrimSpace(req.Level)
	exists, err := s.repo.ExistsByLevel(ctx, req.Level, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class level")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class level already exists")
	}

	level.Level = req.Level
	if err := s.repo.Update(ctx, level); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class level")
	}
	return level, nil
}

// Delete removes a class level.
func (s *ClassLevelService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class level not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class level")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class level")
	}
	return nil
}

// StreamService handles stream workflows.
type StreamService struct {
	repo      streamRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStreamService creates a new stream service.
func NewStreamService(repo streamRepository, validate *validator.Validate, logger *zap.Logger) *StreamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated streams.
func (s *StreamService) List(ctx context.Context, filter models.LookupFilter) ([]models.Stream, *models.Pagination, error) {
	streams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list streams")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return streams, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a stream by identifier.
func (s *StreamService) Get(ctx context.Context, id string) (*models.Stream, error) {
	stream, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "stream not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stream")
	}
	return stream, nil
}

// Create adds a new stream ensuring name uniqueness.
func (s *StreamService) Create(ctx context.Context, req StreamRequest) (*models.Stream, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stream payload")
	}
	req.Name = strings.TrimSpace(req.Name)

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check stream name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "stream name already exists")
	}

	stream := &models.Stream{Name: req.Name}
	if err := s.repo.Create(ctx, stream); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "stream name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create stream")
	}
	return stream, nil
}

// Update modifies an existing stream.
func (s *StreamService) Update(ctx context.Context, id string, req StreamRequest) (*models.Stream, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stream payload")
	}

	stream, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "stream not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stream")
	}

	req.Name = strings.TrimSpace(req.Name)
	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check stream name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "stream name already exists")
	}

	stream.Name = req.Name
	if err := s.repo.Update(ctx, stream); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update stream")
	}
	return stream, nil
}

// Delete removes a stream.
func (s *StreamService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "stream not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stream")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete stream")
	}
	return nil
}
