package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/board-result-api/internal/grading"
	"github.com/noah-isme/board-result-api/internal/models"
	"github.com/noah-isme/board-result-api/internal/repository"
	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
)

type studentResultRepository interface {
	List(ctx context.Context, filter models.StudentResultFilter) ([]models.StudentResult, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentResult, error)
	FindByStudentAndExam(ctx context.Context, studentID, examinationID string) (*models.StudentResult, error)
	ExistsByStudentAndExam(ctx context.Context, studentID, examinationID string, excludeID string) (bool, error)
	ListByExamination(ctx context.Context, examinationID string) ([]models.StudentResult, error)
	CreateWithSubjects(ctx context.Context, result *models.StudentResult) error
	Update(ctx context.Context, result *models.StudentResult) error
	UpdateWithSubjects(ctx context.Context, result *models.StudentResult) error
	UpdateRanks(ctx context.Context, assignments []repository.RankAssignment) error
	PublishByExamination(ctx context.Context, examinationID string, publishedBy string) error
	Statistics(ctx context.Context, filter models.StatisticsFilter) (*models.ResultStatistics, error)
	Delete(ctx context.Context, id string) error
}

type resultExaminationReader interface {
	FindByID(ctx context.Context, id string) (*models.Examination, error)
}

type resultStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type yearSubjectReader interface {
	FindByID(ctx context.Context, id string) (*models.AcademicYearSubject, error)
}

// resultNotifier delivers result events without ever failing the
// calling workflow.
type resultNotifier interface {
	Emit(event models.ResultEvent)
	EmitBulk(events []models.ResultEvent)
}

type statisticsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// SubjectMarkInput carries one subject's marks for result entry.
type SubjectMarkInput struct {
	AcademicYearSubjectID string  `json:"academic_year_subject_id" validate:"required,uuid4"`
	MarksObtained         float64 `json:"marks_obtained" validate:"gte=0"`
}

// CreateStudentResultRequest captures fields for recording a result.
// Percentage, grade and status are always derived server-side.
type CreateStudentResultRequest struct {
	ExaminationID string             `json:"examination_id" validate:"required,uuid4"`
	StudentID     string             `json:"student_id" validate:"required,uuid4"`
	Remarks       string             `json:"remarks"`
	SubjectMarks  []SubjectMarkInput `json:"subject_marks" validate:"required,min=1,dive"`
}

// UpdateStudentResultRequest modifies an existing result. Marks
// updates trigger a full re-derivation. On a published result only
// remarks may change.
type UpdateStudentResultRequest struct {
	Remarks      *string            `json:"remarks,omitempty"`
	SubjectMarks []SubjectMarkInput `json:"subject_marks,omitempty" validate:"omitempty,min=1,dive"`
}

// StudentResultService owns the result lifecycle: derivation, the
// duplicate guard, ranking, publication and the notification fan-out.
type StudentResultService struct {
	results      studentResultRepository
	examinations resultExaminationReader
	students     resultStudentReader
	yearSubjects yearSubjectReader
	notifier     resultNotifier
	cache        statisticsCache
	cacheTTL     time.Duration
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewStudentResultService creates a new result service. The notifier
// and cache may be nil; both degrade to no-ops.
func NewStudentResultService(
	results studentResultRepository,
	examinations resultExaminationReader,
	students resultStudentReader,
	yearSubjects yearSubjectReader,
	notifier resultNotifier,
	cache statisticsCache,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *StudentResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &StudentResultService{
		results:      results,
		examinations: examinations,
		students:     students,
		yearSubjects: yearSubjects,
		notifier:     notifier,
		cache:        cache,
		cacheTTL:     cacheTTL,
		validator:    validate,
		logger:       logger,
	}
}

// List returns paginated results.
func (s *StudentResultService) List(ctx context.Context, filter models.StudentResultFilter) ([]models.StudentResult, *models.Pagination, error) {
	results, total, err := s.results.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return results, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a result with its subject results.
func (s *StudentResultService) Get(ctx context.Context, id string) (*models.StudentResult, error) {
	result, err := s.results.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	return result, nil
}

// GetByStudentAndExam returns the single result a student holds for an
// examination.
func (s *StudentResultService) GetByStudentAndExam(ctx context.Context, studentID, examinationID string) (*models.StudentResult, error) {
	result, err := s.results.FindByStudentAndExam(ctx, studentID, examinationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	return result, nil
}

// Create records a result. Totals, percentage, grade and status are
// derived from the submitted subject marks under the examination's
// grading policy. At most one result may exist per student per
// examination.
func (s *StudentResultService) Create(ctx context.Context, req CreateStudentResultRequest) (*models.StudentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid result payload")
	}

	exam, err := s.loadExamination(ctx, req.ExaminationID)
	if err != nil {
		return nil, err
	}

	exists, err := s.results.ExistsByStudentAndExam(ctx, req.StudentID, req.ExaminationID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check result uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "result already exists for this student and examination")
	}

	subjects, totalObtained, totalMax, err := s.buildSubjectResults(ctx, exam, req.SubjectMarks)
	if err != nil {
		return nil, err
	}

	outcome, err := grading.Derive(exam.GradingPolicy, totalObtained, totalMax, exam.PassingThreshold)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "total marks must be greater than zero")
	}

	result := &models.StudentResult{
		ExaminationID:      req.ExaminationID,
		StudentID:          req.StudentID,
		TotalMarksObtained: totalObtained,
		TotalMaxMarks:      totalMax,
		Percentage:         outcome.Percentage,
		Grade:              outcome.Grade,
		ResultStatus:       outcome.Status,
		Remarks:            req.Remarks,
		SubjectResults:     subjects,
	}

	if err := s.results.CreateWithSubjects(ctx, result); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "result already exists for this student and examination")
		}
		if errors.Is(err, appErrors.ErrInvalidReference) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "referenced student, examination or subject mapping does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create result")
	}

	s.invalidateStatistics(ctx)
	return result, nil
}

// Update modifies a result. Published results accept remarks changes
// only; anything else is rejected naming the offending fields.
func (s *StudentResultService) Update(ctx context.Context, id string, req UpdateStudentResultRequest) (*models.StudentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid result payload")
	}

	result, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if result.IsPublished && len(req.SubjectMarks) > 0 {
		return nil, appErrors.Clone(appErrors.ErrResultImmutable, "published result rejects changes to: subject_marks")
	}

	if req.Remarks != nil {
		result.Remarks = *req.Remarks
	}

	if len(req.SubjectMarks) > 0 {
		exam, err := s.loadExamination(ctx, result.ExaminationID)
		if err != nil {
			return nil, err
		}
		subjects, totalObtained, totalMax, err := s.buildSubjectResults(ctx, exam, req.SubjectMarks)
		if err != nil {
			return nil, err
		}
		outcome, err := grading.Derive(exam.GradingPolicy, totalObtained, totalMax, exam.PassingThreshold)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidInput, "total marks must be greater than zero")
		}

		result.TotalMarksObtained = totalObtained
		result.TotalMaxMarks = totalMax
		result.Percentage = outcome.Percentage
		result.Grade = outcome.Grade
		result.ResultStatus = outcome.Status
		// Stored subject rows are replaced wholesale with the new set.
		result.SubjectResults = subjects
		if err := s.results.UpdateWithSubjects(ctx, result); err != nil {
			if errors.Is(err, appErrors.ErrInvalidReference) {
				return nil, appErrors.Clone(appErrors.ErrInvalidReference, "referenced subject mapping does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update result")
		}
	} else {
		if err := s.results.Update(ctx, result); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update result")
		}
	}

	s.invalidateStatistics(ctx)
	s.emit(ctx, models.EventResultUpdated, result)
	return result, nil
}

// Publish marks a single result as published.
func (s *StudentResultService) Publish(ctx context.Context, id string, publishedBy string) (*models.StudentResult, error) {
	result, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.IsPublished {
		return nil, appErrors.Clone(appErrors.ErrAlreadyPublished, "result is already published")
	}

	now := time.Now().UTC()
	result.IsPublished = true
	result.PublishedAt = &now
	result.PublishedBy = &publishedBy
	if err := s.results.Update(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish result")
	}

	s.invalidateStatistics(ctx)
	s.emit(ctx, models.EventResultPublished, result)
	return result, nil
}

// Unpublish reverts a published result to draft.
func (s *StudentResultService) Unpublish(ctx context.Context, id string) (*models.StudentResult, error) {
	result, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !result.IsPublished {
		return nil, appErrors.Clone(appErrors.ErrNotPublished, "result is not published")
	}

	result.IsPublished = false
	result.PublishedAt = nil
	result.PublishedBy = nil
	if err := s.results.Update(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unpublish result")
	}

	s.invalidateStatistics(ctx)
	return result, nil
}

// PublishBatch publishes every result of an examination. Ranks are
// assigned first so published results always carry their standing;
// previously published rows are simply re-stamped. One notification
// is emitted per result. An examination without recorded results is
// a no-op.
func (s *StudentResultService) PublishBatch(ctx context.Context, examinationID string, publishedBy string) (int, error) {
	exam, err := s.loadExamination(ctx, examinationID)
	if err != nil {
		return 0, err
	}

	results, err := s.results.ListByExamination(ctx, examinationID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load examination results")
	}
	if len(results) == 0 {
		return 0, nil
	}

	assignments := make([]repository.RankAssignment, len(results))
	for i, r := range results {
		assignments[i] = repository.RankAssignment{ResultID: r.ID, Rank: i + 1}
	}
	if err := s.results.UpdateRanks(ctx, assignments); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign ranks")
	}

	if err := s.results.PublishByExamination(ctx, examinationID, publishedBy); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish examination results")
	}

	s.invalidateStatistics(ctx)

	if s.notifier != nil {
		events := make([]models.ResultEvent, 0, len(results))
		now := time.Now().UTC()
		for i := range results {
			rank := i + 1
			results[i].OverallRank = &rank
			events = append(events, s.buildEvent(ctx, models.EventResultPublished, &results[i], exam, now))
		}
		s.notifier.EmitBulk(events)
		s.notifier.Emit(models.ResultEvent{
			Type:      models.EventResultStatistics,
			ResultID:  examinationID,
			Timestamp: now,
			Metadata:  map[string]interface{}{"examination_id": examinationID, "published": len(results)},
		})
	}
	return len(results), nil
}

// Statistics returns aggregate counts, served from cache when fresh.
func (s *StudentResultService) Statistics(ctx context.Context, filter models.StatisticsFilter) (*models.ResultStatistics, error) {
	key := repository.StatisticsKey(filter.ExaminationID, filter.AcademicYearID)
	if s.cache != nil {
		var cached models.ResultStatistics
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("statistics cache read failed", zap.Error(err))
		}
	}

	stats, err := s.results.Statistics(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute statistics")
	}
	if stats.TotalResults > 0 {
		pct, err := grading.Percentage(float64(stats.PassResults), float64(stats.TotalResults))
		if err == nil {
			stats.PassPercentage = pct
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.cacheTTL); err != nil {
			s.logger.Warn("statistics cache write failed", zap.Error(err))
		}
	}

	if s.notifier != nil {
		s.notifier.Emit(models.ResultEvent{
			Type:      models.EventResultStatistics,
			Timestamp: time.Now().UTC(),
			Metadata: map[string]interface{}{
				"examination_id":   filter.ExaminationID,
				"academic_year_id": filter.AcademicYearID,
				"total_results":    stats.TotalResults,
				"pass_percentage":  stats.PassPercentage,
			},
		})
	}
	return stats, nil
}

// Delete removes a result and announces the removal.
func (s *StudentResultService) Delete(ctx context.Context, id string) error {
	result, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.results.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete result")
	}

	s.invalidateStatistics(ctx)
	s.emit(ctx, models.EventResultDeleted, result)
	return nil
}

func (s *StudentResultService) loadExamination(ctx context.Context, id string) (*models.Examination, error) {
	exam, err := s.examinations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "examination does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load examination")
	}
	return exam, nil
}

// buildSubjectResults validates each submitted mark against its year
// subject mapping and derives per-subject grade and pass flag.
func (s *StudentResultService) buildSubjectResults(ctx context.Context, exam *models.Examination, marks []SubjectMarkInput) ([]models.SubjectResult, float64, float64, error) {
	seen := make(map[string]bool, len(marks))
	subjects := make([]models.SubjectResult, 0, len(marks))
	var totalObtained, totalMax float64

	for _, mark := range marks {
		if seen[mark.AcademicYearSubjectID] {
			return nil, 0, 0, appErrors.Clone(appErrors.ErrValidation, "duplicate subject in marks payload")
		}
		seen[mark.AcademicYearSubjectID] = true

		mapping, err := s.yearSubjects.FindByID(ctx, mark.AcademicYearSubjectID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, 0, 0, appErrors.Clone(appErrors.ErrInvalidReference, "subject mapping does not exist")
			}
			return nil, 0, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject mapping")
		}
		if mapping.AcademicYearID != exam.AcademicYearID {
			return nil, 0, 0, appErrors.Clone(appErrors.ErrValidation, "subject mapping belongs to a different academic year")
		}
		if mark.MarksObtained > mapping.MaxMarks {
			return nil, 0, 0, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("marks %.2f exceed maximum %.2f for subject mapping %s", mark.MarksObtained, mapping.MaxMarks, mapping.ID))
		}

		pct, err := grading.Percentage(mark.MarksObtained, mapping.MaxMarks)
		if err != nil {
			return nil, 0, 0, appErrors.Clone(appErrors.ErrInvalidInput, "subject max marks must be greater than zero")
		}
		subjects = append(subjects, models.SubjectResult{
			AcademicYearSubjectID: mapping.ID,
			MarksObtained:         mark.MarksObtained,
			MaxMarks:              mapping.MaxMarks,
			Grade:                 grading.GradeFor(exam.GradingPolicy, pct),
			IsPass:                grading.SubjectPass(mark.MarksObtained, mapping.MaxMarks),
		})
		totalObtained += mark.MarksObtained
		totalMax += mapping.MaxMarks
	}
	return subjects, totalObtained, totalMax, nil
}

func (s *StudentResultService) emit(ctx context.Context, eventType string, result *models.StudentResult) {
	if s.notifier == nil {
		return
	}
	var exam *models.Examination
	if s.examinations != nil {
		if loaded, err := s.examinations.FindByID(ctx, result.ExaminationID); err == nil {
			exam = loaded
		}
	}
	s.notifier.Emit(s.buildEvent(ctx, eventType, result, exam, time.Now().UTC()))
}

func (s *StudentResultService) buildEvent(ctx context.Context, eventType string, result *models.StudentResult, exam *models.Examination, at time.Time) models.ResultEvent {
	event := models.ResultEvent{
		StudentID:    result.StudentID,
		ResultID:     result.ID,
		Type:         eventType,
		ResultStatus: result.ResultStatus,
		Timestamp:    at,
	}
	if exam != nil {
		event.ExamType = string(exam.ExamType)
		if exam.ClassLevelID != nil {
			event.ClassLevel = *exam.ClassLevelID
		}
	}
	if s.students != nil {
		if student, err := s.students.FindByID(ctx, result.StudentID); err == nil {
			event.RollNumber = student.RollNumber
			if student.ClassLevelID != nil {
				event.ClassLevel = *student.ClassLevelID
			}
		}
	}
	return event
}

func (s *StudentResultService) invalidateStatistics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, repository.StatisticsPattern); err != nil {
		s.logger.Warn("statistics cache invalidation failed", zap.Error(err))
	}
}
