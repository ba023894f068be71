package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/board-result-api/internal/models"
	"github.com/noah-isme/board-result-api/internal/repository"
	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
)

type mockResultRepo struct {
	results    map[string]*models.StudentResult
	order      []string
	publishTx  []string
	statistics *models.ResultStatistics
}

func newMockResultRepo() *mockResultRepo {
	return &mockResultRepo{results: make(map[string]*models.StudentResult)}
}

func (m *mockResultRepo) List(ctx context.Context, filter models.StudentResultFilter) ([]models.StudentResult, int, error) {
	var out []models.StudentResult
	for _, id := range m.order {
		out = append(out, *m.results[id])
	}
	return out, len(out), nil
}

func (m *mockResultRepo) FindByID(ctx context.Context, id string) (*models.StudentResult, error) {
	if r, ok := m.results[id]; ok {
		copy := *r
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockResultRepo) FindByStudentAndExam(ctx context.Context, studentID, examinationID string) (*models.StudentResult, error) {
	for _, r := range m.results {
		if r.StudentID == studentID && r.ExaminationID == examinationID {
			copy := *r
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockResultRepo) ExistsByStudentAndExam(ctx context.Context, studentID, examinationID string, excludeID string) (bool, error) {
	for _, r := range m.results {
		if r.StudentID == studentID && r.ExaminationID == examinationID && r.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockResultRepo) ListByExamination(ctx context.Context, examinationID string) ([]models.StudentResult, error) {
	var out []models.StudentResult
	for _, id := range m.order {
		if r := m.results[id]; r.ExaminationID == examinationID {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Percentage != out[j].Percentage {
			return out[i].Percentage > out[j].Percentage
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockResultRepo) CreateWithSubjects(ctx context.Context, result *models.StudentResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	copy := *result
	m.results[result.ID] = &copy
	m.order = append(m.order, result.ID)
	return nil
}

func (m *mockResultRepo) Update(ctx context.Context, result *models.StudentResult) error {
	if _, ok := m.results[result.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *result
	m.results[result.ID] = &copy
	return nil
}

func (m *mockResultRepo) UpdateWithSubjects(ctx context.Context, result *models.StudentResult) error {
	return m.Update(ctx, result)
}

func (m *mockResultRepo) UpdateRanks(ctx context.Context, assignments []repository.RankAssignment) error {
	for _, a := range assignments {
		if r, ok := m.results[a.ResultID]; ok {
			rank := a.Rank
			r.OverallRank = &rank
		}
	}
	return nil
}

func (m *mockResultRepo) PublishByExamination(ctx context.Context, examinationID string, publishedBy string) error {
	now := time.Now().UTC()
	for _, r := range m.results {
		if r.ExaminationID == examinationID {
			r.IsPublished = true
			r.PublishedAt = &now
			by := publishedBy
			r.PublishedBy = &by
		}
	}
	m.publishTx = append(m.publishTx, examinationID)
	return nil
}

func (m *mockResultRepo) Statistics(ctx context.Context, filter models.StatisticsFilter) (*models.ResultStatistics, error) {
	if m.statistics != nil {
		copy := *m.statistics
		return &copy, nil
	}
	return &models.ResultStatistics{}, nil
}

func (m *mockResultRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.results[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.results, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

type mockExamRepo struct {
	exams map[string]*models.Examination
}

func (m *mockExamRepo) FindByID(ctx context.Context, id string) (*models.Examination, error) {
	if e, ok := m.exams[id]; ok {
		copy := *e
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type mockStudentReader struct {
	students map[string]*models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type mockYearSubjectRepo struct {
	mappings map[string]*models.AcademicYearSubject
}

func (m *mockYearSubjectRepo) FindByID(ctx context.Context, id string) (*models.AcademicYearSubject, error) {
	if ys, ok := m.mappings[id]; ok {
		copy := *ys
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type mockNotifier struct {
	events []models.ResultEvent
}

func (m *mockNotifier) Emit(event models.ResultEvent) { m.events = append(m.events, event) }
func (m *mockNotifier) EmitBulk(events []models.ResultEvent) {
	m.events = append(m.events, events...)
}

type mockCache struct {
	store       map[string][]byte
	gets        int
	sets        int
	invalidated int
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	return appErrors.ErrCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	return nil
}

func (m *mockCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated++
	return nil
}

type resultFixture struct {
	svc      *StudentResultService
	results  *mockResultRepo
	exams    *mockExamRepo
	students *mockStudentReader
	notifier *mockNotifier
	cache    *mockCache
	examID   string
	mathID   string
	sciID    string
}

func newResultFixture(t *testing.T) *resultFixture {
	t.Helper()
	examID := uuid.NewString()
	yearID := uuid.NewString()
	mathID := uuid.NewString()
	sciID := uuid.NewString()

	exams := &mockExamRepo{exams: map[string]*models.Examination{
		examID: {
			ID:               examID,
			AcademicYearID:   yearID,
			Name:             "Final Examination",
			ExamType:         models.ExamTypeFinal,
			GradingPolicy:    models.PolicyLettered,
			PassingThreshold: 35,
		},
	}}
	yearSubjects := &mockYearSubjectRepo{mappings: map[string]*models.AcademicYearSubject{
		mathID: {ID: mathID, AcademicYearID: yearID, MaxMarks: 100},
		sciID:  {ID: sciID, AcademicYearID: yearID, MaxMarks: 100},
	}}
	results := newMockResultRepo()
	notifier := &mockNotifier{}
	cache := &mockCache{store: make(map[string][]byte)}
	students := &mockStudentReader{students: map[string]*models.Student{}}

	svc := NewStudentResultService(results, exams, students, yearSubjects, notifier, cache, time.Minute, validator.New(), zap.NewNop())
	return &resultFixture{svc: svc, results: results, exams: exams, students: students, notifier: notifier, cache: cache, examID: examID, mathID: mathID, sciID: sciID}
}

func TestStudentResultCreateDerivesOutcome(t *testing.T) {
	f := newResultFixture(t)
	studentID := uuid.NewString()

	result, err := f.svc.Create(context.Background(), CreateStudentResultRequest{
		ExaminationID: f.examID,
		StudentID:     studentID,
		SubjectMarks: []SubjectMarkInput{
			{AcademicYearSubjectID: f.mathID, MarksObtained: 75},
			{AcademicYearSubjectID: f.sciID, MarksObtained: 68.5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 143.5, result.TotalMarksObtained)
	assert.Equal(t, 200.0, result.TotalMaxMarks)
	assert.Equal(t, 71.75, result.Percentage)
	assert.Equal(t, "B+", result.Grade)
	assert.Equal(t, models.ResultStatusPass, result.ResultStatus)
	assert.False(t, result.IsPublished)
	require.Len(t, result.SubjectResults, 2)
	assert.True(t, result.SubjectResults[0].IsPass)
	assert.Equal(t, 1, f.cache.invalidated)
}

func TestStudentResultCreateFailsBelowThreshold(t *testing.T) {
	f := newResultFixture(t)

	result, err := f.svc.Create(context.Background(), CreateStudentResultRequest{
		ExaminationID: f.examID,
		StudentID:     uuid.NewString(),
		SubjectMarks: []SubjectMarkInput{
			{AcademicYearSubjectID: f.mathID, MarksObtained: 30},
			{AcademicYearSubjectID: f.sciID, MarksObtained: 38},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 34.0, result.Percentage)
	assert.Equal(t, models.ResultStatusFail, result.ResultStatus)
	assert.Equal(t, "F", result.Grade)
	// 30/100 falls below the 33% subject line, 38/100 clears it.
	assert.False(t, result.SubjectResults[0].IsPass)
	assert.True(t, result.SubjectResults[1].IsPass)
}

func TestStudentResultCreateRejectsDuplicateThenAllowsAfterDelete(t *testing.T) {
	f := newResultFixture(t)
	studentID := uuid.NewString()
	req := CreateStudentResultRequest{
		ExaminationID: f.examID,
		StudentID:     studentID,
		SubjectMarks:  []SubjectMarkInput{{AcademicYearSubjectID: f.mathID, MarksObtained: 50}},
	}

	first, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), req)
	require.ErrorIs(t, err, appErrors.ErrConflict)

	require.NoError(t, f.svc.Delete(context.Background(), first.ID))

	_, err = f.svc.Create(context.Background(), req)
	require.NoError(t, err)
}

func TestStudentResultCreateRejectsMarksAboveMax(t *testing.T) {
	f := newResultFixture(t)

	_, err := f.svc.Create(context.Background(), CreateStudentResultRequest{
		ExaminationID: f.examID,
		StudentID:     uuid.NewString(),
		SubjectMarks:  []SubjectMarkInput{{AcademicYearSubjectID: f.mathID, MarksObtained: 105}},
	})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestStudentResultCreatePassFailPolicySkipsLetterGrade(t *testing.T) {
	f := newResultFixture(t)
	f.exams.exams[f.examID].GradingPolicy = models.PolicyPassFail

	result, err := f.svc.Create(context.Background(), CreateStudentResultRequest{
		ExaminationID: f.examID,
		StudentID:     uuid.NewString(),
		SubjectMarks:  []SubjectMarkInput{{AcademicYearSubjectID: f.mathID, MarksObtained: 91}},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Grade)
	assert.Equal(t, models.ResultStatusPass, result.ResultStatus)
}

func TestStudentResultUpdateRecomputesOutcome(t *testing.T) {
	f := newResultFixture(t)
	created, err := f.svc.Create(context.Background(), CreateStudentResultRequest{
		ExaminationID: f.examID,
		StudentID:     uuid.NewString(),
		SubjectMarks:  []SubjectMarkInput{{AcademicYearSubjectID: f.mathID, MarksObtained: 40}},
	})
	require.NoError(t, err)
	require.Equal(t, "C", created.Grade)

	updated, err := f.svc.Update(context.Background(), created.ID, UpdateStudentResultRequest{
		SubjectMarks: []SubjectMarkInput{{AcademicYearSubjectID: f.mathID, MarksObtained: 92}},
	})
	require.NoError(t, err)
	assert.Equal(t, 92.0, updated.Percentage)
	assert.Equal(t, "A+", updated.Grade)
}

func TestStudentResultPublishedAcceptsOnlyRemarks(t *testing.T) {
	f := newResultFixture(t)
	created, err := f.svc.Create(context.Background(), CreateStudentResultRequest{
		ExaminationID: f.examID,
		StudentID:     uuid.NewString(),
		SubjectMarks:  []SubjectMarkInput{{AcademicYearSubjectID: f.mathID, MarksObtained: 80}},
	})
	require.NoError(t, err)

	_, err = f.svc.Publish(context.Background(), created.ID, "admin-1")
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), created.ID, UpdateStudentResultRequest{
		SubjectMarks: []SubjectMarkInput{{AcademicYearSubjectID: f.mathID, MarksObtained: 95}},
	})
	require.ErrorIs(t, err, appErrors.ErrResultImmutable)

	remarks := "moderated"
	updated, err := f.svc.Update(context.Background(), created.ID, UpdateStudentResultRequest{Remarks: &remarks})
	require.NoError(t, err)
	assert.Equal(t, "moderated", updated.Remarks)
	assert.Equal(t, 80.0, updated.Percentage)
}

func TestStudentResultPublishGuards(t *testing.T) {
	f := newResultFixture(t)
	created, err := f.svc.Create(context.Background(), CreateStudentResultRequest{
		ExaminationID: f.examID,
		StudentID:     uuid.NewString(),
		SubjectMarks:  []SubjectMarkInput{{AcademicYearSubjectID: f.mathID, MarksObtained: 80}},
	})
	require.NoError(t, err)

	_, err = f.svc.Unpublish(context.Background(), created.ID)
	require.ErrorIs(t, err, appErrors.ErrNotPublished)

	published, err := f.svc.Publish(context.Background(), created.ID, "admin-1")
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
	assert.NotNil(t, published.PublishedAt)

	_, err = f.svc.Publish(context.Background(), created.ID, "admin-1")
	require.ErrorIs(t, err, appErrors.ErrAlreadyPublished)

	reverted, err := f.svc.Unpublish(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, reverted.IsPublished)
	assert.Nil(t, reverted.PublishedAt)
}

func TestStudentResultPublishEmitsEvent(t *testing.T) {
	f := newResultFixture(t)
	created, err := f.svc.Create(context.Background(), CreateStudentResultRequest{
		ExaminationID: f.examID,
		StudentID:     uuid.NewString(),
		SubjectMarks:  []SubjectMarkInput{{AcademicYearSubjectID: f.mathID, MarksObtained: 80}},
	})
	require.NoError(t, err)

	_, err = f.svc.Publish(context.Background(), created.ID, "admin-1")
	require.NoError(t, err)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, models.EventResultPublished, f.notifier.events[0].Type)
	assert.Equal(t, created.ID, f.notifier.events[0].ResultID)
}

func TestStudentResultPublishEventCarriesExamContext(t *testing.T) {
	f := newResultFixture(t)
	classLevelID := uuid.NewString()
	f.exams.exams[f.examID].ClassLevelID = &classLevelID

	studentID := uuid.NewString()
	f.students.students[studentID] = &models.Student{
		ID:           studentID,
		RollNumber:   "R-042",
		ClassLevelID: &classLevelID,
	}

	created, err := f.svc.Create(context.Background(), CreateStudentResultRequest{
		ExaminationID: f.examID,
		StudentID:     studentID,
		SubjectMarks:  []SubjectMarkInput{{AcademicYearSubjectID: f.mathID, MarksObtained: 80}},
	})
	require.NoError(t, err)

	_, err = f.svc.Publish(context.Background(), created.ID, "admin-1")
	require.NoError(t, err)

	require.Len(t, f.notifier.events, 1)
	event := f.notifier.events[0]
	assert.Equal(t, string(models.ExamTypeFinal), event.ExamType)
	assert.Equal(t, classLevelID, event.ClassLevel)
	assert.Equal(t, "R-042", event.RollNumber)
}

func TestStudentResultPublishBatchAssignsPositionalRanks(t *testing.T) {
	f := newResultFixture(t)
	percentages := []float64{91, 85, 85, 60}
	ids := make([]string, len(percentages))
	base := time.Now().UTC()
	for i, pct := range percentages {
		result := &models.StudentResult{
			ExaminationID: f.examID,
			StudentID:     uuid.NewString(),
			Percentage:    pct,
			ResultStatus:  models.ResultStatusPass,
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, f.results.CreateWithSubjects(context.Background(), result))
		ids[i] = result.ID
	}

	count, err := f.svc.PublishBatch(context.Background(), f.examID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	// Equal percentages share nothing: ranks stay positional, ties
	// resolved by creation order.
	for i, id := range ids {
		stored := f.results.results[id]
		require.NotNil(t, stored.OverallRank)
		assert.Equal(t, i+1, *stored.OverallRank)
		assert.True(t, stored.IsPublished)
	}

	// One event per result plus the aggregate statistics event.
	require.Len(t, f.notifier.events, 5)
	assert.Equal(t, string(models.ExamTypeFinal), f.notifier.events[0].ExamType)
	assert.Equal(t, models.EventResultStatistics, f.notifier.events[4].Type)
}

func TestStudentResultPublishBatchRestampsPublished(t *testing.T) {
	f := newResultFixture(t)
	result := &models.StudentResult{
		ExaminationID: f.examID,
		StudentID:     uuid.NewString(),
		Percentage:    70,
		IsPublished:   true,
	}
	require.NoError(t, f.results.CreateWithSubjects(context.Background(), result))

	count, err := f.svc.PublishBatch(context.Background(), f.examID, "admin-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	stored := f.results.results[result.ID]
	require.NotNil(t, stored.PublishedBy)
	assert.Equal(t, "admin-2", *stored.PublishedBy)
}

func TestStudentResultPublishBatchEmptyExaminationIsNoOp(t *testing.T) {
	f := newResultFixture(t)
	count, err := f.svc.PublishBatch(context.Background(), f.examID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, f.results.publishTx)
	assert.Empty(t, f.notifier.events)
}

func TestStudentResultStatisticsComputesPassPercentage(t *testing.T) {
	f := newResultFixture(t)
	f.results.statistics = &models.ResultStatistics{
		TotalResults:     8,
		PublishedResults: 8,
		PassResults:      6,
		FailResults:      2,
	}

	stats, err := f.svc.Statistics(context.Background(), models.StatisticsFilter{ExaminationID: f.examID})
	require.NoError(t, err)
	assert.Equal(t, 75.0, stats.PassPercentage)
	assert.Equal(t, 1, f.cache.gets)
	assert.Equal(t, 1, f.cache.sets)
	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, models.EventResultStatistics, f.notifier.events[0].Type)
}
