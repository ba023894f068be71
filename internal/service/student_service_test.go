package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/board-result-api/internal/models"
	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[string]*models.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*models.Student)}
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range m.students {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	for _, s := range m.students {
		if s.UserID == userID {
			copy := *s
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByRollNumber(ctx context.Context, academicYearID string, classLevelID *string, rollNumber string, excludeID string) (bool, error) {
	for _, s := range m.students {
		if s.ID == excludeID || s.AcademicYearID != academicYearID || s.RollNumber != rollNumber {
			continue
		}
		switch {
		case s.ClassLevelID == nil && classLevelID == nil:
			return true, nil
		case s.ClassLevelID != nil && classLevelID != nil && *s.ClassLevelID == *classLevelID:
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	copy := *student
	m.students[student.ID] = &copy
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	copy := *student
	m.students[student.ID] = &copy
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	delete(m.students, id)
	return nil
}

type mockDirectory struct {
	known map[string]bool
	err   error
	calls int
}

func (m *mockDirectory) VerifyStudent(ctx context.Context, userID string) (bool, error) {
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	return m.known[userID], nil
}

func studentRequest(yearID string) CreateStudentRequest {
	return CreateStudentRequest{
		UserID:         "user-1",
		RollNumber:     "R-001",
		Name:           "Asha Verma",
		Email:          "asha@example.com",
		AcademicYearID: yearID,
	}
}

func TestStudentCreateVerifiesDirectory(t *testing.T) {
	repo := newMockStudentRepo()
	dir := &mockDirectory{known: map[string]bool{"user-1": true}}
	svc := NewStudentService(repo, dir, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), studentRequest(uuid.NewString()))
	require.NoError(t, err)
	assert.True(t, student.Active)
	assert.Equal(t, 1, dir.calls)
}

func TestStudentCreateRejectsUnknownUser(t *testing.T) {
	repo := newMockStudentRepo()
	dir := &mockDirectory{known: map[string]bool{}}
	svc := NewStudentService(repo, dir, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), studentRequest(uuid.NewString()))
	require.ErrorIs(t, err, appErrors.ErrInvalidReference)
	assert.Empty(t, repo.students)
}

func TestStudentCreatePropagatesDirectoryOutage(t *testing.T) {
	repo := newMockStudentRepo()
	dir := &mockDirectory{err: appErrors.Clone(appErrors.ErrUpstreamUnavailable, "user directory is unreachable")}
	svc := NewStudentService(repo, dir, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), studentRequest(uuid.NewString()))
	require.ErrorIs(t, err, appErrors.ErrUpstreamUnavailable)
	assert.Empty(t, repo.students)
}

func TestStudentCreateRejectsDuplicateRollNumber(t *testing.T) {
	repo := newMockStudentRepo()
	dir := &mockDirectory{known: map[string]bool{"user-1": true, "user-2": true}}
	svc := NewStudentService(repo, dir, validator.New(), zap.NewNop())

	yearID := uuid.NewString()
	_, err := svc.Create(context.Background(), studentRequest(yearID))
	require.NoError(t, err)

	dup := studentRequest(yearID)
	dup.UserID = "user-2"
	dup.Email = "second@example.com"
	_, err = svc.Create(context.Background(), dup)
	require.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestStudentCreateAllowsSameRollAcrossYears(t *testing.T) {
	repo := newMockStudentRepo()
	dir := &mockDirectory{known: map[string]bool{"user-1": true, "user-2": true}}
	svc := NewStudentService(repo, dir, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), studentRequest(uuid.NewString()))
	require.NoError(t, err)

	other := studentRequest(uuid.NewString())
	other.UserID = "user-2"
	_, err = svc.Create(context.Background(), other)
	require.NoError(t, err)
}
