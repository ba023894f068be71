package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/board-result-api/internal/models"
	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
)

type mockYearRepo struct {
	years map[string]*models.AcademicYear
}

func newMockYearRepo() *mockYearRepo {
	return &mockYearRepo{years: make(map[string]*models.AcademicYear)}
}

func (m *mockYearRepo) List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error) {
	var out []models.AcademicYear
	for _, y := range m.years {
		out = append(out, *y)
	}
	return out, len(out), nil
}

func (m *mockYearRepo) FindByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	if y, ok := m.years[id]; ok {
		copy := *y
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockYearRepo) FindCurrent(ctx context.Context) (*models.AcademicYear, error) {
	for _, y := range m.years {
		if y.IsCurrent {
			copy := *y
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockYearRepo) ExistsByLabel(ctx context.Context, label string, excludeID string) (bool, error) {
	for _, y := range m.years {
		if y.YearLabel == label && y.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockYearRepo) Create(ctx context.Context, year *models.AcademicYear) error {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	copy := *year
	m.years[year.ID] = &copy
	return nil
}

func (m *mockYearRepo) Update(ctx context.Context, year *models.AcademicYear) error {
	copy := *year
	m.years[year.ID] = &copy
	return nil
}

func (m *mockYearRepo) SetCurrent(ctx context.Context, id string) error {
	for _, y := range m.years {
		y.IsCurrent = y.ID == id
	}
	return nil
}

func (m *mockYearRepo) Delete(ctx context.Context, id string) error {
	delete(m.years, id)
	return nil
}

func yearRequest(label string) CreateAcademicYearRequest {
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	return CreateAcademicYearRequest{
		YearLabel: label,
		StartDate: start,
		EndDate:   start.AddDate(1, 0, 0),
	}
}

func TestAcademicYearCreateRejectsDuplicateLabel(t *testing.T) {
	repo := newMockYearRepo()
	svc := NewAcademicYearService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), yearRequest("2025-2026"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), yearRequest("2025-2026"))
	require.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestAcademicYearCreateRejectsInvertedDates(t *testing.T) {
	repo := newMockYearRepo()
	svc := NewAcademicYearService(repo, validator.New(), zap.NewNop())

	req := yearRequest("2025-2026")
	req.EndDate = req.StartDate.AddDate(0, -6, 0)
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAcademicYearSetCurrentIsExclusive(t *testing.T) {
	repo := newMockYearRepo()
	svc := NewAcademicYearService(repo, validator.New(), zap.NewNop())

	first, err := svc.Create(context.Background(), yearRequest("2024-2025"))
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), yearRequest("2025-2026"))
	require.NoError(t, err)

	_, err = svc.SetCurrent(context.Background(), first.ID)
	require.NoError(t, err)
	promoted, err := svc.SetCurrent(context.Background(), second.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsCurrent)

	current := 0
	for _, y := range repo.years {
		if y.IsCurrent {
			current++
		}
	}
	assert.Equal(t, 1, current)

	resolved, err := svc.GetCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.ID, resolved.ID)
}

func TestAcademicYearGetCurrentWithoutCurrent(t *testing.T) {
	repo := newMockYearRepo()
	svc := NewAcademicYearService(repo, validator.New(), zap.NewNop())

	_, err := svc.GetCurrent(context.Background())
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}
