package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/board-result-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAcademicYearRepositoryFindCurrent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	rows := sqlmock.NewRows([]string{"id", "year_label", "start_date", "end_date", "is_current", "created_at", "updated_at"}).
		AddRow("year-1", "2025-2026", time.Now(), time.Now(), true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, year_label, start_date, end_date, is_current, created_at, updated_at FROM academic_years WHERE is_current = TRUE LIMIT 1")).
		WillReturnRows(rows)

	year, err := repo.FindCurrent(context.Background())
	require.NoError(t, err)
	require.Equal(t, "year-1", year.ID)
	require.True(t, year.IsCurrent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearRepositoryExistsByLabel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM academic_years WHERE year_label = $1 LIMIT 1")).
		WithArgs("2025-2026").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByLabel(context.Background(), "2025-2026", "")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM academic_years WHERE year_label = $1 LIMIT 1")).
		WithArgs("2030-2031").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsByLabel(context.Background(), "2030-2031", "")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearRepositorySetCurrentUsesSingleTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_years SET is_current = FALSE, updated_at = $1 WHERE is_current = TRUE AND id <> $2")).
		WithArgs(sqlmock.AnyArg(), "year-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_years SET is_current = TRUE, updated_at = $2 WHERE id = $1")).
		WithArgs("year-2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SetCurrent(context.Background(), "year-2")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	current := true
	rows := sqlmock.NewRows([]string{"id", "year_label", "start_date", "end_date", "is_current", "created_at", "updated_at"}).
		AddRow("year-1", "2025-2026", time.Now(), time.Now(), true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, year_label, start_date, end_date, is_current, created_at, updated_at FROM academic_years WHERE 1=1 AND is_current = $1 ORDER BY start_date DESC LIMIT 20 OFFSET 0")).
		WithArgs(true).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM academic_years WHERE 1=1 AND is_current = $1")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	years, total, err := repo.List(context.Background(), models.AcademicYearFilter{IsCurrent: &current})
	require.NoError(t, err)
	require.Len(t, years, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
