package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/board-result-api/internal/models"
	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
)

func resultRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "examination_id", "student_id", "total_marks_obtained", "total_max_marks",
		"percentage", "grade", "result_status", "overall_rank", "remarks",
		"is_published", "published_at", "published_by", "created_at", "updated_at",
	})
}

func TestStudentResultRepositoryFindByIDLoadsSubjects(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentResultRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, examination_id, student_id, total_marks_obtained, total_max_marks, percentage, grade, result_status, overall_rank, remarks, is_published, published_at, published_by, created_at, updated_at FROM student_results WHERE id = $1")).
		WithArgs("res-1").
		WillReturnRows(resultRows().AddRow("res-1", "exam-1", "stu-1", 430.0, 600.0, 71.67, "B+", models.ResultStatusPass, nil, "", false, nil, nil, time.Now(), time.Now()))

	subjectRows := sqlmock.NewRows([]string{"id", "student_result_id", "academic_year_subject_id", "marks_obtained", "max_marks", "grade", "is_pass", "created_at", "updated_at"}).
		AddRow("sub-1", "res-1", "ays-1", 75.0, 100.0, "B+", true, time.Now(), time.Now()).
		AddRow("sub-2", "res-1", "ays-2", 55.0, 100.0, "C+", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_result_id, academic_year_subject_id, marks_obtained, max_marks, grade, is_pass, created_at, updated_at FROM subject_results WHERE student_result_id = ANY($1) ORDER BY created_at ASC")).
		WithArgs(pq.Array([]string{"res-1"})).
		WillReturnRows(subjectRows)

	result, err := repo.FindByID(context.Background(), "res-1")
	require.NoError(t, err)
	require.Equal(t, "res-1", result.ID)
	require.Len(t, result.SubjectResults, 2)
	require.Equal(t, "ays-1", result.SubjectResults[0].AcademicYearSubjectID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentResultRepositoryCreateWithSubjectsIsAtomic(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentResultRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO student_results").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO subject_results").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO subject_results").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result := &models.StudentResult{
		ExaminationID:      "exam-1",
		StudentID:          "stu-1",
		TotalMarksObtained: 130,
		TotalMaxMarks:      200,
		Percentage:         65,
		Grade:              "B",
		ResultStatus:       models.ResultStatusPass,
		SubjectResults: []models.SubjectResult{
			{AcademicYearSubjectID: "ays-1", MarksObtained: 70, MaxMarks: 100, Grade: "B+", IsPass: true},
			{AcademicYearSubjectID: "ays-2", MarksObtained: 60, MaxMarks: 100, Grade: "B", IsPass: true},
		},
	}
	err := repo.CreateWithSubjects(context.Background(), result)
	require.NoError(t, err)
	require.NotEmpty(t, result.ID)
	require.Equal(t, result.ID, result.SubjectResults[0].StudentResultID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentResultRepositoryCreateRollsBackOnSubjectFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentResultRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO student_results").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO subject_results").
		WillReturnError(&pq.Error{Code: "23503", Message: "foreign key violation"})
	mock.ExpectRollback()

	result := &models.StudentResult{
		ExaminationID: "exam-1",
		StudentID:     "stu-1",
		SubjectResults: []models.SubjectResult{
			{AcademicYearSubjectID: "missing", MarksObtained: 10, MaxMarks: 100},
		},
	}
	err := repo.CreateWithSubjects(context.Background(), result)
	require.Error(t, err)
	require.ErrorIs(t, err, appErrors.ErrInvalidReference)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentResultRepositoryCreateTranslatesDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentResultRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO student_results").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})
	mock.ExpectRollback()

	err := repo.CreateWithSubjects(context.Background(), &models.StudentResult{ExaminationID: "exam-1", StudentID: "stu-1"})
	require.Error(t, err)
	require.ErrorIs(t, err, appErrors.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentResultRepositoryExistsByStudentAndExam(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentResultRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM student_results WHERE student_id = $1 AND examination_id = $2 LIMIT 1")).
		WithArgs("stu-1", "exam-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByStudentAndExam(context.Background(), "stu-1", "exam-1", "")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM student_results WHERE student_id = $1 AND examination_id = $2 AND id <> $3 LIMIT 1")).
		WithArgs("stu-1", "exam-1", "res-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsByStudentAndExam(context.Background(), "stu-1", "exam-1", "res-1")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentResultRepositoryListByExaminationOrdering(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentResultRepository(db)

	rows := resultRows().
		AddRow("res-1", "exam-1", "stu-1", 546.0, 600.0, 91.0, "A+", models.ResultStatusPass, nil, "", false, nil, nil, time.Now(), time.Now()).
		AddRow("res-2", "exam-1", "stu-2", 510.0, 600.0, 85.0, "A", models.ResultStatusPass, nil, "", false, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, examination_id, student_id, total_marks_obtained, total_max_marks, percentage, grade, result_status, overall_rank, remarks, is_published, published_at, published_by, created_at, updated_at FROM student_results WHERE examination_id = $1 ORDER BY percentage DESC, created_at ASC")).
		WithArgs("exam-1").
		WillReturnRows(rows)

	results, err := repo.ListByExamination(context.Background(), "exam-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "res-1", results[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentResultRepositoryUpdateRanksSingleTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentResultRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_results SET overall_rank = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(1, sqlmock.AnyArg(), "res-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_results SET overall_rank = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(2, sqlmock.AnyArg(), "res-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateRanks(context.Background(), []RankAssignment{
		{ResultID: "res-1", Rank: 1},
		{ResultID: "res-2", Rank: 2},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentResultRepositoryPublishByExamination(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentResultRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_results SET is_published = TRUE, published_at = $1, published_by = $2, updated_at = $1 WHERE examination_id = $3")).
		WithArgs(sqlmock.AnyArg(), "admin-1", "exam-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE examinations SET is_result_published = TRUE, updated_at = $1 WHERE id = $2")).
		WithArgs(sqlmock.AnyArg(), "exam-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.PublishByExamination(context.Background(), "exam-1", "admin-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentResultRepositoryStatistics(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentResultRepository(db)

	rows := sqlmock.NewRows([]string{"total_results", "published_results", "pass_results", "fail_results", "pending_results"}).
		AddRow(10, 6, 7, 2, 1)
	mock.ExpectQuery("SELECT").WithArgs("exam-1").WillReturnRows(rows)

	stats, err := repo.Statistics(context.Background(), models.StatisticsFilter{ExaminationID: "exam-1"})
	require.NoError(t, err)
	require.Equal(t, 10, stats.TotalResults)
	require.Equal(t, 4, stats.UnpublishedResults)
	require.NoError(t, mock.ExpectationsWereMet())
}
