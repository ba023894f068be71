package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/board-result-api/internal/models"
)

// StudentResultRepository manages persistence for student results and
// their owned subject results.
type StudentResultRepository struct {
	db *sqlx.DB
}

// NewStudentResultRepository constructs a StudentResultRepository.
func NewStudentResultRepository(db *sqlx.DB) *StudentResultRepository {
	return &StudentResultRepository{db: db}
}

const resultColumns = "id, examination_id, student_id, total_marks_obtained, total_max_marks, percentage, grade, result_status, overall_rank, remarks, is_published, published_at, published_by, created_at, updated_at"

const subjectResultColumns = "id, student_result_id, academic_year_subject_id, marks_obtained, max_marks, grade, is_pass, created_at, updated_at"

// List returns results matching the provided filters.
func (r *StudentResultRepository) List(ctx context.Context, filter models.StudentResultFilter) ([]models.StudentResult, int, error) {
	base := "FROM student_results WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ExaminationID != "" {
		conditions = append(conditions, fmt.Sprintf("examination_id = $%d", len(args)+1))
		args = append(args, filter.ExaminationID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ResultStatus != "" {
		conditions = append(conditions, fmt.Sprintf("result_status = $%d", len(args)+1))
		args = append(args, filter.ResultStatus)
	}
	if filter.IsPublished != nil {
		conditions = append(conditions, fmt.Sprintf("is_published = $%d", len(args)+1))
		args = append(args, *filter.IsPublished)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"percentage": true, "overall_rank": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", resultColumns, base, sortBy, order, size, offset)

	var results []models.StudentResult
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list results: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count results: %w", err)
	}
	return results, total, nil
}

// FindByID loads a result together with its subject results.
func (r *StudentResultRepository) FindByID(ctx context.Context, id string) (*models.StudentResult, error) {
	query := fmt.Sprintf("SELECT %s FROM student_results WHERE id = $1", resultColumns)
	var result models.StudentResult
	if err := r.db.GetContext(ctx, &result, query, id); err != nil {
		return nil, err
	}
	if err := r.attachSubjects(ctx, []*models.StudentResult{&result}); err != nil {
		return nil, err
	}
	return &result, nil
}

// FindByStudentAndExam loads the single result for a student within
// an examination, with subject results attached.
func (r *StudentResultRepository) FindByStudentAndExam(ctx context.Context, studentID, examinationID string) (*models.StudentResult, error) {
	query := fmt.Sprintf("SELECT %s FROM student_results WHERE student_id = $1 AND examination_id = $2", resultColumns)
	var result models.StudentResult
	if err := r.db.GetContext(ctx, &result, query, studentID, examinationID); err != nil {
		return nil, err
	}
	if err := r.attachSubjects(ctx, []*models.StudentResult{&result}); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExistsByStudentAndExam probes the one-result-per-student-per-exam key.
func (r *StudentResultRepository) ExistsByStudentAndExam(ctx context.Context, studentID, examinationID string, excludeID string) (bool, error) {
	base := "SELECT 1 FROM student_results WHERE student_id = $1 AND examination_id = $2"
	args := []interface{}{studentID, examinationID}
	if excludeID != "" {
		base += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check result key: %w", err)
	}
	return true, nil
}

// ListByExamination returns every result for an examination ordered by
// percentage descending. Ties resolve by creation order, which makes
// the rank assignment deterministic.
func (r *StudentResultRepository) ListByExamination(ctx context.Context, examinationID string) ([]models.StudentResult, error) {
	query := fmt.Sprintf("SELECT %s FROM student_results WHERE examination_id = $1 ORDER BY percentage DESC, created_at ASC", resultColumns)
	var results []models.StudentResult
	if err := r.db.SelectContext(ctx, &results, query, examinationID); err != nil {
		return nil, fmt.Errorf("list results by examination: %w", err)
	}
	return results, nil
}

// CreateWithSubjects inserts a result and its subject results in one
// transaction; partial insertion is never left behind.
func (r *StudentResultRepository) CreateWithSubjects(ctx context.Context, result *models.StudentResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create result tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertResult = `INSERT INTO student_results (id, examination_id, student_id, total_marks_obtained, total_max_marks, percentage, grade, result_status, overall_rank, remarks, is_published, published_at, published_by, created_at, updated_at)
        VALUES (:id, :examination_id, :student_id, :total_marks_obtained, :total_max_marks, :percentage, :grade, :result_status, :overall_rank, :remarks, :is_published, :published_at, :published_by, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertResult, result); err != nil {
		err = translate(err, "create result")
		return err
	}

	const insertSubject = `INSERT INTO subject_results (id, student_result_id, academic_year_subject_id, marks_obtained, max_marks, grade, is_pass, created_at, updated_at)
        VALUES (:id, :student_result_id, :academic_year_subject_id, :marks_obtained, :max_marks, :grade, :is_pass, :created_at, :updated_at)`
	for i := range result.SubjectResults {
		sr := &result.SubjectResults[i]
		if sr.ID == "" {
			sr.ID = uuid.NewString()
		}
		sr.StudentResultID = result.ID
		if sr.CreatedAt.IsZero() {
			sr.CreatedAt = now
		}
		sr.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, insertSubject, sr); err != nil {
			err = translate(err, "create subject result")
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create result tx: %w", err)
	}
	return nil
}

// Update modifies an existing result row.
func (r *StudentResultRepository) Update(ctx context.Context, result *models.StudentResult) error {
	result.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student_results SET total_marks_obtained = :total_marks_obtained, total_max_marks = :total_max_marks, percentage = :percentage, grade = :grade, result_status = :result_status, overall_rank = :overall_rank, remarks = :remarks, is_published = :is_published, published_at = :published_at, published_by = :published_by, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return translate(err, "update result")
	}
	return nil
}

// UpdateWithSubjects rewrites the result row and replaces its subject
// rows in one transaction. The result keeps its identity and creation
// timestamp.
func (r *StudentResultRepository) UpdateWithSubjects(ctx context.Context, result *models.StudentResult) error {
	now := time.Now().UTC()
	result.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update result tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateResult = `UPDATE student_results SET total_marks_obtained = :total_marks_obtained, total_max_marks = :total_max_marks, percentage = :percentage, grade = :grade, result_status = :result_status, overall_rank = :overall_rank, remarks = :remarks, is_published = :is_published, published_at = :published_at, published_by = :published_by, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, updateResult, result); err != nil {
		err = translate(err, "update result")
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM subject_results WHERE student_result_id = $1`, result.ID); err != nil {
		err = fmt.Errorf("clear subject results: %w", err)
		return err
	}

	const insertSubject = `INSERT INTO subject_results (id, student_result_id, academic_year_subject_id, marks_obtained, max_marks, grade, is_pass, created_at, updated_at)
        VALUES (:id, :student_result_id, :academic_year_subject_id, :marks_obtained, :max_marks, :grade, :is_pass, :created_at, :updated_at)`
	for i := range result.SubjectResults {
		sr := &result.SubjectResults[i]
		if sr.ID == "" {
			sr.ID = uuid.NewString()
		}
		sr.StudentResultID = result.ID
		if sr.CreatedAt.IsZero() {
			sr.CreatedAt = now
		}
		sr.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, insertSubject, sr); err != nil {
			err = translate(err, "replace subject result")
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update result tx: %w", err)
	}
	return nil
}

// RankAssignment pairs a result id with its computed rank.
type RankAssignment struct {
	ResultID string
	Rank     int
}

// UpdateRanks persists rank assignments for an examination in a
// single transaction so a batch publish never observes partial ranks.
func (r *StudentResultRepository) UpdateRanks(ctx context.Context, assignments []RankAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rank tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, a := range assignments {
		if _, err = tx.ExecContext(ctx, `UPDATE student_results SET overall_rank = $1, updated_at = $2 WHERE id = $3`, a.Rank, now, a.ResultID); err != nil {
			err = fmt.Errorf("update rank: %w", err)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit rank tx: %w", err)
	}
	return nil
}

// PublishByExamination stamps every result for the examination as
// published and flips the examination flag in one transaction.
// Already-published rows are simply re-stamped.
func (r *StudentResultRepository) PublishByExamination(ctx context.Context, examinationID string, publishedBy string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin publish tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, `UPDATE student_results SET is_published = TRUE, published_at = $1, published_by = $2, updated_at = $1 WHERE examination_id = $3`, now, publishedBy, examinationID); err != nil {
		err = fmt.Errorf("publish results: %w", err)
		return err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE examinations SET is_result_published = TRUE, updated_at = $1 WHERE id = $2`, now, examinationID); err != nil {
		err = fmt.Errorf("flag examination published: %w", err)
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit publish tx: %w", err)
	}
	return nil
}

// Statistics aggregates result counts for the given scope.
func (r *StudentResultRepository) Statistics(ctx context.Context, filter models.StatisticsFilter) (*models.ResultStatistics, error) {
	base := `FROM student_results sr`
	var conditions []string
	var args []interface{}

	if filter.ExaminationID != "" {
		conditions = append(conditions, fmt.Sprintf("sr.examination_id = $%d", len(args)+1))
		args = append(args, filter.ExaminationID)
	}
	if filter.AcademicYearID != "" {
		base += " JOIN examinations e ON e.id = sr.examination_id"
		conditions = append(conditions, fmt.Sprintf("e.academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT
        COUNT(*) AS total_results,
        COUNT(*) FILTER (WHERE sr.is_published) AS published_results,
        COUNT(*) FILTER (WHERE sr.result_status = 'PASS') AS pass_results,
        COUNT(*) FILTER (WHERE sr.result_status = 'FAIL') AS fail_results,
        COUNT(*) FILTER (WHERE sr.result_status = 'PENDING') AS pending_results
        %s%s`, base, where)

	var stats models.ResultStatistics
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("result statistics: %w", err)
	}
	stats.UnpublishedResults = stats.TotalResults - stats.PublishedResults
	return &stats, nil
}

// ResultSheetRow is a flattened row for result sheet export.
type ResultSheetRow struct {
	RollNumber   string  `db:"roll_number"`
	StudentName  string  `db:"student_name"`
	Obtained     float64 `db:"total_marks_obtained"`
	MaxMarks     float64 `db:"total_max_marks"`
	Percentage   float64 `db:"percentage"`
	Grade        string  `db:"grade"`
	ResultStatus string  `db:"result_status"`
	OverallRank  *int    `db:"overall_rank"`
}

// SheetByExamination returns ranked rows joined with student identity
// for export rendering.
func (r *StudentResultRepository) SheetByExamination(ctx context.Context, examinationID string) ([]ResultSheetRow, error) {
	const query = `SELECT s.roll_number, s.name AS student_name, sr.total_marks_obtained, sr.total_max_marks, sr.percentage, sr.grade, sr.result_status, sr.overall_rank
        FROM student_results sr
        JOIN students s ON s.id = sr.student_id
        WHERE sr.examination_id = $1
        ORDER BY sr.percentage DESC, sr.created_at ASC`
	var rows []ResultSheetRow
	if err := r.db.SelectContext(ctx, &rows, query, examinationID); err != nil {
		return nil, fmt.Errorf("result sheet: %w", err)
	}
	return rows, nil
}

// Delete removes a result; owned subject results cascade.
func (r *StudentResultRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM student_results WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}

func (r *StudentResultRepository) attachSubjects(ctx context.Context, results []*models.StudentResult) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]string, 0, len(results))
	byID := make(map[string]*models.StudentResult, len(results))
	for _, res := range results {
		ids = append(ids, res.ID)
		byID[res.ID] = res
	}

	query := fmt.Sprintf("SELECT %s FROM subject_results WHERE student_result_id = ANY($1) ORDER BY created_at ASC", subjectResultColumns)
	var subjects []models.SubjectResult
	if err := r.db.SelectContext(ctx, &subjects, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("load subject results: %w", err)
	}
	for _, sr := range subjects {
		if owner, ok := byID[sr.StudentResultID]; ok {
			owner.SubjectResults = append(owner.SubjectResults, sr)
		}
	}
	return nil
}
