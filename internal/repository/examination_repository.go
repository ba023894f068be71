package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/board-result-api/internal/models"
)

// ExaminationRepository handles persistence for examinations.
type ExaminationRepository struct {
	db *sqlx.DB
}

// NewExaminationRepository constructs an ExaminationRepository.
func NewExaminationRepository(db *sqlx.DB) *ExaminationRepository {
	return &ExaminationRepository{db: db}
}

const examColumns = "id, academic_year_id, name, class_level_id, stream_id, exam_type, exam_date, grading_policy, passing_threshold, is_result_published, created_at, updated_at"

// List returns examinations matching the provided filters.
func (r *ExaminationRepository) List(ctx context.Context, filter models.ExaminationFilter) ([]models.Examination, int, error) {
	base := "FROM examinations WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
	}
	if filter.ClassLevelID != "" {
		conditions = append(conditions, fmt.Sprintf("class_level_id = $%d", len(args)+1))
		args = append(args, filter.ClassLevelID)
	}
	if filter.StreamID != "" {
		conditions = append(conditions, fmt.Sprintf("stream_id = $%d", len(args)+1))
		args = append(args, filter.StreamID)
	}
	if filter.ExamType != "" {
		conditions = append(conditions, fmt.Sprintf("exam_type = $%d", len(args)+1))
		args = append(args, filter.ExamType)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"name": true, "exam_date": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "exam_date"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", examColumns, base, sortBy, order, size, offset)

	var exams []models.Examination
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list examinations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count examinations: %w", err)
	}
	return exams, total, nil
}

// FindByID loads an examination by identifier.
func (r *ExaminationRepository) FindByID(ctx context.Context, id string) (*models.Examination, error) {
	query := fmt.Sprintf("SELECT %s FROM examinations WHERE id = $1", examColumns)
	var exam models.Examination
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// ExistsByComposite probes the (year, name, class, stream, type)
// uniqueness key with NULL-distinct comparison for optional parts.
func (r *ExaminationRepository) ExistsByComposite(ctx context.Context, academicYearID, name string, classLevelID, streamID *string, examType models.ExamType, excludeID string) (bool, error) {
	base := "SELECT 1 FROM examinations WHERE academic_year_id = $1 AND name = $2 AND class_level_id IS NOT DISTINCT FROM $3 AND stream_id IS NOT DISTINCT FROM $4 AND exam_type = $5"
	args := []interface{}{academicYearID, name, classLevelID, streamID, examType}
	if excludeID != "" {
		base += " AND id <> $6"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check examination key: %w", err)
	}
	return true, nil
}

// Create inserts a new examination record.
func (r *ExaminationRepository) Create(ctx context.Context, exam *models.Examination) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now
	const query = `INSERT INTO examinations (id, academic_year_id, name, class_level_id, stream_id, exam_type, exam_date, grading_policy, passing_threshold, is_result_published, created_at, updated_at)
        VALUES (:id, :academic_year_id, :name, :class_level_id, :stream_id, :exam_type, :exam_date, :grading_policy, :passing_threshold, :is_result_published, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return translate(err, "create examination")
	}
	return nil
}

// Update modifies an existing examination.
func (r *ExaminationRepository) Update(ctx context.Context, exam *models.Examination) error {
	exam.UpdatedAt = time.Now().UTC()
	const query = `UPDATE examinations SET academic_year_id = :academic_year_id, name = :name, class_level_id = :class_level_id, stream_id = :stream_id, exam_type = :exam_type, exam_date = :exam_date, grading_policy = :grading_policy, passing_threshold = :passing_threshold, is_result_published = :is_result_published, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return translate(err, "update examination")
	}
	return nil
}

// Delete removes an examination. Dependent results cascade.
func (r *ExaminationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM examinations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete examination: %w", err)
	}
	return nil
}
