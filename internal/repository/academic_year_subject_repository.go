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

// AcademicYearSubjectRepository handles persistence for subject
// applicability mappings.
type AcademicYearSubjectRepository struct {
	db *sqlx.DB
}

// NewAcademicYearSubjectRepository constructs the repository.
func NewAcademicYearSubjectRepository(db *sqlx.DB) *AcademicYearSubjectRepository {
	return &AcademicYearSubjectRepository{db: db}
}

const aysColumns = "id, academic_year_id, subject_id, class_level_id, stream_id, max_marks, min_passing_marks, is_compulsory, syllabus_version, is_active, created_at, updated_at"

// List returns mappings matching the provided filters.
func (r *AcademicYearSubjectRepository) List(ctx context.Context, filter models.AcademicYearSubjectFilter) ([]models.AcademicYearSubject, int, error) {
	base := "FROM academic_year_subjects WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.ClassLevelID != "" {
		conditions = append(conditions, fmt.Sprintf("class_level_id = $%d", len(args)+1))
		args = append(args, filter.ClassLevelID)
	}
	if filter.StreamID != "" {
		conditions = append(conditions, fmt.Sprintf("stream_id = $%d", len(args)+1))
		args = append(args, filter.StreamID)
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", aysColumns, base, size, offset)

	var mappings []models.AcademicYearSubject
	if err := r.db.SelectContext(ctx, &mappings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list year subjects: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count year subjects: %w", err)
	}
	return mappings, total, nil
}

// FindByID loads a mapping by identifier.
func (r *AcademicYearSubjectRepository) FindByID(ctx context.Context, id string) (*models.AcademicYearSubject, error) {
	query := fmt.Sprintf("SELECT %s FROM academic_year_subjects WHERE id = $1", aysColumns)
	var mapping models.AcademicYearSubject
	if err := r.db.GetContext(ctx, &mapping, query, id); err != nil {
		return nil, err
	}
	return &mapping, nil
}

// ExistsByCombination probes the (year, subject, class, stream)
// uniqueness key. NULL class/stream components are distinct key
// values equal only to NULL, compared with IS NOT DISTINCT FROM.
func (r *AcademicYearSubjectRepository) ExistsByCombination(ctx context.Context, academicYearID, subjectID string, classLevelID, streamID *string, excludeID string) (bool, error) {
	base := "SELECT 1 FROM academic_year_subjects WHERE academic_year_id = $1 AND subject_id = $2 AND class_level_id IS NOT DISTINCT FROM $3 AND stream_id IS NOT DISTINCT FROM $4"
	args := []interface{}{academicYearID, subjectID, classLevelID, streamID}
	if excludeID != "" {
		base += " AND id <> $5"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject mapping: %w", err)
	}
	return true, nil
}

// Create inserts a new mapping record.
func (r *AcademicYearSubjectRepository) Create(ctx context.Context, mapping *models.AcademicYearSubject) error {
	if mapping.ID == "" {
		mapping.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = now
	}
	mapping.UpdatedAt = now
	const query = `INSERT INTO academic_year_subjects (id, academic_year_id, subject_id, class_level_id, stream_id, max_marks, min_passing_marks, is_compulsory, syllabus_version, is_active, created_at, updated_at)
        VALUES (:id, :academic_year_id, :subject_id, :class_level_id, :stream_id, :max_marks, :min_passing_marks, :is_compulsory, :syllabus_version, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mapping); err != nil {
		return translate(err, "create year subject")
	}
	return nil
}

// Update modifies an existing mapping.
func (r *AcademicYearSubjectRepository) Update(ctx context.Context, mapping *models.AcademicYearSubject) error {
	mapping.UpdatedAt = time.Now().UTC()
	const query = `UPDATE academic_year_subjects SET academic_year_id = :academic_year_id, subject_id = :subject_id, class_level_id = :class_level_id, stream_id = :stream_id, max_marks = :max_marks, min_passing_marks = :min_passing_marks, is_compulsory = :is_compulsory, syllabus_version = :syllabus_version, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, mapping); err != nil {
		return translate(err, "update year subject")
	}
	return nil
}

// Delete removes a mapping permanently.
func (r *AcademicYearSubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM academic_year_subjects WHERE id = $1`, id); err != nil {
		return translate(err, "delete year subject")
	}
	return nil
}
