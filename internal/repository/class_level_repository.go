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

// ClassLevelRepository handles persistence for class levels.
type ClassLevelRepository struct {
	db *sqlx.DB
}

// NewClassLevelRepository constructs a ClassLevelRepository.
func NewClassLevelRepository(db *sqlx.DB) *ClassLevelRepository {
	return &ClassLevelRepository{db: db}
}

// List returns class levels matching the provided filter.
func (r *ClassLevelRepository) List(ctx context.Context, filter models.LookupFilter) ([]models.ClassLevel, int, error) {
	base := "FROM class_levels WHERE 1=1"
	var args []interface{}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(level) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
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

	query := fmt.Sprintf("SELECT id, level, created_at, updated_at %s ORDER BY level ASC LIMIT %d OFFSET %d", base, size, offset)

	var levels []models.ClassLevel
	if err := r.db.SelectContext(ctx, &levels, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list class levels: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count class levels: %w", err)
	}
	return levels, total, nil
}

// FindByID loads a class level by identifier.
func (r *ClassLevelRepository) FindByID(ctx context.Context, id string) (*models.ClassLevel, error) {
	const query = `SELECT id, level, created_at, updated_at FROM class_levels WHERE id = $1`
	var level models.ClassLevel
	if err := r.db.GetContext(ctx, &level, query, id); err != nil {
		return nil, err
	}
	return &level, nil
}

// ExistsByLevel checks level uniqueness.
func (r *ClassLevelRepository) ExistsByLevel(ctx context.Context, level string, excludeID string) (bool, error) {
	base := "SELECT 1 FROM class_levels WHERE level = $1"
	args := []interface{}{level}
	if excludeID != "" {
		base += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class level: %w", err)
	}
	return true, nil
}

// Create inserts a new class level record.
func (r *ClassLevelRepository) Create(ctx context.Context, level *models.ClassLevel) error {
	if level.ID == "" {
		level.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if level.CreatedAt.IsZero() {
		level.CreatedAt = now
	}
	level.UpdatedAt = now
	const query = `INSERT INTO class_levels (id, level, created_at, updated_at) VALUES (:id, :level, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, level); err != nil {
		return translate(err, "create class level")
	}
	return nil
}

// Update modifies an existing class level.
func (r *ClassLevelRepository) Update(ctx context.Context, level *models.ClassLevel) error {
	level.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_levels SET level = :level, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, level); err != nil {
		return translate(err, "update class level")
	}
	return nil
}

// Delete removes a class level permanently.
func (r *ClassLevelRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM class_levels WHERE id = $1`, id); err != nil {
		return translate(err, "delete class level")
	}
	return nil
}
