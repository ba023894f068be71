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

// StreamRepository handles persistence for streams.
type StreamRepository struct {
	db *sqlx.DB
}

// NewStreamRepository constructs a StreamRepository.
func NewStreamRepository(db *sqlx.DB) *StreamRepository {
	return &StreamRepository{db: db}
}

// List returns streams matching the provided filter.
func (r *StreamRepository) List(ctx context.Context, filter models.LookupFilter) ([]models.Stream, int, error) {
	base := "FROM streams WHERE 1=1"
	var args []interface{}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(name) LIKE $%d", len(args)+1)
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

	query := fmt.Sprintf("SELECT id, name, created_at, updated_at %s ORDER BY name ASC LIMIT %d OFFSET %d", base, size, offset)

	var streams []models.Stream
	if err := r.db.SelectContext(ctx, &streams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list streams: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count streams: %w", err)
	}
	return streams, total, nil
}

// FindByID loads a stream by identifier.
func (r *StreamRepository) FindByID(ctx context.Context, id string) (*models.Stream, error) {
	const query = `SELECT id, name, created_at, updated_at FROM streams WHERE id = $1`
	var stream models.Stream
	if err := r.db.GetContext(ctx, &stream, query, id); err != nil {
		return nil, err
	}
	return &stream, nil
}

// ExistsByName checks stream name uniqueness.
func (r *StreamRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	base := "SELECT 1 FROM streams WHERE name = $1"
	args := []interface{}{name}
	if excludeID != "" {
		base += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check stream name: %w", err)
	}
	return true, nil
}

// Create inserts a new stream record.
func (r *StreamRepository) Create(ctx context.Context, stream *models.Stream) error {
	if stream.ID == "" {
		stream.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if stream.CreatedAt.IsZero() {
		stream.CreatedAt = now
	}
	stream.UpdatedAt = now
	const query = `INSERT INTO streams (id, name, created_at, updated_at) VALUES (:id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, stream); err != nil {
		return translate(err, "create stream")
	}
	return nil
}

// Update modifies an existing stream.
func (r *StreamRepository) Update(ctx context.Context, stream *models.Stream) error {
	stream.UpdatedAt = time.Now().UTC()
	const query = `UPDATE streams SET name = :name, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, stream); err != nil {
		return translate(err, "update stream")
	}
	return nil
}

// Delete removes a stream permanently.
func (r *StreamRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM streams WHERE id = $1`, id); err != nil {
		return translate(err, "delete stream")
	}
	return nil
}
