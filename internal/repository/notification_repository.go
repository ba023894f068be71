package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/board-result-api/internal/models"
)

// NotificationRepository persists the notification outbox.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create appends a pending outbox row.
func (r *NotificationRepository) Create(ctx context.Context, req *models.NotificationRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = models.NotificationPending
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notification_requests (id, student_result_id, type, recipient, payload, status, created_at, sent_at)
        VALUES (:id, :student_result_id, :type, :recipient, :payload, :status, :created_at, :sent_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return translate(err, "create notification request")
	}
	return nil
}

// MarkSent records successful delivery.
func (r *NotificationRepository) MarkSent(ctx context.Context, id string) error {
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, `UPDATE notification_requests SET status = $1, sent_at = $2 WHERE id = $3`, models.NotificationSent, now, id); err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

// MarkFailed records a delivery failure. The row is kept for
// inspection; nothing retries it.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE notification_requests SET status = $1 WHERE id = $2`, models.NotificationFailed, id); err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	return nil
}

// ListByResult returns the outbox rows recorded for a result.
func (r *NotificationRepository) ListByResult(ctx context.Context, studentResultID string) ([]models.NotificationRequest, error) {
	const query = `SELECT id, student_result_id, type, recipient, payload, status, created_at, sent_at
        FROM notification_requests WHERE student_result_id = $1 ORDER BY created_at DESC`
	var rows []models.NotificationRequest
	if err := r.db.SelectContext(ctx, &rows, query, studentResultID); err != nil {
		return nil, fmt.Errorf("list notification requests: %w", err)
	}
	return rows, nil
}
