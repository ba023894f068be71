package models

import "time"

// NotificationStatus tracks outbox delivery state.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationFailed  NotificationStatus = "FAILED"
)

// Result event types carried on the notification channel.
const (
	EventResultPublished  = "RESULT_PUBLISHED"
	EventResultUpdated    = "RESULT_UPDATED"
	EventResultDeleted    = "RESULT_DELETED"
	EventResultStatistics = "RESULT_STATISTICS"
)

// NotificationRequest is an outbox row recording an outbound
// notification; the external transport consumes it.
type NotificationRequest struct {
	ID              string             `db:"id" json:"id"`
	StudentResultID *string            `db:"student_result_id" json:"student_result_id,omitempty"`
	Type            string             `db:"type" json:"type"`
	Recipient       string             `db:"recipient" json:"recipient"`
	Payload         []byte             `db:"payload" json:"payload,omitempty"`
	Status          NotificationStatus `db:"status" json:"status"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
	SentAt          *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
}

// ResultEvent describes a result state transition for broadcast.
type ResultEvent struct {
	StudentID    string       `json:"student_id"`
	ResultID     string       `json:"result_id"`
	Type         string       `json:"type"`
	ExamType     string       `json:"exam_type,omitempty"`
	ClassLevel   string       `json:"class_level,omitempty"`
	ResultStatus ResultStatus `json:"result_status,omitempty"`
	RollNumber   string       `json:"roll_number,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	Metadata     interface{}  `json:"metadata,omitempty"`
}
