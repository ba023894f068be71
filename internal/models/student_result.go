package models

import "time"

// ResultStatus describes the outcome of a student result.
type ResultStatus string

const (
	ResultStatusPass    ResultStatus = "PASS"
	ResultStatusFail    ResultStatus = "FAIL"
	ResultStatusAbsent  ResultStatus = "ABSENT"
	ResultStatusPending ResultStatus = "PENDING"
)

// StudentResult is the per-student, per-examination aggregate. The
// percentage is always derived from the two mark totals, never
// accepted from a client.
type StudentResult struct {
	ID                 string       `db:"id" json:"id"`
	ExaminationID      string       `db:"examination_id" json:"examination_id"`
	StudentID          string       `db:"student_id" json:"student_id"`
	TotalMarksObtained float64      `db:"total_marks_obtained" json:"total_marks_obtained"`
	TotalMaxMarks      float64      `db:"total_max_marks" json:"total_max_marks"`
	Percentage         float64      `db:"percentage" json:"percentage"`
	Grade              string       `db:"grade" json:"grade"`
	ResultStatus       ResultStatus `db:"result_status" json:"result_status"`
	OverallRank        *int         `db:"overall_rank" json:"overall_rank,omitempty"`
	Remarks            string       `db:"remarks" json:"remarks"`
	IsPublished        bool         `db:"is_published" json:"is_published"`
	PublishedAt        *time.Time   `db:"published_at" json:"published_at,omitempty"`
	PublishedBy        *string      `db:"published_by" json:"published_by,omitempty"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updated_at"`

	SubjectResults []SubjectResult `json:"subject_results,omitempty"`
}

// SubjectResult captures one subject's marks within a StudentResult.
// IsPass is derived from the fixed 33% subject threshold.
type SubjectResult struct {
	ID                    string    `db:"id" json:"id"`
	StudentResultID       string    `db:"student_result_id" json:"student_result_id"`
	AcademicYearSubjectID string    `db:"academic_year_subject_id" json:"academic_year_subject_id"`
	MarksObtained         float64   `db:"marks_obtained" json:"marks_obtained"`
	MaxMarks              float64   `db:"max_marks" json:"max_marks"`
	Grade                 string    `db:"grade" json:"grade"`
	IsPass                bool      `db:"is_pass" json:"is_pass"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// StudentResultFilter scopes result list queries.
type StudentResultFilter struct {
	ExaminationID string
	StudentID     string
	ResultStatus  ResultStatus
	IsPublished   *bool
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

// ResultStatistics aggregates result counts for reporting.
type ResultStatistics struct {
	TotalResults       int     `db:"total_results" json:"total_results"`
	PublishedResults   int     `db:"published_results" json:"published_results"`
	UnpublishedResults int     `json:"unpublished_results"`
	PassResults        int     `db:"pass_results" json:"pass_results"`
	FailResults        int     `db:"fail_results" json:"fail_results"`
	PendingResults     int     `db:"pending_results" json:"pending_results"`
	PassPercentage     float64 `json:"pass_percentage"`
}

// StatisticsFilter scopes the aggregate counts.
type StatisticsFilter struct {
	ExaminationID  string
	AcademicYearID string
}
