package models

import "time"

// GradingPolicy selects how a result's grade is derived.
type GradingPolicy string

const (
	// PolicyLettered maps percentages onto the A+..F band table.
	PolicyLettered GradingPolicy = "LETTERED"
	// PolicyPassFail is the legacy board variant without letter grades.
	PolicyPassFail GradingPolicy = "PASS_FAIL"
)

// ExamType enumerates assessment kinds within an academic year.
type ExamType string

const (
	ExamTypeMidTerm   ExamType = "MID_TERM"
	ExamTypeFinal     ExamType = "FINAL"
	ExamTypeUnitTest  ExamType = "UNIT_TEST"
	ExamTypePractical ExamType = "PRACTICAL"
)

// Examination is a gradable assessment event scoped to an academic
// year, optionally restricted to a class level and stream.
type Examination struct {
	ID                string        `db:"id" json:"id"`
	AcademicYearID    string        `db:"academic_year_id" json:"academic_year_id"`
	Name              string        `db:"name" json:"name"`
	ClassLevelID      *string       `db:"class_level_id" json:"class_level_id,omitempty"`
	StreamID          *string       `db:"stream_id" json:"stream_id,omitempty"`
	ExamType          ExamType      `db:"exam_type" json:"exam_type"`
	ExamDate          time.Time     `db:"exam_date" json:"exam_date"`
	GradingPolicy     GradingPolicy `db:"grading_policy" json:"grading_policy"`
	PassingThreshold  float64       `db:"passing_threshold" json:"passing_threshold"`
	IsResultPublished bool          `db:"is_result_published" json:"is_result_published"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// ExaminationFilter scopes examination list queries.
type ExaminationFilter struct {
	AcademicYearID string
	ClassLevelID   string
	StreamID       string
	ExamType       ExamType
	Search         string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
