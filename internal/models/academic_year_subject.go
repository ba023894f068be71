package models

import "time"

// AcademicYearSubject binds a Subject to an AcademicYear, optionally
// restricted to a class level and stream. NULL class/stream means the
// mapping applies without restriction and is a distinct key value.
type AcademicYearSubject struct {
	ID              string    `db:"id" json:"id"`
	AcademicYearID  string    `db:"academic_year_id" json:"academic_year_id"`
	SubjectID       string    `db:"subject_id" json:"subject_id"`
	ClassLevelID    *string   `db:"class_level_id" json:"class_level_id,omitempty"`
	StreamID        *string   `db:"stream_id" json:"stream_id,omitempty"`
	MaxMarks        float64   `db:"max_marks" json:"max_marks"`
	MinPassingMarks float64   `db:"min_passing_marks" json:"min_passing_marks"`
	IsCompulsory    bool      `db:"is_compulsory" json:"is_compulsory"`
	SyllabusVersion string    `db:"syllabus_version" json:"syllabus_version"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// AcademicYearSubjectFilter scopes mapping queries.
type AcademicYearSubjectFilter struct {
	AcademicYearID string
	SubjectID      string
	ClassLevelID   string
	StreamID       string
	IsActive       *bool
	Page           int
	PageSize       int
}
