package models

import "time"

// Student represents a learner enrolled for an academic year. UserID
// references the external user directory.
type Student struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	RollNumber     string    `db:"roll_number" json:"roll_number"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	ClassLevelID   *string   `db:"class_level_id" json:"class_level_id,omitempty"`
	StreamID       *string   `db:"stream_id" json:"stream_id,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search         string
	AcademicYearID string
	ClassLevelID   string
	StreamID       string
	Active         *bool
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
