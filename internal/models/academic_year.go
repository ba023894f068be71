package models

import "time"

// AcademicYear is a labeled academic time span. At most one year is
// marked current system-wide.
type AcademicYear struct {
	ID        string    `db:"id" json:"id"`
	YearLabel string    `db:"year_label" json:"year_label"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsCurrent bool      `db:"is_current" json:"is_current"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AcademicYearFilter captures list filters for academic years.
type AcademicYearFilter struct {
	YearLabel string
	IsCurrent *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
