package models

import "time"

// ClassLevel is a year/grade tier such as "10" or "12".
type ClassLevel struct {
	ID        string    `db:"id" json:"id"`
	Level     string    `db:"level" json:"level"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Stream is a subject-track specialization within a class level.
type Stream struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LookupFilter is shared by the small reference entities.
type LookupFilter struct {
	Search   string
	Page     int
	PageSize int
}
