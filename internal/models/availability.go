package models

import "time"

// AvailabilityStatus enumerates states of an instructor's day entry. Absence
// of a row means the day is not offered at all.
type AvailabilityStatus string

const (
	AvailabilityAvailable AvailabilityStatus = "available"
	AvailabilityCompleted AvailabilityStatus = "completed"
)

// AvailabilityEntry records an instructor's openness on a calendar day.
// Exactly one entry may exist per (instructor, date).
type AvailabilityEntry struct {
	ID           string             `db:"id" json:"id"`
	InstructorID string             `db:"instructor_id" json:"instructor_id"`
	Date         time.Time          `db:"date" json:"date"`
	Status       AvailabilityStatus `db:"status" json:"status"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
}
