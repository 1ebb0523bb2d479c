package models

import "time"

// ClassEntryStatus enumerates states of a materialized class occurrence.
type ClassEntryStatus string

const (
	ClassScheduled ClassEntryStatus = "scheduled"
	ClassCompleted ClassEntryStatus = "completed"
)

// ClassEntry is the materialized, instructor-facing occurrence of a confirmed
// course request. One class per instructor per day; it exists exactly while
// the governing request is confirmed or completed.
type ClassEntry struct {
	ID              string           `db:"id" json:"id"`
	CourseRequestID string           `db:"course_request_id" json:"course_request_id"`
	InstructorID    string           `db:"instructor_id" json:"instructor_id"`
	OrganizationID  string           `db:"organization_id" json:"organization_id"`
	CourseTypeID    string           `db:"course_type_id" json:"course_type_id"`
	Date            time.Time        `db:"date" json:"date"`
	StartTime       string           `db:"start_time" json:"start_time"`
	EndTime         string           `db:"end_time" json:"end_time"`
	Location        string           `db:"location" json:"location"`
	MaxStudents     int              `db:"max_students" json:"max_students"`
	Status          ClassEntryStatus `db:"status" json:"status"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}
