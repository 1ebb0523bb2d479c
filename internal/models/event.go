package models

import "time"

// EventType identifies a domain event emitted after a committed transition.
type EventType string

const (
	EventCourseAssigned    EventType = "course.assigned"
	EventCourseRescheduled EventType = "course.rescheduled"
	EventCourseCancelled   EventType = "course.cancelled"
	EventCourseCompleted   EventType = "course.completed"
)

// Event captures a committed state transition for downstream notifiers.
// Events are buffered during a transition and published only after the
// transaction commits; delivery is best-effort and never blocks the caller.
type Event struct {
	ID         string       `json:"id"`
	Type       EventType    `json:"type"`
	RequestID  string       `json:"request_id"`
	OccurredAt time.Time    `json:"occurred_at"`
	Payload    EventPayload `json:"payload"`
}

// EventPayload carries the request snapshot plus optional directory
// enrichment filled in by the dispatcher.
type EventPayload struct {
	Request            CourseRequest `json:"request"`
	Reason             string        `json:"reason,omitempty"`
	PreviousInstructor *string       `json:"previous_instructor_id,omitempty"`
	PreviousDate       *time.Time    `json:"previous_date,omitempty"`
	OrganizationName   string        `json:"organization_name,omitempty"`
	InstructorName     string        `json:"instructor_name,omitempty"`
}
