package models

import "time"

// CourseRequestStatus enumerates the lifecycle states of a course request.
type CourseRequestStatus string

const (
	RequestPending   CourseRequestStatus = "pending"
	RequestConfirmed CourseRequestStatus = "confirmed"
	RequestCompleted CourseRequestStatus = "completed"
	RequestCancelled CourseRequestStatus = "cancelled"
	RequestPastDue   CourseRequestStatus = "past_due"
)

// Active reports whether the request still occupies its org+location+date slot.
func (s CourseRequestStatus) Active() bool {
	return s == RequestPending || s == RequestConfirmed
}

// Terminal reports whether the engine accepts no further transitions.
func (s CourseRequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestCancelled || s == RequestPastDue
}

// CourseRequest is the unit of scheduling work, tracked from submission to
// completion or termination. It is the source of truth: availability entries
// and class entries are derived from it and only change inside its
// transitions.
type CourseRequest struct {
	ID             string              `db:"id" json:"id"`
	OrganizationID string              `db:"organization_id" json:"organization_id"`
	CourseTypeID   string              `db:"course_type_id" json:"course_type_id"`
	InstructorID   *string             `db:"instructor_id" json:"instructor_id,omitempty"`
	RequestedDate  time.Time           `db:"requested_date" json:"requested_date"`
	Location       string              `db:"location" json:"location"`
	ConfirmedDate  *time.Time          `db:"confirmed_date" json:"confirmed_date,omitempty"`
	ConfirmedStart *string             `db:"confirmed_start" json:"confirmed_start,omitempty"`
	ConfirmedEnd   *string             `db:"confirmed_end" json:"confirmed_end,omitempty"`
	StudentCount   int                 `db:"student_count" json:"student_count"`
	Notes          string              `db:"notes" json:"notes"`
	Status         CourseRequestStatus `db:"status" json:"status"`
	Archived       bool                `db:"archived" json:"archived"`
	Invoiced       bool                `db:"invoiced" json:"invoiced"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updated_at"`
}

// CourseRequestFilter describes query params for listing course requests.
type CourseRequestFilter struct {
	OrganizationID  string
	InstructorID    string
	Status          string
	IncludeArchived bool
	Page            int
	PageSize        int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
