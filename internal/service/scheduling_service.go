package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/courseops/scheduling-api/internal/models"
	appErrors "github.com/courseops/scheduling-api/pkg/errors"
)

type courseRequestRepo interface {
	Create(ctx context.Context, req *models.CourseRequest) error
	FindByID(ctx context.Context, id string) (*models.CourseRequest, error)
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.CourseRequest, error)
	Update(ctx context.Context, exec sqlx.ExtContext, req *models.CourseRequest) error
	ExistsActive(ctx context.Context, organizationID, location string, date time.Time) (bool, error)
	ListConfirmedByInstructorDate(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time, excludeRequestID string) ([]models.CourseRequest, error)
	List(ctx context.Context, filter models.CourseRequestFilter) ([]models.CourseRequest, int, error)
}

type availabilityLedger interface {
	Upsert(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time, status models.AvailabilityStatus) error
	Delete(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time) error
}

type scheduleProjection interface {
	Insert(ctx context.Context, exec sqlx.ExtContext, entry *models.ClassEntry) error
	DeleteByInstructorDate(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time) error
	MarkCompleted(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time) error
}

type transitionRunner interface {
	Run(ctx context.Context, fn func(tx sqlx.ExtContext) error) error
	LockInstructors(ctx context.Context, exec sqlx.ExtContext, instructorIDs ...string) error
}

type eventPublisher interface {
	Publish(events ...models.Event)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, instructorIDs ...string)
}

// SubmitRequestInput describes a new course request submission.
type SubmitRequestInput struct {
	OrganizationID string `json:"organization_id" validate:"required"`
	CourseTypeID   string `json:"course_type_id" validate:"required"`
	RequestedDate  string `json:"requested_date" validate:"required,datetime=2006-01-02"`
	Location       string `json:"location" validate:"required"`
	StudentCount   int    `json:"student_count" validate:"required,gte=1"`
	Notes          string `json:"notes"`
}

// AssignInstructorInput confirms a request against an instructor and window.
type AssignInstructorInput struct {
	InstructorID string `json:"instructor_id" validate:"required"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
}

// RescheduleInput moves a confirmed request to a new date, window and
// optionally a new instructor.
type RescheduleInput struct {
	NewDate         string `json:"new_date" validate:"required,datetime=2006-01-02"`
	NewStart        string `json:"new_start" validate:"required"`
	NewEnd          string `json:"new_end" validate:"required"`
	NewInstructorID string `json:"new_instructor_id"`
}

// CancelInput terminates a pending or confirmed request.
type CancelInput struct {
	Reason string `json:"reason" validate:"required"`
}

// CompleteInput finishes a confirmed request.
type CompleteInput struct {
	Comments string `json:"comments"`
}

// SchedulingService owns the course request lifecycle. All multi-entity
// transitions run inside a single unit of work; domain events are collected
// during the transition and published only after commit.
type SchedulingService struct {
	requests     courseRequestRepo
	availability availabilityLedger
	classes      scheduleProjection
	tx           transitionRunner
	events       eventPublisher
	cache        cacheInvalidator
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewSchedulingService creates the service.
func NewSchedulingService(
	requests courseRequestRepo,
	availability availabilityLedger,
	classes scheduleProjection,
	tx transitionRunner,
	events eventPublisher,
	cache cacheInvalidator,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *SchedulingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulingService{
		requests:     requests,
		availability: availability,
		classes:      classes,
		tx:           tx,
		events:       events,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		now:          time.Now,
	}
}

// Submit creates a new request in pending state.
func (s *SchedulingService) Submit(ctx context.Context, input SubmitRequestInput) (*models.CourseRequest, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	date, err := parseDate(input.RequestedDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid requested date")
	}

	active, err := s.requests.ExistsActive(ctx, input.OrganizationID, input.Location, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing requests")
	}
	if active {
		return nil, appErrors.Clone(appErrors.ErrDuplicateRequest,
			fmt.Sprintf("an active request already exists for organization %s at %s on %s", input.OrganizationID, input.Location, input.RequestedDate))
	}

	req := &models.CourseRequest{
		OrganizationID: input.OrganizationID,
		CourseTypeID:   input.CourseTypeID,
		RequestedDate:  date,
		Location:       input.Location,
		StudentCount:   input.StudentCount,
		Notes:          input.Notes,
		Status:         models.RequestPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateRequest, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}
	s.observe("submit")
	return req, nil
}

// AssignInstructor confirms a pending request (or reassigns a confirmed one)
// against an instructor and time window. Atomically consumes the instructor's
// availability for the day and materializes the class entry.
func (s *SchedulingService) AssignInstructor(ctx context.Context, requestID string, input AssignInstructorInput) (*models.CourseRequest, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if err := validateWindow(input.StartTime, input.EndTime); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time window")
	}

	var (
		updated            *models.CourseRequest
		events             []models.Event
		touchedInstructors []string
	)
	err := s.tx.Run(ctx, func(tx sqlx.ExtContext) error {
		req, err := s.requests.FindByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			return mapLoadError(err, "course request not found")
		}
		if !req.Status.Active() {
			return appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("request is %s and cannot be assigned", req.Status))
		}
		if req.RequestedDate.IsZero() {
			return appErrors.Clone(appErrors.ErrValidation, "request has no requested date")
		}

		prevInstructor := req.InstructorID
		lockIDs := []string{input.InstructorID}
		if prevInstructor != nil {
			lockIDs = append(lockIDs, *prevInstructor)
		}
		if err := s.tx.LockInstructors(ctx, tx, lockIDs...); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to serialize instructor transition")
		}
		touchedInstructors = lockIDs

		// Reassignment releases the previous booking before the new check.
		if req.Status == models.RequestConfirmed && prevInstructor != nil && req.ConfirmedDate != nil {
			if err := s.availability.Upsert(ctx, tx, *prevInstructor, *req.ConfirmedDate, models.AvailabilityAvailable); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore previous availability")
			}
			if err := s.classes.DeleteByInstructorDate(ctx, tx, *prevInstructor, *req.ConfirmedDate); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove previous class entry")
			}
		}

		confirmed, err := s.requests.ListConfirmedByInstructorDate(ctx, tx, input.InstructorID, req.RequestedDate, req.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor bookings")
		}
		if conflict := FindConflict(input.StartTime, input.EndTime, confirmed); conflict != nil {
			return conflictError(conflict)
		}

		date := req.RequestedDate
		req.Status = models.RequestConfirmed
		req.InstructorID = &input.InstructorID
		req.ConfirmedDate = &date
		req.ConfirmedStart = &input.StartTime
		req.ConfirmedEnd = &input.EndTime
		if err := s.requests.Update(ctx, tx, req); err != nil {
			if isUniqueViolation(err) {
				return appErrors.Clone(appErrors.ErrInstructorConflict, "")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
		}

		if err := s.availability.Delete(ctx, tx, input.InstructorID, date); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume availability")
		}
		if err := s.classes.Insert(ctx, tx, classEntryFor(req)); err != nil {
			if isUniqueViolation(err) {
				return appErrors.Clone(appErrors.ErrInstructorConflict, "")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to materialize class entry")
		}

		updated = req
		events = append(events, s.newEvent(models.EventCourseAssigned, *req, func(p *models.EventPayload) {
			p.PreviousInstructor = prevInstructor
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, events, touchedInstructors)
	s.observe("assign")
	return updated, nil
}

// Reschedule moves a confirmed request to a new date/window, optionally to a
// different instructor. The old availability is restored and the old class
// entry removed in the same unit of work that books the new slot.
func (s *SchedulingService) Reschedule(ctx context.Context, requestID string, input RescheduleInput) (*models.CourseRequest, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}
	if err := validateWindow(input.NewStart, input.NewEnd); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time window")
	}
	newDate, err := parseDate(input.NewDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid new date")
	}

	var (
		updated            *models.CourseRequest
		events             []models.Event
		touchedInstructors []string
	)
	err = s.tx.Run(ctx, func(tx sqlx.ExtContext) error {
		req, err := s.requests.FindByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			return mapLoadError(err, "course request not found")
		}
		if req.Status != models.RequestConfirmed {
			return appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("request is %s and cannot be rescheduled", req.Status))
		}
		if req.InstructorID == nil || req.ConfirmedDate == nil {
			return appErrors.Clone(appErrors.ErrInvalidState, "confirmed request has no instructor booking")
		}

		oldInstructor := *req.InstructorID
		oldDate := *req.ConfirmedDate
		newInstructor := oldInstructor
		if input.NewInstructorID != "" {
			newInstructor = input.NewInstructorID
		}

		if err := s.tx.LockInstructors(ctx, tx, oldInstructor, newInstructor); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to serialize instructor transition")
		}
		touchedInstructors = []string{oldInstructor, newInstructor}

		if err := s.availability.Upsert(ctx, tx, oldInstructor, oldDate, models.AvailabilityAvailable); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore availability")
		}
		if err := s.classes.DeleteByInstructorDate(ctx, tx, oldInstructor, oldDate); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove class entry")
		}

		confirmed, err := s.requests.ListConfirmedByInstructorDate(ctx, tx, newInstructor, newDate, req.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor bookings")
		}
		if conflict := FindConflict(input.NewStart, input.NewEnd, confirmed); conflict != nil {
			return conflictError(conflict)
		}

		req.InstructorID = &newInstructor
		req.ConfirmedDate = &newDate
		req.ConfirmedStart = &input.NewStart
		req.ConfirmedEnd = &input.NewEnd
		if err := s.requests.Update(ctx, tx, req); err != nil {
			if isUniqueViolation(err) {
				return appErrors.Clone(appErrors.ErrInstructorConflict, "")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
		}

		if err := s.availability.Delete(ctx, tx, newInstructor, newDate); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume availability")
		}
		if err := s.classes.Insert(ctx, tx, classEntryFor(req)); err != nil {
			if isUniqueViolation(err) {
				return appErrors.Clone(appErrors.ErrInstructorConflict, "")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to materialize class entry")
		}

		updated = req
		events = append(events, s.newEvent(models.EventCourseRescheduled, *req, func(p *models.EventPayload) {
			p.PreviousInstructor = &oldInstructor
			p.PreviousDate = &oldDate
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, events, touchedInstructors)
	s.observe("reschedule")
	return updated, nil
}

// Cancel terminates a pending or confirmed request. The terminal status is
// past_due when the requested date already elapsed, cancelled otherwise.
// Requests for today cancel to cancelled; only strictly earlier dates are
// past due.
func (s *SchedulingService) Cancel(ctx context.Context, requestID string, input CancelInput) (*models.CourseRequest, error) {
	if err := s.validator.Struct(input); err != nil || strings.TrimSpace(input.Reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cancellation reason is required")
	}

	var (
		updated            *models.CourseRequest
		events             []models.Event
		touchedInstructors []string
	)
	err := s.tx.Run(ctx, func(tx sqlx.ExtContext) error {
		req, err := s.requests.FindByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			return mapLoadError(err, "course request not found")
		}
		if !req.Status.Active() {
			return appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("request is already %s", req.Status))
		}

		target := models.RequestCancelled
		if req.RequestedDate.Before(s.pastDueCutoff()) {
			target = models.RequestPastDue
		}

		if req.InstructorID != nil && req.ConfirmedDate != nil {
			instructor := *req.InstructorID
			date := *req.ConfirmedDate
			if err := s.tx.LockInstructors(ctx, tx, instructor); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to serialize instructor transition")
			}
			touchedInstructors = []string{instructor}
			if err := s.classes.DeleteByInstructorDate(ctx, tx, instructor, date); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove class entry")
			}
			if err := s.availability.Upsert(ctx, tx, instructor, date, models.AvailabilityAvailable); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore availability")
			}
		}

		req.Status = target
		req.Notes = appendNote(req.Notes, "cancelled: "+strings.TrimSpace(input.Reason))
		if err := s.requests.Update(ctx, tx, req); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
		}

		updated = req
		events = append(events, s.newEvent(models.EventCourseCancelled, *req, func(p *models.EventPayload) {
			p.Reason = strings.TrimSpace(input.Reason)
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, events, touchedInstructors)
	s.observe("cancel")
	return updated, nil
}

// Complete finishes a confirmed request and flips its class entry in the same
// unit of work. Completing an already-completed request is reported, not
// silently accepted.
func (s *SchedulingService) Complete(ctx context.Context, requestID string, input CompleteInput) (*models.CourseRequest, error) {
	var (
		updated            *models.CourseRequest
		events             []models.Event
		touchedInstructors []string
	)
	err := s.tx.Run(ctx, func(tx sqlx.ExtContext) error {
		req, err := s.requests.FindByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			return mapLoadError(err, "course request not found")
		}
		if req.Status == models.RequestCompleted {
			return appErrors.Clone(appErrors.ErrAlreadyCompleted, "")
		}
		if req.Status != models.RequestConfirmed {
			return appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("request is %s and cannot be completed", req.Status))
		}
		if req.InstructorID == nil || req.ConfirmedDate == nil {
			return appErrors.Clone(appErrors.ErrInvalidState, "confirmed request has no instructor booking")
		}

		instructor := *req.InstructorID
		date := *req.ConfirmedDate
		if err := s.tx.LockInstructors(ctx, tx, instructor); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to serialize instructor transition")
		}
		touchedInstructors = []string{instructor}

		req.Status = models.RequestCompleted
		if comments := strings.TrimSpace(input.Comments); comments != "" {
			req.Notes = appendNote(req.Notes, "instructor: "+comments)
		}
		if err := s.requests.Update(ctx, tx, req); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
		}
		if err := s.classes.MarkCompleted(ctx, tx, instructor, date); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete class entry")
		}

		updated = req
		events = append(events, s.newEvent(models.EventCourseCompleted, *req, nil))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, events, touchedInstructors)
	s.observe("complete")
	return updated, nil
}

// Archive hides a completed, invoiced request from default listings. It never
// reverses state.
func (s *SchedulingService) Archive(ctx context.Context, requestID string) (*models.CourseRequest, error) {
	var updated *models.CourseRequest
	err := s.tx.Run(ctx, func(tx sqlx.ExtContext) error {
		req, err := s.requests.FindByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			return mapLoadError(err, "course request not found")
		}
		if req.Status != models.RequestCompleted {
			return appErrors.Clone(appErrors.ErrInvalidState, "only completed requests can be archived")
		}
		if !req.Invoiced {
			return appErrors.Clone(appErrors.ErrInvalidState, "request has not been invoiced yet")
		}
		if req.Archived {
			updated = req
			return nil
		}
		req.Archived = true
		if err := s.requests.Update(ctx, tx, req); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive request")
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.observe("archive")
	return updated, nil
}

// Get returns a single request.
func (s *SchedulingService) Get(ctx context.Context, requestID string) (*models.CourseRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, mapLoadError(err, "course request not found")
	}
	return req, nil
}

// List returns a filtered page of requests.
func (s *SchedulingService) List(ctx context.Context, filter models.CourseRequestFilter) ([]models.CourseRequest, *models.Pagination, error) {
	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return requests, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

func (s *SchedulingService) pastDueCutoff() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *SchedulingService) newEvent(eventType models.EventType, req models.CourseRequest, decorate func(*models.EventPayload)) models.Event {
	payload := models.EventPayload{Request: req}
	if decorate != nil {
		decorate(&payload)
	}
	return models.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		RequestID:  req.ID,
		OccurredAt: s.now().UTC(),
		Payload:    payload,
	}
}

func (s *SchedulingService) afterCommit(ctx context.Context, events []models.Event, instructorIDs []string) {
	if s.cache != nil && len(instructorIDs) > 0 {
		s.cache.Invalidate(ctx, instructorIDs...)
	}
	if s.events != nil && len(events) > 0 {
		s.events.Publish(events...)
	}
}

func (s *SchedulingService) observe(operation string) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(operation)
	}
}

func classEntryFor(req *models.CourseRequest) *models.ClassEntry {
	return &models.ClassEntry{
		CourseRequestID: req.ID,
		InstructorID:    *req.InstructorID,
		OrganizationID:  req.OrganizationID,
		CourseTypeID:    req.CourseTypeID,
		Date:            *req.ConfirmedDate,
		StartTime:       *req.ConfirmedStart,
		EndTime:         *req.ConfirmedEnd,
		Location:        req.Location,
		MaxStudents:     req.StudentCount,
		Status:          models.ClassScheduled,
	}
}

func conflictError(conflict *models.CourseRequest) error {
	return appErrors.Clone(appErrors.ErrInstructorConflict,
		fmt.Sprintf("instructor already booked by request %s from %s to %s",
			conflict.ID, *conflict.ConfirmedStart, *conflict.ConfirmedEnd))
}

func mapLoadError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
}

func appendNote(notes, line string) string {
	if strings.TrimSpace(notes) == "" {
		return line
	}
	return notes + "\n" + line
}

// isUniqueViolation matches Postgres unique_violation (23505) so constraint
// backstops surface as domain conflicts instead of internal errors.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key value")
}
