package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/courseops/scheduling-api/internal/models"
	appErrors "github.com/courseops/scheduling-api/pkg/errors"
)

type availabilityKey struct {
	instructor string
	date       string
}

type mockRequestRepo struct {
	requests  map[string]models.CourseRequest
	confirmed []models.CourseRequest
	existsErr error
	createErr error
	updateErr error
}

func (m *mockRequestRepo) store(req models.CourseRequest) {
	if m.requests == nil {
		m.requests = make(map[string]models.CourseRequest)
	}
	m.requests[req.ID] = req
}

func (m *mockRequestRepo) Create(ctx context.Context, req *models.CourseRequest) error {
	if m.createErr != nil {
		return m.createErr
	}
	if req.ID == "" {
		req.ID = "generated"
	}
	req.Status = models.RequestPending
	m.store(*req)
	return nil
}

func (m *mockRequestRepo) FindByID(ctx context.Context, id string) (*models.CourseRequest, error) {
	if req, ok := m.requests[id]; ok {
		return &req, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRequestRepo) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.CourseRequest, error) {
	return m.FindByID(ctx, id)
}

func (m *mockRequestRepo) Update(ctx context.Context, exec sqlx.ExtContext, req *models.CourseRequest) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.store(*req)
	return nil
}

func (m *mockRequestRepo) ExistsActive(ctx context.Context, organizationID, location string, date time.Time) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, req := range m.requests {
		if req.OrganizationID == organizationID && req.Location == location && req.RequestedDate.Equal(date) && req.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRequestRepo) ListConfirmedByInstructorDate(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time, excludeRequestID string) ([]models.CourseRequest, error) {
	var out []models.CourseRequest
	for _, req := range m.confirmed {
		if req.ID == excludeRequestID {
			continue
		}
		if req.InstructorID != nil && *req.InstructorID == instructorID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) List(ctx context.Context, filter models.CourseRequestFilter) ([]models.CourseRequest, int, error) {
	var out []models.CourseRequest
	for _, req := range m.requests {
		out = append(out, req)
	}
	return out, len(out), nil
}

type mockLedger struct {
	entries   map[availabilityKey]models.AvailabilityStatus
	upsertErr error
	deleteErr error
}

func newMockLedger() *mockLedger {
	return &mockLedger{entries: make(map[availabilityKey]models.AvailabilityStatus)}
}

func (m *mockLedger) key(instructorID string, date time.Time) availabilityKey {
	return availabilityKey{instructor: instructorID, date: date.Format("2006-01-02")}
}

func (m *mockLedger) Upsert(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time, status models.AvailabilityStatus) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.entries[m.key(instructorID, date)] = status
	return nil
}

func (m *mockLedger) Delete(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.entries, m.key(instructorID, date))
	return nil
}

func (m *mockLedger) has(instructorID string, date time.Time) bool {
	_, ok := m.entries[m.key(instructorID, date)]
	return ok
}

type mockProjection struct {
	entries   map[availabilityKey]models.ClassEntry
	insertErr error
}

func newMockProjection() *mockProjection {
	return &mockProjection{entries: make(map[availabilityKey]models.ClassEntry)}
}

func (m *mockProjection) key(instructorID string, date time.Time) availabilityKey {
	return availabilityKey{instructor: instructorID, date: date.Format("2006-01-02")}
}

func (m *mockProjection) Insert(ctx context.Context, exec sqlx.ExtContext, entry *models.ClassEntry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.entries[m.key(entry.InstructorID, entry.Date)] = *entry
	return nil
}

func (m *mockProjection) DeleteByInstructorDate(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time) error {
	delete(m.entries, m.key(instructorID, date))
	return nil
}

func (m *mockProjection) MarkCompleted(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time) error {
	entry, ok := m.entries[m.key(instructorID, date)]
	if !ok {
		return sql.ErrNoRows
	}
	entry.Status = models.ClassCompleted
	m.entries[m.key(instructorID, date)] = entry
	return nil
}

type stubTxRunner struct {
	locked [][]string
	runErr error
}

func (s *stubTxRunner) Run(ctx context.Context, fn func(tx sqlx.ExtContext) error) error {
	if s.runErr != nil {
		return s.runErr
	}
	return fn(nil)
}

func (s *stubTxRunner) LockInstructors(ctx context.Context, exec sqlx.ExtContext, instructorIDs ...string) error {
	s.locked = append(s.locked, instructorIDs)
	return nil
}

type capturedEvents struct {
	events []models.Event
}

func (c *capturedEvents) Publish(events ...models.Event) {
	c.events = append(c.events, events...)
}

type capturedInvalidations struct {
	instructors []string
}

func (c *capturedInvalidations) Invalidate(ctx context.Context, instructorIDs ...string) {
	c.instructors = append(c.instructors, instructorIDs...)
}

type schedulingFixture struct {
	svc       *SchedulingService
	requests  *mockRequestRepo
	ledger    *mockLedger
	classes   *mockProjection
	tx        *stubTxRunner
	published *capturedEvents
	cache     *capturedInvalidations
}

func newSchedulingFixture() *schedulingFixture {
	f := &schedulingFixture{
		requests:  &mockRequestRepo{requests: make(map[string]models.CourseRequest)},
		ledger:    newMockLedger(),
		classes:   newMockProjection(),
		tx:        &stubTxRunner{},
		published: &capturedEvents{},
		cache:     &capturedInvalidations{},
	}
	f.svc = NewSchedulingService(f.requests, f.ledger, f.classes, f.tx, f.published, f.cache, nil, validator.New(), zap.NewNop())
	return f
}

func date(raw string) time.Time {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		panic(err)
	}
	return d
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func pendingRequest(id string, requested time.Time) models.CourseRequest {
	return models.CourseRequest{
		ID:             id,
		OrganizationID: "org-1",
		CourseTypeID:   "ct-1",
		RequestedDate:  requested,
		Location:       "Springfield",
		StudentCount:   8,
		Status:         models.RequestPending,
	}
}

func confirmedRequest(id, instructorID string, confirmed time.Time, start, end string) models.CourseRequest {
	req := pendingRequest(id, confirmed)
	req.Status = models.RequestConfirmed
	req.InstructorID = &instructorID
	req.ConfirmedDate = timePtr(confirmed)
	req.ConfirmedStart = strPtr(start)
	req.ConfirmedEnd = strPtr(end)
	return req
}

func assertErrCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, code, appErr.Code)
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	f := newSchedulingFixture()

	req, err := f.svc.Submit(context.Background(), SubmitRequestInput{
		OrganizationID: "org-1",
		CourseTypeID:   "ct-1",
		RequestedDate:  "2026-09-10",
		Location:       "Springfield",
		StudentCount:   8,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.NotEmpty(t, req.ID)
	assert.Nil(t, req.InstructorID)
	assert.Equal(t, date("2026-09-10"), req.RequestedDate)
}

func TestSubmitRejectsDuplicateActiveSlot(t *testing.T) {
	f := newSchedulingFixture()
	f.requests.store(pendingRequest("req-1", date("2026-09-10")))

	_, err := f.svc.Submit(context.Background(), SubmitRequestInput{
		OrganizationID: "org-1",
		CourseTypeID:   "ct-1",
		RequestedDate:  "2026-09-10",
		Location:       "Springfield",
		StudentCount:   5,
	})
	assertErrCode(t, err, appErrors.ErrDuplicateRequest.Code)
}

func TestSubmitAllowsSameSlotAfterTermination(t *testing.T) {
	f := newSchedulingFixture()
	cancelled := pendingRequest("req-1", date("2026-09-10"))
	cancelled.Status = models.RequestCancelled
	f.requests.store(cancelled)

	req, err := f.svc.Submit(context.Background(), SubmitRequestInput{
		OrganizationID: "org-1",
		CourseTypeID:   "ct-1",
		RequestedDate:  "2026-09-10",
		Location:       "Springfield",
		StudentCount:   5,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
}

func TestSubmitMapsUniqueViolationToDuplicate(t *testing.T) {
	f := newSchedulingFixture()
	f.requests.createErr = errors.New(`pq: duplicate key value violates unique constraint "uq_course_requests_active"`)

	_, err := f.svc.Submit(context.Background(), SubmitRequestInput{
		OrganizationID: "org-1",
		CourseTypeID:   "ct-1",
		RequestedDate:  "2026-09-10",
		Location:       "Springfield",
		StudentCount:   5,
	})
	assertErrCode(t, err, appErrors.ErrDuplicateRequest.Code)
}

func TestSubmitValidatesPayload(t *testing.T) {
	f := newSchedulingFixture()

	_, err := f.svc.Submit(context.Background(), SubmitRequestInput{OrganizationID: "org-1"})
	assertErrCode(t, err, appErrors.ErrValidation.Code)

	_, err = f.svc.Submit(context.Background(), SubmitRequestInput{
		OrganizationID: "org-1",
		CourseTypeID:   "ct-1",
		RequestedDate:  "10/09/2026",
		Location:       "Springfield",
		StudentCount:   5,
	})
	assertErrCode(t, err, appErrors.ErrValidation.Code)
}

func TestAssignConfirmsRequestAndConsumesAvailability(t *testing.T) {
	f := newSchedulingFixture()
	requested := date("2026-09-10")
	f.requests.store(pendingRequest("req-1", requested))
	require.NoError(t, f.ledger.Upsert(context.Background(), nil, "inst-1", requested, models.AvailabilityAvailable))

	req, err := f.svc.AssignInstructor(context.Background(), "req-1", AssignInstructorInput{
		InstructorID: "inst-1",
		StartTime:    "09:00",
		EndTime:      "11:00",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestConfirmed, req.Status)
	require.NotNil(t, req.InstructorID)
	assert.Equal(t, "inst-1", *req.InstructorID)
	assert.Equal(t, "09:00", *req.ConfirmedStart)

	assert.False(t, f.ledger.has("inst-1", requested), "availability should be consumed")
	entry, ok := f.classes.entries[f.classes.key("inst-1", requested)]
	require.True(t, ok, "class entry should be materialized")
	assert.Equal(t, "req-1", entry.CourseRequestID)
	assert.Equal(t, models.ClassScheduled, entry.Status)

	require.Len(t, f.published.events, 1)
	assert.Equal(t, models.EventCourseAssigned, f.published.events[0].Type)
	assert.Contains(t, f.cache.instructors, "inst-1")
	require.Len(t, f.tx.locked, 1)
	assert.Equal(t, []string{"inst-1"}, f.tx.locked[0])
}

func TestAssignRejectsOverlappingWindow(t *testing.T) {
	f := newSchedulingFixture()
	requested := date("2026-09-10")
	f.requests.store(pendingRequest("req-1", requested))
	f.requests.confirmed = []models.CourseRequest{
		confirmedRequest("req-other", "inst-1", requested, "10:00", "12:00"),
	}

	_, err := f.svc.AssignInstructor(context.Background(), "req-1", AssignInstructorInput{
		InstructorID: "inst-1",
		StartTime:    "09:00",
		EndTime:      "11:00",
	})
	assertErrCode(t, err, appErrors.ErrInstructorConflict.Code)
	assert.Empty(t, f.published.events)
	assert.Equal(t, models.RequestPending, f.requests.requests["req-1"].Status)
}

func TestAssignAllowsBackToBackWindows(t *testing.T) {
	f := newSchedulingFixture()
	requested := date("2026-09-10")
	f.requests.store(pendingRequest("req-1", requested))
	f.requests.confirmed = []models.CourseRequest{
		confirmedRequest("req-other", "inst-1", requested, "11:00", "13:00"),
	}

	req, err := f.svc.AssignInstructor(context.Background(), "req-1", AssignInstructorInput{
		InstructorID: "inst-1",
		StartTime:    "09:00",
		EndTime:      "11:00",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestConfirmed, req.Status)
}

func TestAssignRejectsTerminalRequest(t *testing.T) {
	f := newSchedulingFixture()
	done := pendingRequest("req-1", date("2026-09-10"))
	done.Status = models.RequestCompleted
	f.requests.store(done)

	_, err := f.svc.AssignInstructor(context.Background(), "req-1", AssignInstructorInput{
		InstructorID: "inst-1",
		StartTime:    "09:00",
		EndTime:      "11:00",
	})
	assertErrCode(t, err, appErrors.ErrInvalidState.Code)
}

func TestAssignUnknownRequestReturnsNotFound(t *testing.T) {
	f := newSchedulingFixture()

	_, err := f.svc.AssignInstructor(context.Background(), "missing", AssignInstructorInput{
		InstructorID: "inst-1",
		StartTime:    "09:00",
		EndTime:      "11:00",
	})
	assertErrCode(t, err, appErrors.ErrNotFound.Code)
}

func TestAssignReassignmentReleasesPreviousInstructor(t *testing.T) {
	f := newSchedulingFixture()
	confirmed := date("2026-09-10")
	f.requests.store(confirmedRequest("req-1", "inst-old", confirmed, "09:00", "11:00"))
	f.classes.entries[f.classes.key("inst-old", confirmed)] = models.ClassEntry{CourseRequestID: "req-1", InstructorID: "inst-old", Date: confirmed}

	req, err := f.svc.AssignInstructor(context.Background(), "req-1", AssignInstructorInput{
		InstructorID: "inst-new",
		StartTime:    "13:00",
		EndTime:      "15:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "inst-new", *req.InstructorID)

	assert.True(t, f.ledger.has("inst-old", confirmed), "previous availability should be restored")
	_, oldEntry := f.classes.entries[f.classes.key("inst-old", confirmed)]
	assert.False(t, oldEntry, "previous class entry should be removed")
	_, newEntry := f.classes.entries[f.classes.key("inst-new", confirmed)]
	assert.True(t, newEntry)

	require.Len(t, f.tx.locked, 1)
	assert.ElementsMatch(t, []string{"inst-new", "inst-old"}, f.tx.locked[0])
	assert.ElementsMatch(t, []string{"inst-new", "inst-old"}, f.cache.instructors)
}

func TestAssignFailureRollsBackWithoutEvents(t *testing.T) {
	f := newSchedulingFixture()
	f.requests.store(pendingRequest("req-1", date("2026-09-10")))
	f.classes.insertErr = errors.New("write failed")

	_, err := f.svc.AssignInstructor(context.Background(), "req-1", AssignInstructorInput{
		InstructorID: "inst-1",
		StartTime:    "09:00",
		EndTime:      "11:00",
	})
	require.Error(t, err)
	assert.Empty(t, f.published.events, "events must not be published on failed transitions")
	assert.Empty(t, f.cache.instructors)
}

func TestRescheduleMovesBookingAtomically(t *testing.T) {
	f := newSchedulingFixture()
	oldDate := date("2026-09-10")
	newDate := date("2026-09-17")
	f.requests.store(confirmedRequest("req-1", "inst-1", oldDate, "09:00", "11:00"))
	f.classes.entries[f.classes.key("inst-1", oldDate)] = models.ClassEntry{CourseRequestID: "req-1", InstructorID: "inst-1", Date: oldDate}
	require.NoError(t, f.ledger.Upsert(context.Background(), nil, "inst-1", newDate, models.AvailabilityAvailable))

	req, err := f.svc.Reschedule(context.Background(), "req-1", RescheduleInput{
		NewDate:  "2026-09-17",
		NewStart: "14:00",
		NewEnd:   "16:00",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestConfirmed, req.Status)
	assert.Equal(t, newDate, *req.ConfirmedDate)
	assert.Equal(t, "14:00", *req.ConfirmedStart)

	assert.True(t, f.ledger.has("inst-1", oldDate), "old availability should be restored")
	assert.False(t, f.ledger.has("inst-1", newDate), "new availability should be consumed")
	_, oldEntry := f.classes.entries[f.classes.key("inst-1", oldDate)]
	assert.False(t, oldEntry)
	_, newEntry := f.classes.entries[f.classes.key("inst-1", newDate)]
	assert.True(t, newEntry)

	require.Len(t, f.published.events, 1)
	event := f.published.events[0]
	assert.Equal(t, models.EventCourseRescheduled, event.Type)
	require.NotNil(t, event.Payload.PreviousDate)
	assert.Equal(t, oldDate, *event.Payload.PreviousDate)
}

func TestRescheduleToNewInstructor(t *testing.T) {
	f := newSchedulingFixture()
	oldDate := date("2026-09-10")
	f.requests.store(confirmedRequest("req-1", "inst-old", oldDate, "09:00", "11:00"))

	req, err := f.svc.Reschedule(context.Background(), "req-1", RescheduleInput{
		NewDate:         "2026-09-17",
		NewStart:        "09:00",
		NewEnd:          "11:00",
		NewInstructorID: "inst-new",
	})
	require.NoError(t, err)
	assert.Equal(t, "inst-new", *req.InstructorID)
	assert.Equal(t, date("2026-09-17"), *req.ConfirmedDate)
	require.Len(t, f.published.events, 1)
	require.NotNil(t, f.published.events[0].Payload.PreviousInstructor)
	assert.Equal(t, "inst-old", *f.published.events[0].Payload.PreviousInstructor)
}

func TestRescheduleRejectsNonConfirmed(t *testing.T) {
	f := newSchedulingFixture()
	f.requests.store(pendingRequest("req-1", date("2026-09-10")))

	_, err := f.svc.Reschedule(context.Background(), "req-1", RescheduleInput{
		NewDate:  "2026-09-17",
		NewStart: "09:00",
		NewEnd:   "11:00",
	})
	assertErrCode(t, err, appErrors.ErrInvalidState.Code)
}

func TestRescheduleRejectsConflictAtTarget(t *testing.T) {
	f := newSchedulingFixture()
	f.requests.store(confirmedRequest("req-1", "inst-1", date("2026-09-10"), "09:00", "11:00"))
	f.requests.confirmed = []models.CourseRequest{
		confirmedRequest("req-other", "inst-1", date("2026-09-17"), "09:30", "10:30"),
	}

	_, err := f.svc.Reschedule(context.Background(), "req-1", RescheduleInput{
		NewDate:  "2026-09-17",
		NewStart: "09:00",
		NewEnd:   "11:00",
	})
	assertErrCode(t, err, appErrors.ErrInstructorConflict.Code)
	assert.Empty(t, f.published.events)
}

func TestCancelPendingRequest(t *testing.T) {
	f := newSchedulingFixture()
	f.svc.now = func() time.Time { return date("2026-09-01") }
	f.requests.store(pendingRequest("req-1", date("2026-09-10")))

	req, err := f.svc.Cancel(context.Background(), "req-1", CancelInput{Reason: "client asked"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, req.Status)
	assert.Contains(t, req.Notes, "cancelled: client asked")
	require.Len(t, f.published.events, 1)
	assert.Equal(t, "client asked", f.published.events[0].Payload.Reason)
}

func TestCancelConfirmedRestoresAvailability(t *testing.T) {
	f := newSchedulingFixture()
	f.svc.now = func() time.Time { return date("2026-09-01") }
	confirmed := date("2026-09-10")
	f.requests.store(confirmedRequest("req-1", "inst-1", confirmed, "09:00", "11:00"))
	f.classes.entries[f.classes.key("inst-1", confirmed)] = models.ClassEntry{CourseRequestID: "req-1", InstructorID: "inst-1", Date: confirmed}

	req, err := f.svc.Cancel(context.Background(), "req-1", CancelInput{Reason: "weather"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, req.Status)
	assert.True(t, f.ledger.has("inst-1", confirmed), "availability should be restored")
	_, entry := f.classes.entries[f.classes.key("inst-1", confirmed)]
	assert.False(t, entry, "class entry should be removed")
	assert.Contains(t, f.cache.instructors, "inst-1")
}

func TestCancelElapsedRequestBecomesPastDue(t *testing.T) {
	f := newSchedulingFixture()
	f.svc.now = func() time.Time { return date("2026-09-11") }
	f.requests.store(pendingRequest("req-1", date("2026-09-10")))

	req, err := f.svc.Cancel(context.Background(), "req-1", CancelInput{Reason: "never confirmed"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPastDue, req.Status)
}

func TestCancelTodayIsCancelledNotPastDue(t *testing.T) {
	f := newSchedulingFixture()
	f.svc.now = func() time.Time { return date("2026-09-10").Add(15 * time.Hour) }
	f.requests.store(pendingRequest("req-1", date("2026-09-10")))

	req, err := f.svc.Cancel(context.Background(), "req-1", CancelInput{Reason: "same day"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, req.Status)
}

func TestCancelRequiresReason(t *testing.T) {
	f := newSchedulingFixture()
	f.requests.store(pendingRequest("req-1", date("2026-09-10")))

	_, err := f.svc.Cancel(context.Background(), "req-1", CancelInput{Reason: "   "})
	assertErrCode(t, err, appErrors.ErrValidation.Code)
}

func TestCancelTwiceFails(t *testing.T) {
	f := newSchedulingFixture()
	f.svc.now = func() time.Time { return date("2026-09-01") }
	f.requests.store(pendingRequest("req-1", date("2026-09-10")))

	_, err := f.svc.Cancel(context.Background(), "req-1", CancelInput{Reason: "first"})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), "req-1", CancelInput{Reason: "second"})
	assertErrCode(t, err, appErrors.ErrInvalidState.Code)
}

func TestCompleteConfirmedRequest(t *testing.T) {
	f := newSchedulingFixture()
	confirmed := date("2026-09-10")
	f.requests.store(confirmedRequest("req-1", "inst-1", confirmed, "09:00", "11:00"))
	f.classes.entries[f.classes.key("inst-1", confirmed)] = models.ClassEntry{CourseRequestID: "req-1", InstructorID: "inst-1", Date: confirmed, Status: models.ClassScheduled}

	req, err := f.svc.Complete(context.Background(), "req-1", CompleteInput{Comments: "went well"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, req.Status)
	assert.Contains(t, req.Notes, "instructor: went well")

	entry := f.classes.entries[f.classes.key("inst-1", confirmed)]
	assert.Equal(t, models.ClassCompleted, entry.Status)
	require.Len(t, f.published.events, 1)
	assert.Equal(t, models.EventCourseCompleted, f.published.events[0].Type)
}

func TestCompleteTwiceReportsAlreadyCompleted(t *testing.T) {
	f := newSchedulingFixture()
	done := confirmedRequest("req-1", "inst-1", date("2026-09-10"), "09:00", "11:00")
	done.Status = models.RequestCompleted
	f.requests.store(done)

	_, err := f.svc.Complete(context.Background(), "req-1", CompleteInput{})
	assertErrCode(t, err, appErrors.ErrAlreadyCompleted.Code)
}

func TestCompleteRejectsPending(t *testing.T) {
	f := newSchedulingFixture()
	f.requests.store(pendingRequest("req-1", date("2026-09-10")))

	_, err := f.svc.Complete(context.Background(), "req-1", CompleteInput{})
	assertErrCode(t, err, appErrors.ErrInvalidState.Code)
}

func TestArchiveRequiresCompletedAndInvoiced(t *testing.T) {
	f := newSchedulingFixture()
	f.requests.store(pendingRequest("req-1", date("2026-09-10")))

	_, err := f.svc.Archive(context.Background(), "req-1")
	assertErrCode(t, err, appErrors.ErrInvalidState.Code)

	done := confirmedRequest("req-2", "inst-1", date("2026-09-10"), "09:00", "11:00")
	done.Status = models.RequestCompleted
	f.requests.store(done)

	_, err = f.svc.Archive(context.Background(), "req-2")
	assertErrCode(t, err, appErrors.ErrInvalidState.Code)

	done.Invoiced = true
	f.requests.store(done)

	req, err := f.svc.Archive(context.Background(), "req-2")
	require.NoError(t, err)
	assert.True(t, req.Archived)

	// Idempotent.
	req, err = f.svc.Archive(context.Background(), "req-2")
	require.NoError(t, err)
	assert.True(t, req.Archived)
}

func TestGetAndList(t *testing.T) {
	f := newSchedulingFixture()
	f.requests.store(pendingRequest("req-1", date("2026-09-10")))

	req, err := f.svc.Get(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", req.ID)

	_, err = f.svc.Get(context.Background(), "missing")
	assertErrCode(t, err, appErrors.ErrNotFound.Code)

	list, pagination, err := f.svc.List(context.Background(), models.CourseRequestFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.NotNil(t, pagination)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
}
