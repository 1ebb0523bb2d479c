package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courseops/scheduling-api/internal/models"
)

const courseRequestColumns = `id, organization_id, course_type_id, instructor_id, requested_date, location,
       confirmed_date, confirmed_start, confirmed_end, student_count, notes, status, archived, invoiced,
       created_at, updated_at`

// CourseRequestRepository persists course requests.
type CourseRequestRepository struct {
	db *sqlx.DB
}

// NewCourseRequestRepository constructs the repository.
func NewCourseRequestRepository(db *sqlx.DB) *CourseRequestRepository {
	return &CourseRequestRepository{db: db}
}

func (r *CourseRequestRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a new request in pending state.
func (r *CourseRequestRepository) Create(ctx context.Context, req *models.CourseRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	const query = `INSERT INTO course_requests
		(id, organization_id, course_type_id, instructor_id, requested_date, location,
		 confirmed_date, confirmed_start, confirmed_end, student_count, notes, status, archived, invoiced,
		 created_at, updated_at)
		VALUES (:id, :organization_id, :course_type_id, :instructor_id, :requested_date, :location,
		 :confirmed_date, :confirmed_start, :confirmed_end, :student_count, :notes, :status, :archived, :invoiced,
		 :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create course request: %w", err)
	}
	return nil
}

// FindByID loads a request outside any transaction.
func (r *CourseRequestRepository) FindByID(ctx context.Context, id string) (*models.CourseRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_requests WHERE id = $1`, courseRequestColumns)
	var req models.CourseRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDForUpdate loads a request with a row lock inside the caller's
// transaction so concurrent transitions on the same request serialize.
func (r *CourseRequestRepository) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.CourseRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_requests WHERE id = $1 FOR UPDATE`, courseRequestColumns)
	var req models.CourseRequest
	if err := sqlx.GetContext(ctx, r.exec(exec), &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// Update persists mutable request fields.
func (r *CourseRequestRepository) Update(ctx context.Context, exec sqlx.ExtContext, req *models.CourseRequest) error {
	req.UpdatedAt = time.Now().UTC()
	const query = `UPDATE course_requests SET
		instructor_id = :instructor_id,
		confirmed_date = :confirmed_date,
		confirmed_start = :confirmed_start,
		confirmed_end = :confirmed_end,
		student_count = :student_count,
		notes = :notes,
		status = :status,
		archived = :archived,
		invoiced = :invoiced,
		updated_at = :updated_at
		WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, req); err != nil {
		return fmt.Errorf("update course request: %w", err)
	}
	return nil
}

// ExistsActive checks whether a pending or confirmed request already occupies
// the organization+location+date slot.
func (r *CourseRequestRepository) ExistsActive(ctx context.Context, organizationID, location string, date time.Time) (bool, error) {
	const query = `SELECT 1 FROM course_requests
		WHERE organization_id = $1 AND location = $2 AND requested_date = $3
		AND status IN ('pending', 'confirmed') LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, organizationID, location, date); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("check active course request: %w", err)
	}
	return true, nil
}

// ListConfirmedByInstructorDate returns the confirmed requests occupying the
// instructor's day, excluding the request being modified.
func (r *CourseRequestRepository) ListConfirmedByInstructorDate(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time, excludeRequestID string) ([]models.CourseRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_requests
		WHERE instructor_id = $1 AND confirmed_date = $2 AND status = 'confirmed' AND id <> $3
		ORDER BY confirmed_start ASC`, courseRequestColumns)
	var requests []models.CourseRequest
	if err := sqlx.SelectContext(ctx, r.exec(exec), &requests, query, instructorID, date, excludeRequestID); err != nil {
		return nil, fmt.Errorf("list confirmed requests: %w", err)
	}
	return requests, nil
}

// HasConfirmedOnDate reports whether the instructor has any confirmed request
// on the date. Used by the availability deletion guard.
func (r *CourseRequestRepository) HasConfirmedOnDate(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time) (bool, error) {
	const query = `SELECT 1 FROM course_requests
		WHERE instructor_id = $1 AND confirmed_date = $2 AND status = 'confirmed' LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.exec(exec), &exists, query, instructorID, date); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("check confirmed requests on date: %w", err)
	}
	return true, nil
}

// List returns a page of requests matching the filter plus the total count.
func (r *CourseRequestRepository) List(ctx context.Context, filter models.CourseRequestFilter) ([]models.CourseRequest, int, error) {
	conditions := []string{"1 = 1"}
	args := []interface{}{}

	if filter.OrganizationID != "" {
		args = append(args, filter.OrganizationID)
		conditions = append(conditions, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if filter.InstructorID != "" {
		args = append(args, filter.InstructorID)
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if !filter.IncludeArchived {
		conditions = append(conditions, "archived = FALSE")
	}
	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM course_requests WHERE %s`, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count course requests: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	args = append(args, pageSize, (page-1)*pageSize)
	listQuery := fmt.Sprintf(`SELECT %s FROM course_requests WHERE %s
		ORDER BY requested_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		courseRequestColumns, where, len(args)-1, len(args))

	var requests []models.CourseRequest
	if err := r.db.SelectContext(ctx, &requests, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list course requests: %w", err)
	}
	return requests, total, nil
}
