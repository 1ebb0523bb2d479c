package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courseops/scheduling-api/internal/models"
)

// ClassEntryRepository persists the materialized schedule projection.
type ClassEntryRepository struct {
	db *sqlx.DB
}

// NewClassEntryRepository constructs the repository.
func NewClassEntryRepository(db *sqlx.DB) *ClassEntryRepository {
	return &ClassEntryRepository{db: db}
}

func (r *ClassEntryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Insert materializes the class entry for a confirmed request.
func (r *ClassEntryRepository) Insert(ctx context.Context, exec sqlx.ExtContext, entry *models.ClassEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO class_entries
		(id, course_request_id, instructor_id, organization_id, course_type_id, date,
		 start_time, end_time, location, max_students, status, created_at)
		VALUES (:id, :course_request_id, :instructor_id, :organization_id, :course_type_id, :date,
		 :start_time, :end_time, :location, :max_students, :status, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, entry); err != nil {
		return fmt.Errorf("insert class entry: %w", err)
	}
	return nil
}

// DeleteByInstructorDate removes the class entry keyed by (instructor, date).
// A missing entry is a no-op: some cancel paths run before a class was ever
// materialized.
func (r *ClassEntryRepository) DeleteByInstructorDate(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time) error {
	const query = `DELETE FROM class_entries WHERE instructor_id = $1 AND date = $2`
	if _, err := r.exec(exec).ExecContext(ctx, query, instructorID, date); err != nil {
		return fmt.Errorf("delete class entry: %w", err)
	}
	return nil
}

// DeleteOrphaned removes scheduled entries on the instructor's day whose
// governing request is no longer confirmed.
func (r *ClassEntryRepository) DeleteOrphaned(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time) error {
	const query = `DELETE FROM class_entries ce
		WHERE ce.instructor_id = $1 AND ce.date = $2 AND ce.status = 'scheduled'
		AND NOT EXISTS (
			SELECT 1 FROM course_requests cr WHERE cr.id = ce.course_request_id AND cr.status = 'confirmed'
		)`
	if _, err := r.exec(exec).ExecContext(ctx, query, instructorID, date); err != nil {
		return fmt.Errorf("delete orphaned class entries: %w", err)
	}
	return nil
}

// MarkCompleted flips the class entry status in lockstep with request
// completion.
func (r *ClassEntryRepository) MarkCompleted(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time) error {
	const query = `UPDATE class_entries SET status = 'completed' WHERE instructor_id = $1 AND date = $2`
	if _, err := r.exec(exec).ExecContext(ctx, query, instructorID, date); err != nil {
		return fmt.Errorf("mark class entry completed: %w", err)
	}
	return nil
}

// ListByInstructor returns the instructor's schedule ordered by occurrence.
func (r *ClassEntryRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.ClassEntry, error) {
	const query = `SELECT id, course_request_id, instructor_id, organization_id, course_type_id, date,
		start_time, end_time, location, max_students, status, created_at
		FROM class_entries WHERE instructor_id = $1 ORDER BY date ASC, start_time ASC`
	var entries []models.ClassEntry
	if err := r.db.SelectContext(ctx, &entries, query, instructorID); err != nil {
		return nil, fmt.Errorf("list class entries: %w", err)
	}
	return entries, nil
}
