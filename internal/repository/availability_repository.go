package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courseops/scheduling-api/internal/models"
)

// AvailabilityRepository persists the per-instructor, per-day availability
// ledger. Outside the instructor opt-in, entries only change inside a course
// request transition.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Upsert marks the instructor's day with the given status regardless of prior
// value. Idempotent; used for opt-in and for restoration after cancel or
// reschedule.
func (r *AvailabilityRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time, status models.AvailabilityStatus) error {
	const query = `INSERT INTO availability_entries (id, instructor_id, date, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (instructor_id, date) DO UPDATE SET status = EXCLUDED.status`
	if _, err := r.exec(exec).ExecContext(ctx, query, uuid.NewString(), instructorID, date, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert availability entry: %w", err)
	}
	return nil
}

// Delete consumes the instructor's day. Deleting an absent entry is a no-op.
func (r *AvailabilityRepository) Delete(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time) error {
	const query = `DELETE FROM availability_entries WHERE instructor_id = $1 AND date = $2`
	if _, err := r.exec(exec).ExecContext(ctx, query, instructorID, date); err != nil {
		return fmt.Errorf("delete availability entry: %w", err)
	}
	return nil
}

// Find returns the entry for the exact (instructor, date) key.
func (r *AvailabilityRepository) Find(ctx context.Context, instructorID string, date time.Time) (*models.AvailabilityEntry, error) {
	const query = `SELECT id, instructor_id, date, status, created_at
		FROM availability_entries WHERE instructor_id = $1 AND date = $2`
	var entry models.AvailabilityEntry
	if err := r.db.GetContext(ctx, &entry, query, instructorID, date); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByInstructor returns the instructor's entries ordered by date.
func (r *AvailabilityRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.AvailabilityEntry, error) {
	const query = `SELECT id, instructor_id, date, status, created_at
		FROM availability_entries WHERE instructor_id = $1 ORDER BY date ASC`
	var entries []models.AvailabilityEntry
	if err := r.db.SelectContext(ctx, &entries, query, instructorID); err != nil {
		return nil, fmt.Errorf("list availability entries: %w", err)
	}
	return entries, nil
}
