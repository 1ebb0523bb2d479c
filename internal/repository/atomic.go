package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Atomic wraps each state transition in a single database transaction so that
// the course request, the availability ledger and the class projection change
// together or not at all.
type Atomic struct {
	db *sqlx.DB
}

// NewAtomic constructs the transaction runner.
func NewAtomic(db *sqlx.DB) *Atomic {
	return &Atomic{db: db}
}

// Run executes fn inside a transaction, rolling back on any error.
func (a *Atomic) Run(ctx context.Context, fn func(tx sqlx.ExtContext) error) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	committed = true
	return nil
}

// LockInstructors serializes transitions touching the given instructors for
// the remainder of the current transaction. Locks are taken in sorted order so
// reschedules touching the same pair cannot deadlock; Postgres releases them
// at commit or rollback.
func (a *Atomic) LockInstructors(ctx context.Context, exec sqlx.ExtContext, instructorIDs ...string) error {
	ids := make([]string, 0, len(instructorIDs))
	seen := make(map[string]struct{}, len(instructorIDs))
	for _, id := range instructorIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	const query = `SELECT pg_advisory_xact_lock(hashtext($1))`
	for _, id := range ids {
		if _, err := exec.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("lock instructor %s: %w", id, err)
		}
	}
	return nil
}
