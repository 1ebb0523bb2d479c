package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/courseops/scheduling-api/internal/models"
	appErrors "github.com/courseops/scheduling-api/pkg/errors"
)

type availabilityStore interface {
	availabilityLedger
	Find(ctx context.Context, instructorID string, date time.Time) (*models.AvailabilityEntry, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]models.AvailabilityEntry, error)
}

type classEntryStore interface {
	DeleteOrphaned(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time) error
	ListByInstructor(ctx context.Context, instructorID string) ([]models.ClassEntry, error)
}

type confirmedGuard interface {
	HasConfirmedOnDate(ctx context.Context, exec sqlx.ExtContext, instructorID string, date time.Time) (bool, error)
}

type instructorReader interface {
	GetInstructor(ctx context.Context, id string) (*models.Instructor, error)
}

type scheduleCache interface {
	Get(ctx context.Context, instructorID string) ([]models.ClassEntry, error)
	Set(ctx context.Context, instructorID string, entries []models.ClassEntry) error
	Invalidate(ctx context.Context, instructorIDs ...string)
}

// AvailabilityService handles the instructor-facing availability paths: the
// opt-in write, the guarded removal, and schedule reads. Everything else that
// touches the ledger goes through SchedulingService transitions.
type AvailabilityService struct {
	availability availabilityStore
	classes      classEntryStore
	requests     confirmedGuard
	instructors  instructorReader
	tx           transitionRunner
	cache        scheduleCache
	logger       *zap.Logger
}

// NewAvailabilityService creates the service.
func NewAvailabilityService(
	availability availabilityStore,
	classes classEntryStore,
	requests confirmedGuard,
	instructors instructorReader,
	tx transitionRunner,
	cache scheduleCache,
	logger *zap.Logger,
) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		availability: availability,
		classes:      classes,
		requests:     requests,
		instructors:  instructors,
		tx:           tx,
		cache:        cache,
		logger:       logger,
	}
}

// MarkAvailable opens the instructor's day for work. Idempotent.
func (s *AvailabilityService) MarkAvailable(ctx context.Context, instructorID, rawDate string) (*models.AvailabilityEntry, error) {
	date, err := parseDate(rawDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	if s.instructors != nil {
		instructor, err := s.instructors.GetInstructor(ctx, instructorID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
		}
		if !instructor.Active {
			return nil, appErrors.Clone(appErrors.ErrValidation, "instructor is inactive")
		}
	}

	if err := s.availability.Upsert(ctx, nil, instructorID, date, models.AvailabilityAvailable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark availability")
	}
	entry, err := s.availability.Find(ctx, instructorID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability entry")
	}
	return entry, nil
}

// List returns the instructor's availability ledger ordered by date.
func (s *AvailabilityService) List(ctx context.Context, instructorID string) ([]models.AvailabilityEntry, error) {
	entries, err := s.availability.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability")
	}
	return entries, nil
}

// Remove deletes the instructor's availability for a day, refusing when a
// confirmed request occupies it. This is the only external write path into
// the ledger, and it re-validates against confirmed bookings so a confirmed
// course is never orphaned.
func (s *AvailabilityService) Remove(ctx context.Context, instructorID, rawDate string) error {
	date, err := parseDate(rawDate)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}

	err = s.tx.Run(ctx, func(tx sqlx.ExtContext) error {
		if err := s.tx.LockInstructors(ctx, tx, instructorID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to serialize instructor transition")
		}
		occupied, err := s.requests.HasConfirmedOnDate(ctx, tx, instructorID, date)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check confirmed bookings")
		}
		if occupied {
			return appErrors.Clone(appErrors.ErrConfirmedCourse,
				fmt.Sprintf("a confirmed course occupies %s; cancel or reschedule it first", rawDate))
		}
		if err := s.availability.Delete(ctx, tx, instructorID, date); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability")
		}
		if err := s.classes.DeleteOrphaned(ctx, tx, instructorID, date); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clean up class entries")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, instructorID)
	}
	return nil
}

// Schedule returns the instructor's materialized class entries, served from
// cache when warm.
func (s *AvailabilityService) Schedule(ctx context.Context, instructorID string) ([]models.ClassEntry, error) {
	if s.cache != nil {
		if entries, err := s.cache.Get(ctx, instructorID); err == nil {
			return entries, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("schedule cache read failed", zap.String("instructor_id", instructorID), zap.Error(err))
		}
	}

	entries, err := s.classes.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, instructorID, entries); err != nil {
			s.logger.Warn("schedule cache write failed", zap.String("instructor_id", instructorID), zap.Error(err))
		}
	}
	return entries, nil
}
