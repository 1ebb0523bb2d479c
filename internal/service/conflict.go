package service

import (
	"fmt"
	"time"

	"github.com/courseops/scheduling-api/internal/models"
)

// Time windows are zero-padded "HH:MM" strings, so lexical comparison is
// order-correct and no clock arithmetic is needed.

// Overlaps reports whether the half-open windows [s1,e1) and [s2,e2)
// intersect. Back-to-back windows (e1 == s2) do not conflict.
func Overlaps(s1, e1, s2, e2 string) bool {
	return s1 < e2 && s2 < e1
}

// FindConflict returns the first confirmed request whose window overlaps
// [start,end), or nil when the slot is free. Callers exclude the request
// being modified before calling.
func FindConflict(start, end string, confirmed []models.CourseRequest) *models.CourseRequest {
	for i := range confirmed {
		other := &confirmed[i]
		if other.ConfirmedStart == nil || other.ConfirmedEnd == nil {
			continue
		}
		if Overlaps(start, end, *other.ConfirmedStart, *other.ConfirmedEnd) {
			return other
		}
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return d, nil
}

func validateWindow(start, end string) error {
	if _, err := time.Parse("15:04", start); err != nil {
		return fmt.Errorf("invalid start time %q", start)
	}
	if _, err := time.Parse("15:04", end); err != nil {
		return fmt.Errorf("invalid end time %q", end)
	}
	if start >= end {
		return fmt.Errorf("start time %s must be before end time %s", start, end)
	}
	return nil
}
