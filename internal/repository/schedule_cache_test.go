package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/courseops/scheduling-api/pkg/errors"
)

func TestScheduleCacheDisabledClient(t *testing.T) {
	cache := NewScheduleCache(nil, time.Minute, nil)

	_, err := cache.Get(context.Background(), "inst-1")
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	assert.NoError(t, cache.Set(context.Background(), "inst-1", nil))
	cache.Invalidate(context.Background(), "inst-1")
}
