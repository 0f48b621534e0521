package retrylimit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestAdaptiveLimiterClampsToBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 2, 8, 1, 0.5)

	for i := 0; i < 10; i++ {
		lim.RateLimited()
	}
	assert.Equal(t, float64(2), lim.CurrentLimit())
}

func TestWithRetryMaxStopsOnNonRetriable(t *testing.T) {
	lim := NewAdaptiveLimiter(rate.Limit(100), 1, 100, 1, 0.5)
	fatal := errors.New("forbidden")

	calls := 0
	err := WithRetryMax(context.Background(), func() error {
		calls++
		return fatal
	}, lim, 5, func(error) bool { return false })

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestWithRetryMaxRetriesTransientErrors(t *testing.T) {
	lim := NewAdaptiveLimiter(rate.Limit(1000), 1, 1000, 1, 0.9)
	transient := errors.New("rate limited")

	calls := 0
	err := WithRetryMax(context.Background(), func() error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	}, lim, 5, func(error) bool { return true })

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryMaxExhaustsAttempts(t *testing.T) {
	lim := NewAdaptiveLimiter(rate.Limit(1000), 1, 1000, 1, 0.9)
	transient := errors.New("rate limited")

	err := WithRetryMax(context.Background(), func() error {
		return transient
	}, lim, 2, func(error) bool { return true })

	require.ErrorIs(t, err, ErrRetriesExhausted)
	require.ErrorIs(t, err, transient)
}
