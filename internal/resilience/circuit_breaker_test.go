// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ManuGH/eosgen/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClock struct {
	now time.Time
}

func (m *mockClock) Now() time.Time { return m.now }

var errDown = errors.New("connection refused")

func fail() error { return errDown }
func ok() error   { return nil }

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test_trip", 3, 30*time.Second, WithClock(clock))

	require.ErrorIs(t, cb.Execute(fail), errDown)
	require.ErrorIs(t, cb.Execute(fail), errDown)
	assert.Equal(t, StateClosed, cb.State())

	require.ErrorIs(t, cb.Execute(fail), errDown)
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BreakerState.WithLabelValues("test_trip", "open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BreakerTripsTotal.WithLabelValues("test_trip", "threshold_exceeded")))

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker("test_reset", 2, time.Minute)

	require.Error(t, cb.Execute(fail))
	require.NoError(t, cb.Execute(ok))
	require.Error(t, cb.Execute(fail))
	assert.Equal(t, StateClosed, cb.State(), "failures must be consecutive")
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test_probe", 1, 10*time.Second, WithClock(clock))

	require.Error(t, cb.Execute(fail))
	require.Equal(t, StateOpen, cb.State())

	clock.now = clock.now.Add(11 * time.Second)
	require.Error(t, cb.Execute(fail))
	assert.Equal(t, StateOpen, cb.State(), "failed probe reopens")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BreakerTripsTotal.WithLabelValues("test_probe", "half_open_failure")))

	clock.now = clock.now.Add(11 * time.Second)
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_SingleProbe(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test_single", 1, time.Second, WithClock(clock))
	require.Error(t, cb.Execute(fail))
	clock.now = clock.now.Add(2 * time.Second)

	inner := cb.Execute(func() error {
		assert.ErrorIs(t, cb.Execute(ok), ErrCircuitOpen, "second caller rejected while probing")
		return nil
	})
	require.NoError(t, inner)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_IgnoresCancelledCallers(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test_cancel", 2, time.Second, WithClock(clock))
	cancelled := func() error { return fmt.Errorf("get: %w", context.Canceled) }

	for i := 0; i < 5; i++ {
		require.ErrorIs(t, cb.Execute(cancelled), context.Canceled)
	}
	assert.Equal(t, StateClosed, cb.State())

	require.Error(t, cb.Execute(fail))
	require.Error(t, cb.Execute(fail))
	require.Equal(t, StateOpen, cb.State())

	// A cancelled probe leaves the breaker half-open for the next caller.
	clock.now = clock.now.Add(2 * time.Second)
	require.ErrorIs(t, cb.Execute(cancelled), context.Canceled)
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.State())
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker("test_defaults", 0, 0)
	assert.Equal(t, 3, cb.threshold)
	assert.Equal(t, 30*time.Second, cb.resetTimeout)
}
