package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(Config{FailureThreshold: 2, SuccessThreshold: 1, Timeout: time.Minute, HalfOpenMaxRequests: 1})

	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateClosed, cb.GetState())
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.False(t, called)
}

func TestSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(Config{FailureThreshold: 2, SuccessThreshold: 1, Timeout: time.Minute, HalfOpenMaxRequests: 1})

	_ = cb.Execute(fail)
	_ = cb.Execute(succeed)
	_ = cb.Execute(fail)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestHalfOpenRecovery(t *testing.T) {
	now := time.Date(2026, 10, 12, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(Config{FailureThreshold: 1, SuccessThreshold: 2, Timeout: 10 * time.Second, HalfOpenMaxRequests: 2}).
		WithClock(func() time.Time { return now })

	_ = cb.Execute(fail)
	assert.Equal(t, StateOpen, cb.GetState())

	now = now.Add(11 * time.Second)
	assert.NoError(t, cb.Execute(succeed))
	assert.Equal(t, StateHalfOpen, cb.GetState())
	assert.NoError(t, cb.Execute(succeed))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2026, 10, 12, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(Config{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Second, HalfOpenMaxRequests: 1}).
		WithClock(func() time.Time { return now })

	_ = cb.Execute(fail)
	now = now.Add(2 * time.Second)
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateOpen, cb.GetState())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, "closed", cb.GetState().String())
}
