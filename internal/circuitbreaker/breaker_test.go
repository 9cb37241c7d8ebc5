package circuitbreaker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbari-org/dettrackd/internal/circuitbreaker"
)

func TestBreakerStartsClosed(t *testing.T) {
	b := circuitbreaker.New(2, time.Minute)
	assert.Equal(t, circuitbreaker.Closed, b.Current())
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := circuitbreaker.New(2, time.Minute)
	failing := func(context.Context) error { return errors.New("boom") }

	require.Error(t, b.Execute(context.Background(), failing))
	assert.Equal(t, circuitbreaker.Closed, b.Current())

	require.Error(t, b.Execute(context.Background(), failing))
	assert.Equal(t, circuitbreaker.Open, b.Current())
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	b := circuitbreaker.New(1, time.Minute)
	failing := func(context.Context) error { return errors.New("boom") }

	require.Error(t, b.Execute(context.Background(), failing))
	assert.Equal(t, circuitbreaker.Open, b.Current())

	err := b.Execute(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestBreakerHalfOpensAfterResetTimeout(t *testing.T) {
	b := circuitbreaker.New(1, 10*time.Millisecond)
	require.Error(t, b.Execute(context.Background(), func(context.Context) error { return errors.New("boom") }))
	assert.Equal(t, circuitbreaker.Open, b.Current())

	time.Sleep(15 * time.Millisecond)

	err := b.Execute(context.Background(), func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, circuitbreaker.Closed, b.Current())
}

func TestBreakerReopensOnFailureDuringHalfOpen(t *testing.T) {
	b := circuitbreaker.New(1, 10*time.Millisecond)
	require.Error(t, b.Execute(context.Background(), func(context.Context) error { return errors.New("boom") }))
	time.Sleep(15 * time.Millisecond)

	err := b.Execute(context.Background(), func(context.Context) error { return errors.New("still down") })
	require.Error(t, err)
	assert.Equal(t, circuitbreaker.Open, b.Current())
}
