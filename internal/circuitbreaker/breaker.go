// Package circuitbreaker implements a small closed/open/half-open breaker,
// grounded on infrastructure/circuitbreaker from the teacher pack's shared
// module. dettrackd wraps the Scheduler's container-list call with it so a
// Docker daemon stuck hanging or erroring does not make every dispatch
// pass pay its full timeout.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is one of Closed, Open, HalfOpen.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

// ErrOpen is returned by Execute when the breaker is open.
var ErrOpen = errors.New("circuitbreaker: open")

// Breaker trips to Open after FailureThreshold consecutive failures and
// resets to HalfOpen after ResetTimeout, closing again on the next
// success.
type Breaker struct {
	FailureThreshold int
	ResetTimeout     time.Duration

	mu          sync.Mutex
	state       State
	failures    int
	openedAt    time.Time
}

// New constructs a Breaker with the given thresholds.
func New(failureThreshold int, resetTimeout time.Duration) *Breaker {
	return &Breaker{FailureThreshold: failureThreshold, ResetTimeout: resetTimeout}
}

// Execute runs fn if the breaker permits it, updating state on the
// outcome.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.allow() {
		return ErrOpen
	}

	err := fn(ctx)
	b.record(err)
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if time.Since(b.openedAt) >= b.ResetTimeout {
			b.state = HalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.state = Closed
		b.failures = 0
		return
	}

	b.failures++
	if b.state == HalfOpen || b.failures >= b.FailureThreshold {
		b.state = Open
		b.openedAt = time.Now()
	}
}

// Current reports the breaker's current state.
func (b *Breaker) Current() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
