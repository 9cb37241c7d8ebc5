// Package dispatcher implements the Dispatcher described in §4.4: a driver
// loop that holds an ordered list of Monitors and runs each on its own
// periodic cadence, independently of the others. Grounded on the
// goroutine-per-loop lifecycle in crawler/internal/job/scheduler.go's
// DBScheduler.Start/Stop, generalized from cron-expression scheduling to
// fixed-interval monitor cadences.
package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/mbari-org/dettrackd/internal/logger"
)

// Monitor is one periodic task the Dispatcher drives.
type Monitor interface {
	Check(ctx context.Context) error
}

// entry pairs a Monitor with its configured cadence.
type entry struct {
	name     string
	monitor  Monitor
	interval time.Duration
}

// Dispatcher runs each registered Monitor's Check at its own cadence until
// Stop is called.
type Dispatcher struct {
	log     logger.Interface
	entries []entry

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New constructs an empty Dispatcher.
func New(log logger.Interface) *Dispatcher {
	return &Dispatcher{log: log.WithComponent("dispatcher")}
}

// Register adds a Monitor to the driver loop with its check-every cadence.
// Must be called before Start.
func (d *Dispatcher) Register(name string, m Monitor, interval time.Duration) {
	d.entries = append(d.entries, entry{name: name, monitor: m, interval: interval})
}

// Start launches one goroutine per registered Monitor. Each goroutine
// awaits Check, then sleeps interval before the next invocation; monitors
// progress independently, matching §4.4's "no monitor blocks another."
func (d *Dispatcher) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for _, e := range d.entries {
		e := e
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runLoop(runCtx, e)
		}()
	}
}

func (d *Dispatcher) runLoop(ctx context.Context, e entry) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		if err := e.monitor.Check(ctx); err != nil {
			d.log.Error("monitor check failed", "monitor", e.name, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop sets the stop signal. In-flight Check calls are allowed to finish
// (§4.4); Stop blocks until every monitor goroutine has exited its current
// iteration.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}
