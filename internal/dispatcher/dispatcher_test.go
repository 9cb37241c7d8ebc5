package dispatcher_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbari-org/dettrackd/internal/dispatcher"
	"github.com/mbari-org/dettrackd/internal/logger"
)

type countingMonitor struct {
	calls atomic.Int64
	err   error
}

func (m *countingMonitor) Check(ctx context.Context) error {
	m.calls.Add(1)
	return m.err
}

func testLogger(t *testing.T) logger.Interface {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Encoding: "console"})
	require.NoError(t, err)
	return log
}

func TestStartRunsCheckImmediatelyAndOnEachTick(t *testing.T) {
	m := &countingMonitor{}
	d := dispatcher.New(testLogger(t))
	d.Register("test", m, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d.Start(ctx)
	time.Sleep(70 * time.Millisecond)
	d.Stop()

	assert.GreaterOrEqual(t, m.calls.Load(), int64(2))
}

func TestMonitorsRunIndependently(t *testing.T) {
	fast := &countingMonitor{}
	slow := &countingMonitor{}
	d := dispatcher.New(testLogger(t))
	d.Register("fast", fast, 10*time.Millisecond)
	d.Register("slow", slow, 200*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d.Start(ctx)
	time.Sleep(90 * time.Millisecond)
	d.Stop()

	assert.Greater(t, fast.calls.Load(), slow.calls.Load())
}

func TestStopWaitsForInFlightCheck(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	started := make(chan struct{})

	blocking := &blockingMonitor{started: started, release: wg.Wait}
	d := dispatcher.New(testLogger(t))
	d.Register("blocking", blocking, time.Hour)

	d.Start(context.Background())
	<-started

	done := make(chan struct{})
	go func() {
		d.Stop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Stop returned before in-flight Check finished")
	case <-time.After(30 * time.Millisecond):
	}

	wg.Done()
	<-done
}

type blockingMonitor struct {
	started chan struct{}
	release func()
}

func (m *blockingMonitor) Check(ctx context.Context) error {
	close(m.started)
	m.release()
	return nil
}
