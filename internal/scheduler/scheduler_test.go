package scheduler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbari-org/dettrackd/internal/containerrt"
	"github.com/mbari-org/dettrackd/internal/domain"
	"github.com/mbari-org/dettrackd/internal/logger"
	"github.com/mbari-org/dettrackd/internal/scheduler"
	"github.com/mbari-org/dettrackd/internal/store"
)

type fakeStore struct {
	mu sync.Mutex

	queued      []domain.Media
	jobs        map[int64]domain.Job
	running     []domain.Media
	promoted    []int64
	succeeded   []int64
	failed      []int64
	forceFailed []int64
}

func (f *fakeStore) OldestQueuedMedia(ctx context.Context) (domain.Media, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queued) == 0 {
		return domain.Media{}, false, nil
	}
	m := f.queued[0]
	f.queued = f.queued[1:]
	return m, true, nil
}

func (f *fakeStore) JobByID(ctx context.Context, id int64) (domain.Job, []domain.Media, error) {
	j, ok := f.jobs[id]
	if !ok {
		return domain.Job{}, nil, store.ErrNotFound
	}
	return j, nil, nil
}

func (f *fakeStore) PromoteToRunning(ctx context.Context, mediaID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.promoted = append(f.promoted, mediaID)
	return nil
}

func (f *fakeStore) MarkSuccess(ctx context.Context, mediaID int64, metadata []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.succeeded = append(f.succeeded, mediaID)
	return nil
}

func (f *fakeStore) MarkFailed(ctx context.Context, mediaID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, mediaID)
	return nil
}

func (f *fakeStore) RunningMedia(ctx context.Context) ([]domain.Media, error) {
	return f.running, nil
}

func (f *fakeStore) ForceFailAll(ctx context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forceFailed = append(f.forceFailed, ids...)
	return nil
}

type fakeRuntime struct {
	mu sync.Mutex

	live           []string
	names          []string
	status         containerrt.Status
	startErr       error
	startedSpecs   []containerrt.StartSpec
	stoppedOrRemoved []string
}

func (f *fakeRuntime) Start(ctx context.Context, spec containerrt.StartSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return "", f.startErr
	}
	f.startedSpecs = append(f.startedSpecs, spec)
	return "container-id", nil
}

func (f *fakeRuntime) Inspect(ctx context.Context, id string) (containerrt.Status, error) {
	return f.status, nil
}

func (f *fakeRuntime) StopAndRemove(ctx context.Context, nameOrID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stoppedOrRemoved = append(f.stoppedOrRemoved, nameOrID)
	return nil
}

func (f *fakeRuntime) ListByPrefix(ctx context.Context, prefix string) ([]string, error) {
	return f.live, nil
}

func (f *fakeRuntime) ListContainersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	return f.names, nil
}

func (f *fakeRuntime) HasVolume(ctx context.Context, name string) (bool, error) {
	return false, nil
}

type fakeGateway struct{ uploaded []string }

func (f *fakeGateway) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	f.uploaded = append(f.uploaded, key)
	_, err := io.Copy(io.Discard, r)
	return err
}

type fakeNotifier struct{ notified int }

func (f *fakeNotifier) Notify(ctx context.Context, metadata map[string]any, archive []byte) error {
	f.notified++
	return nil
}

func testLogger(t *testing.T) logger.Interface {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Encoding: "console"})
	require.NoError(t, err)
	return log
}

func TestDispatchPromotesQueuedMediaWithinCapacity(t *testing.T) {
	videoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("video-bytes"))
	}))
	defer videoSrv.Close()

	fs := &fakeStore{
		queued: []domain.Media{{ID: 1, JobID: 10, Name: videoSrv.URL + "/clip.mp4"}},
		jobs:   map[int64]domain.Job{10: {ID: 10, Name: "quiet-searching-clip", Model: "s3://bucket/models/yolo.pt"}},
	}
	rt := &fakeRuntime{live: nil, status: containerrt.StatusRunning}
	gw := &fakeGateway{}
	notify := &fakeNotifier{}

	cfg := scheduler.Config{MaxConcurrent: 2, Engine: "tracker:latest", BaseDir: t.TempDir()}
	m := scheduler.New(fs, rt, gw, notify, cfg, testLogger(t))

	require.NoError(t, m.Check(context.Background()))
	assert.Equal(t, []int64{1}, fs.promoted)
	assert.Len(t, rt.startedSpecs, 1)
}

func TestDispatchBlocksAtCapacity(t *testing.T) {
	fs := &fakeStore{
		queued: []domain.Media{{ID: 1, JobID: 10, Name: "http://example.com/clip.mp4"}},
		jobs:   map[int64]domain.Job{10: {ID: 10, Name: "quiet-searching-clip"}},
	}
	rt := &fakeRuntime{live: []string{"c1", "c2"}}
	cfg := scheduler.Config{MaxConcurrent: 2, BaseDir: t.TempDir()}
	m := scheduler.New(fs, rt, &fakeGateway{}, &fakeNotifier{}, cfg, testLogger(t))

	require.NoError(t, m.Check(context.Background()))
	assert.Empty(t, fs.promoted, "back-pressure should skip promotion when at capacity")
	assert.Empty(t, rt.startedSpecs)
}

func TestStartupReconcileForceFailsAndRemovesOrphans(t *testing.T) {
	fs := &fakeStore{running: []domain.Media{{ID: 5, JobID: 1}}}
	rt := &fakeRuntime{names: []string{"dettrackd-run-20240101T000000Z"}}
	m := scheduler.New(fs, rt, &fakeGateway{}, &fakeNotifier{}, scheduler.Config{BaseDir: t.TempDir()}, testLogger(t))

	require.NoError(t, m.StartupReconcile(context.Background()))
	assert.Equal(t, []int64{5}, fs.forceFailed)
	assert.Equal(t, []string{"dettrackd-run-20240101T000000Z"}, rt.stoppedOrRemoved)
}

func TestReconcileMarksExitedContainerFailedWhenNoArchive(t *testing.T) {
	videoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("video-bytes"))
	}))
	defer videoSrv.Close()

	fs := &fakeStore{
		queued: []domain.Media{{ID: 2, JobID: 20, Name: videoSrv.URL + "/clip.mp4"}},
		jobs:   map[int64]domain.Job{20: {ID: 20, Name: "amber-diving-clip"}},
	}
	rt := &fakeRuntime{live: nil, status: containerrt.StatusRunning}
	notify := &fakeNotifier{}

	cfg := scheduler.Config{MaxConcurrent: 1, BaseDir: t.TempDir()}
	m := scheduler.New(fs, rt, &fakeGateway{}, notify, cfg, testLogger(t))

	require.NoError(t, m.Check(context.Background())) // dispatches media 2

	rt.status = containerrt.StatusExited
	require.NoError(t, m.Check(context.Background())) // reconciles it as failed (no archive)

	assert.Equal(t, []int64{2}, fs.failed)
	assert.Equal(t, 1, notify.notified)
}
