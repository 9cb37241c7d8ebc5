package scheduler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/mbari-org/dettrackd/internal/domain"
	"github.com/mbari-org/dettrackd/internal/runner"
	"github.com/mbari-org/dettrackd/internal/scheduler"
	"github.com/mbari-org/dettrackd/internal/scheduler/mocks"
)

// TestStartupReconcileWithMockRuntime exercises StartupReconcile against a
// mockgen-generated ContainerRuntime double instead of the hand-written
// fakeRuntime, the same mockgen idiom the teacher's storage tests use for
// their own collaborators.
func TestStartupReconcileWithMockRuntime(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := mocks.NewMockContainerRuntime(ctrl)

	fs := &fakeStore{running: []domain.Media{{ID: 5, JobID: 1}}}
	orphan := "dettrackd-run-20240101T000000Z"

	rt.EXPECT().
		ListContainersByPrefix(gomock.Any(), runner.ReservedPrefix).
		Return([]string{orphan}, nil)
	rt.EXPECT().
		StopAndRemove(gomock.Any(), orphan).
		Return(nil)

	m := scheduler.New(fs, rt, &fakeGateway{}, &fakeNotifier{}, scheduler.Config{BaseDir: t.TempDir()}, testLogger(t))

	if err := m.StartupReconcile(context.Background()); err != nil {
		t.Fatalf("StartupReconcile: %v", err)
	}
	if got := fs.forceFailed; len(got) != 1 || got[0] != 5 {
		t.Fatalf("forceFailed = %v, want [5]", got)
	}
}

// TestDispatchMarksMediaFailedWhenMockRuntimeStartErrors drives one dispatch
// pass through a mocked ContainerRuntime whose Start call fails, proving
// the scheduler's consumer-side interfaces are satisfied by generated
// mockgen doubles as well as the package's hand-written fakes.
func TestDispatchMarksMediaFailedWhenMockRuntimeStartErrors(t *testing.T) {
	videoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("video-bytes"))
	}))
	defer videoSrv.Close()

	ctrl := gomock.NewController(t)
	rt := mocks.NewMockContainerRuntime(ctrl)

	fs := &fakeStore{
		queued: []domain.Media{{ID: 1, JobID: 10, Name: videoSrv.URL + "/clip.mp4"}},
		jobs:   map[int64]domain.Job{10: {ID: 10, Name: "quiet-searching-clip", Model: "s3://bucket/models/yolo.pt"}},
	}

	rt.EXPECT().ListByPrefix(gomock.Any(), runner.ReservedPrefix).Return(nil, nil)
	rt.EXPECT().Start(gomock.Any(), gomock.Any()).Return("", errors.New("daemon unavailable"))

	cfg := scheduler.Config{MaxConcurrent: 2, Engine: "tracker:latest", BaseDir: t.TempDir()}
	m := scheduler.New(fs, rt, &fakeGateway{}, &fakeNotifier{}, cfg, testLogger(t))

	if err := m.Check(context.Background()); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got := fs.promoted; len(got) != 1 || got[0] != 1 {
		t.Fatalf("promoted = %v, want [1]", got)
	}
	if got := fs.failed; len(got) != 1 || got[0] != 1 {
		t.Fatalf("failed = %v, want [1] (runner start failure marks media failed)", got)
	}
}
