// Package scheduler implements the DockerMonitor described in §4.2: a
// reconcile pass over in-flight Runners followed by a dispatch pass that
// promotes the oldest queued media to RUNNING, bounded by the reserved
// container name prefix. Grounded on the cron-driven DBScheduler in
// crawler/internal/job/scheduler.go, generalized from a calendar-cron
// dispatcher to the fixed-interval monitor cadence this spec requires
// (§11: robfig/cron/v3 dropped, its in-memory job-tracking-table idiom
// kept).
package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"time"

	"github.com/mbari-org/dettrackd/internal/circuitbreaker"
	"github.com/mbari-org/dettrackd/internal/containerrt"
	"github.com/mbari-org/dettrackd/internal/domain"
	"github.com/mbari-org/dettrackd/internal/logger"
	"github.com/mbari-org/dettrackd/internal/metrics"
	"github.com/mbari-org/dettrackd/internal/runner"
)

// Store is the subset of internal/store.Store the Scheduler needs.
type Store interface {
	OldestQueuedMedia(ctx context.Context) (domain.Media, bool, error)
	JobByID(ctx context.Context, id int64) (domain.Job, []domain.Media, error)
	PromoteToRunning(ctx context.Context, mediaID int64) error
	MarkSuccess(ctx context.Context, mediaID int64, metadata []byte) error
	MarkFailed(ctx context.Context, mediaID int64) error
	RunningMedia(ctx context.Context) ([]domain.Media, error)
	ForceFailAll(ctx context.Context, ids []int64) error
}

// ContainerRuntime is the subset of internal/containerrt.Runtime the
// Scheduler needs, defined consumer-side so tests can supply a fake rather
// than requiring a live Docker daemon. It is a superset of
// internal/runner.ContainerRuntime so a Monitor's rt can be handed
// straight to runner.New.
type ContainerRuntime interface {
	Start(ctx context.Context, spec containerrt.StartSpec) (string, error)
	Inspect(ctx context.Context, id string) (containerrt.Status, error)
	StopAndRemove(ctx context.Context, nameOrID string) error
	ListByPrefix(ctx context.Context, prefix string) ([]string, error)
	ListContainersByPrefix(ctx context.Context, prefix string) ([]string, error)
	HasVolume(ctx context.Context, name string) (bool, error)
}

// Gateway is the subset of internal/objectstore.Gateway the Scheduler
// needs to upload a finished job's result archive.
type Gateway interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// Notifier is the subset of internal/notifier.Notifier the Scheduler
// needs, defined consumer-side so tests can supply a fake webhook sink.
type Notifier interface {
	Notify(ctx context.Context, metadata map[string]any, archive []byte) error
}

// Config parameterizes one Monitor instance.
type Config struct {
	MaxConcurrent int
	Engine        string
	TrackConfig   string
	RootBucket    string
	TrackPrefix   string
	BaseDir       string
	Env           []string
	GPU           bool
	ProductionMode bool
	ScratchVolume  string
}

// inflight tracks one Runner the Scheduler is currently supervising.
type inflight struct {
	mediaID int64
	jobID   int64
	run     *runner.Runner
}

// Monitor is the DockerMonitor: it owns the in-memory Runner table and
// performs one reconcile+dispatch poll per Check call.
type Monitor struct {
	store    Store
	rt       ContainerRuntime
	gateway  Gateway
	notify   Notifier
	cfg      Config
	log      logger.Interface

	mu      sync.Mutex
	running map[int64]*inflight // keyed by media id

	// rtBreaker guards the dispatch pass's container-list call: a Docker
	// daemon stuck hanging or erroring repeatedly should not make every
	// subsequent poll pay that cost until the daemon recovers.
	rtBreaker *circuitbreaker.Breaker
}

// New constructs a Monitor. Call StartupReconcile once at startup before the
// first Check, per §4.6.
func New(store Store, rt ContainerRuntime, gateway Gateway, notify Notifier, cfg Config, log logger.Interface) *Monitor {
	return &Monitor{
		store:     store,
		rt:        rt,
		gateway:   gateway,
		notify:    notify,
		cfg:       cfg,
		log:       log.WithComponent("scheduler"),
		running:   map[int64]*inflight{},
		rtBreaker: circuitbreaker.New(5, 30*time.Second),
	}
}

// StartupReconcile performs §4.6: force-fail any media left RUNNING from a
// prior incarnation, then stop and remove any orphaned containers bearing
// the reserved prefix.
func (m *Monitor) StartupReconcile(ctx context.Context) error {
	running, err := m.store.RunningMedia(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: startup reconcile: load running media: %w", err)
	}
	if len(running) > 0 {
		ids := make([]int64, len(running))
		for i, med := range running {
			ids[i] = med.ID
		}
		if err := m.store.ForceFailAll(ctx, ids); err != nil {
			return fmt.Errorf("scheduler: startup reconcile: force-fail: %w", err)
		}
		m.log.Info("startup reconcile: failed orphaned media", "count", len(ids))
	}

	names, err := m.rt.ListContainersByPrefix(ctx, runner.ReservedPrefix)
	if err != nil {
		return fmt.Errorf("scheduler: startup reconcile: list containers: %w", err)
	}
	for _, name := range names {
		if err := m.rt.StopAndRemove(ctx, name); err != nil {
			m.log.Warn("startup reconcile: failed to remove container", "name", name, "error", err)
		}
	}
	return nil
}

// Check runs one reconcile pass followed by one dispatch pass, per §4.2.
func (m *Monitor) Check(ctx context.Context) error {
	if err := m.reconcile(ctx); err != nil {
		m.log.Error("reconcile pass failed", "error", err)
	}
	if err := m.dispatch(ctx); err != nil {
		m.log.Error("dispatch pass failed", "error", err)
	}
	return nil
}

func (m *Monitor) reconcile(ctx context.Context) error {
	m.mu.Lock()
	snapshot := make([]*inflight, 0, len(m.running))
	for _, r := range m.running {
		snapshot = append(snapshot, r)
	}
	m.mu.Unlock()

	for _, r := range snapshot {
		status, err := r.run.Status(ctx)
		if err != nil {
			m.log.Error("reconcile: inspect failed", "job_id", r.jobID, "error", err)
			continue
		}
		if status == containerrt.StatusRunning {
			continue
		}

		result, err := r.run.Collect()
		if err != nil {
			m.log.Error("reconcile: collect failed", "job_id", r.jobID, "error", err)
			continue
		}

		job, _, err := m.store.JobByID(ctx, r.jobID)
		if err != nil {
			m.log.Error("reconcile: job lookup failed", "job_id", r.jobID, "error", err)
			continue
		}

		if result.Success {
			m.finishSuccess(ctx, r, result, job)
		} else {
			m.finishFailed(ctx, r, job)
		}

		if err := r.run.Cleanup(ctx); err != nil {
			m.log.Warn("reconcile: cleanup failed", "job_id", r.jobID, "error", err)
		}

		m.mu.Lock()
		delete(m.running, r.mediaID)
		m.mu.Unlock()
	}
	return nil
}

func (m *Monitor) finishSuccess(ctx context.Context, r *inflight, result runner.Result, job domain.Job) {
	resultMeta := runner.ResultMetadata(r.run.OutputPrefix(), result)
	mergedBlob, err := domain.MergeResult(job.Metadata, resultMeta)
	if err != nil {
		m.log.Error("finishSuccess: merge metadata failed", "job_id", r.jobID, "error", err)
		mergedBlob = job.Metadata
	}

	key := r.run.OutputKey(result.ArchivePath)
	if err := m.gateway.Upload(ctx, key, bytes.NewReader(result.Archive), int64(len(result.Archive)), "application/gzip"); err != nil {
		m.log.Warn("finishSuccess: upload failed", "job_id", r.jobID, "error", err)
	}

	// Metadata is written before the terminal transition commits (§5).
	if err := m.store.MarkSuccess(ctx, r.mediaID, mergedBlob); err != nil {
		m.log.Error("finishSuccess: mark success failed", "job_id", r.jobID, "error", err)
		return
	}

	metadata, _ := domain.DecodeMetadata(mergedBlob)
	if err := m.notify.Notify(ctx, metadata, result.Archive); err != nil {
		m.log.Warn("finishSuccess: notify failed", "job_id", r.jobID, "error", err)
	}
	metrics.JobsSucceeded.Inc()
}

func (m *Monitor) finishFailed(ctx context.Context, r *inflight, job domain.Job) {
	if err := m.store.MarkFailed(ctx, r.mediaID); err != nil {
		m.log.Error("finishFailed: mark failed failed", "job_id", r.jobID, "error", err)
		return
	}
	metadata, _ := domain.DecodeMetadata(job.Metadata)
	if err := m.notify.Notify(ctx, metadata, nil); err != nil {
		m.log.Warn("finishFailed: notify failed", "job_id", r.jobID, "error", err)
	}
	metrics.JobsFailed.Inc()
}

func (m *Monitor) dispatch(ctx context.Context) error {
	media, ok, err := m.store.OldestQueuedMedia(ctx)
	if err != nil {
		return fmt.Errorf("dispatch: load queued media: %w", err)
	}
	if !ok {
		return nil
	}

	var live []string
	err = m.rtBreaker.Execute(ctx, func(ctx context.Context) error {
		ids, listErr := m.rt.ListByPrefix(ctx, runner.ReservedPrefix)
		live = ids
		return listErr
	})
	if err != nil {
		return fmt.Errorf("dispatch: list live containers: %w", err)
	}
	metrics.RunningContainers.Set(float64(len(live)))
	if len(live) >= m.cfg.MaxConcurrent {
		return nil // back-pressure, §4.2
	}

	if err := m.store.PromoteToRunning(ctx, media.ID); err != nil {
		return fmt.Errorf("dispatch: promote media %d: %w", media.ID, err)
	}

	job, _, err := m.store.JobByID(ctx, media.JobID)
	if err != nil {
		return fmt.Errorf("dispatch: load job %d: %w", media.JobID, err)
	}

	r := runner.New(runner.Spec{
		JobID:          job.ID,
		MediaID:        media.ID,
		VideoURL:       media.Name,
		ModelURI:       job.Model,
		TrackConfig:    m.cfg.TrackConfig,
		Args:           job.Args,
		Engine:         m.cfg.Engine,
		GPU:            m.cfg.GPU,
		ProductionMode: m.cfg.ProductionMode,
		ScratchVolume:  m.cfg.ScratchVolume,
		Env:            m.cfg.Env,
		BaseDir:        m.cfg.BaseDir,
		TrackPrefix:    m.cfg.TrackPrefix,
		RootBucket:     m.cfg.RootBucket,
	}, m.rt, m.log)

	if err := r.Start(ctx); err != nil {
		m.log.Error("dispatch: runner start failed", "job_id", job.ID, "error", err)
		_ = m.store.MarkFailed(ctx, media.ID)
		return nil
	}

	m.mu.Lock()
	m.running[media.ID] = &inflight{mediaID: media.ID, jobID: job.ID, run: r}
	m.mu.Unlock()
	metrics.JobsDispatched.Inc()
	return nil
}
