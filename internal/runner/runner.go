// Package runner implements Runner: the per-job lifecycle controller that
// owns a container's input/output directories, builds its command line,
// and parses its result archive, per §4.5.
package runner

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mbari-org/dettrackd/internal/containerrt"
	"github.com/mbari-org/dettrackd/internal/domain"
	"github.com/mbari-org/dettrackd/internal/logger"
)

// ReservedPrefix names every container dettrackd launches, making the
// container list itself the authoritative concurrency counter (§4.2, §9).
const ReservedPrefix = "dettrackd-run"

// ContainerRuntime is the subset of internal/containerrt.Runtime a Runner
// needs, defined consumer-side so tests can supply a fake instead of a
// live Docker daemon.
type ContainerRuntime interface {
	Start(ctx context.Context, spec containerrt.StartSpec) (string, error)
	Inspect(ctx context.Context, id string) (containerrt.Status, error)
	StopAndRemove(ctx context.Context, nameOrID string) error
	HasVolume(ctx context.Context, name string) (bool, error)
}

// Spec describes everything a Runner needs to launch and later reconcile
// one job.
type Spec struct {
	JobID       int64
	MediaID     int64
	VideoURL    string
	ModelURI    string
	TrackConfig string
	Args        string
	Engine      string
	GPU         bool
	ProductionMode bool
	ScratchVolume  string // named volume to prefer over host binds when present
	Env         []string
	BaseDir     string // parent of per-job input/output directories
	TrackPrefix string // object-store prefix for output, e.g. "tracks"
	RootBucket  string
}

// Runner owns one in-flight job's container and directories.
type Runner struct {
	spec       Spec
	rt         ContainerRuntime
	log        logger.Interface
	name       string
	inputDir   string
	outputDir  string
	startUTC   time.Time
	outputTS   string
	containerID string
}

// New creates a Runner, computing its output prefix timestamp at
// construction time per §4.5.
func New(spec Spec, rt ContainerRuntime, log logger.Interface) *Runner {
	ts := time.Now().UTC().Format("20060102T150405Z")
	return &Runner{
		spec:     spec,
		rt:       rt,
		log:      log.WithComponent("runner"),
		name:     fmt.Sprintf("%s-%s", ReservedPrefix, ts),
		inputDir: filepath.Join(spec.BaseDir, fmt.Sprintf("job-%d", spec.JobID), "input"),
		outputDir: filepath.Join(spec.BaseDir, fmt.Sprintf("job-%d", spec.JobID), "output"),
		outputTS: ts,
	}
}

// OutputPrefix builds "s3://{root-bucket}/{track-prefix}/{timestamp}" per
// §4.5.
func (r *Runner) OutputPrefix() string {
	return fmt.Sprintf("s3://%s/%s/%s", r.spec.RootBucket, r.spec.TrackPrefix, r.outputTS)
}

// OutputKey builds the bucket-relative object-store key ("{track-prefix}/
// {timestamp}/{basename}") for an artifact produced by this job, suitable
// for ObjectStoreGateway.Upload (which is already bucket-scoped).
func (r *Runner) OutputKey(localPath string) string {
	return fmt.Sprintf("%s/%s/%s", r.spec.TrackPrefix, r.outputTS, filepath.Base(localPath))
}

// Start creates the per-job directories (wiping any pre-existing
// contents), downloads the input video, launches the container, and
// records the start time.
func (r *Runner) Start(ctx context.Context) error {
	for _, dir := range []string{r.inputDir, r.outputDir} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("runner: clear %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("runner: mkdir %s: %w", dir, err)
		}
	}

	if err := r.downloadVideo(ctx); err != nil {
		return fmt.Errorf("runner: download video: %w", err)
	}

	cmd := r.buildCommand()
	binds := r.buildBinds(ctx)

	id, err := r.rt.Start(ctx, containerrt.StartSpec{
		Name:    r.name,
		Image:   r.spec.Engine,
		Cmd:     cmd,
		Env:     r.spec.Env,
		Binds:   binds,
		GPU:     r.spec.GPU,
		Network: "host",
	})
	if err != nil {
		return err
	}

	r.containerID = id
	r.startUTC = time.Now().UTC()
	r.log.Info("runner started", "job_id", r.spec.JobID, "container", r.name)
	return nil
}

// buildCommand constructs the fixed dettrack argv described in §4.5.
func (r *Runner) buildCommand() []string {
	args := r.spec.Args
	if args == "" {
		args = "--iou-thres 0.5 --conf-thres 0.01 --agnostic-nms --max-det 100"
	}
	cmd := []string{
		"dettrack",
		"--model-s3", r.spec.ModelURI,
		"--config-s3", r.spec.TrackConfig,
		"-i", containerInputDir,
		"-o", containerOutputDir,
	}
	if args != "" {
		cmd = append(cmd, "--args", args)
	}
	return cmd
}

const (
	containerInputDir  = "/input"
	containerOutputDir = "/output"
)

// buildBinds prefers the named scratch volume over host-path binds only
// when production mode is selected and the volume actually exists,
// confirmed via a live HasVolume check. A misconfigured or not-yet-created
// scratch volume name must fall back to the host-path bind rather than be
// handed to the container runtime as-is, per §4.5's nested-container
// accommodation.
func (r *Runner) buildBinds(ctx context.Context) []containerrt.Bind {
	if r.spec.ProductionMode && r.spec.ScratchVolume != "" {
		exists, err := r.rt.HasVolume(ctx, r.spec.ScratchVolume)
		if err != nil {
			r.log.Warn("buildBinds: volume check failed, falling back to host binds", "volume", r.spec.ScratchVolume, "error", err)
		}
		if exists {
			return []containerrt.Bind{
				{HostPath: r.spec.ScratchVolume, ContainerPath: containerInputDir},
				{HostPath: r.spec.ScratchVolume, ContainerPath: containerOutputDir},
			}
		}
	}
	return []containerrt.Bind{
		{HostPath: r.inputDir, ContainerPath: containerInputDir},
		{HostPath: r.outputDir, ContainerPath: containerOutputDir},
	}
}

func (r *Runner) downloadVideo(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.spec.VideoURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	dest := filepath.Join(r.inputDir, filepath.Base(r.spec.VideoURL))
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	return err
}

// Status reports the container's current run state.
func (r *Runner) Status(ctx context.Context) (containerrt.Status, error) {
	return r.rt.Inspect(ctx, r.containerID)
}

// Result is what the Scheduler's reconcile pass needs after a Runner exits.
type Result struct {
	Success               bool
	Archive                []byte
	ArchivePath            string
	NumTracks              int
	ProcessingTimeSeconds  int64
}

// Collect scans the output directory for result archives (§4.5 "Result
// discovery"/"Track counting") after the container has exited.
func (r *Runner) Collect() (Result, error) {
	matches, err := filepath.Glob(filepath.Join(r.outputDir, "*.tar.gz"))
	if err != nil {
		return Result{}, fmt.Errorf("runner: glob output: %w", err)
	}
	if len(matches) == 0 {
		return Result{Success: false, ProcessingTimeSeconds: r.elapsedSeconds()}, nil
	}

	tracks := map[string]struct{}{}
	for _, archivePath := range matches {
		ids, err := countTrackUUIDs(archivePath)
		if err != nil {
			r.log.Warn("runner: failed to parse result archive", "path", archivePath, "error", err)
			continue
		}
		for _, id := range ids {
			tracks[id] = struct{}{}
		}
	}

	archiveBytes, err := os.ReadFile(matches[0])
	if err != nil {
		return Result{}, fmt.Errorf("runner: read archive: %w", err)
	}

	return Result{
		Success:               true,
		Archive:                archiveBytes,
		ArchivePath:            matches[0],
		NumTracks:              len(tracks),
		ProcessingTimeSeconds:  r.elapsedSeconds(),
	}, nil
}

func (r *Runner) elapsedSeconds() int64 {
	if r.startUTC.IsZero() {
		return 0
	}
	return int64(time.Since(r.startUTC).Seconds())
}

// countTrackUUIDs parses every non-"processing" .json member of a tar.gz
// archive for the shape `[_, [[_, {"track_uuid": ..., ...}], ...]]` and
// returns the distinct track_uuid strings found, per §4.5.
func countTrackUUIDs(archivePath string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	var ids []string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if !strings.HasSuffix(hdr.Name, ".json") || strings.Contains(hdr.Name, "processing") {
			continue
		}

		raw, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		found, err := parseTrackUUIDs(raw)
		if err != nil {
			continue
		}
		ids = append(ids, found...)
	}
	return ids, nil
}

// parseTrackUUIDs expects the shape [_, [[_, {"track_uuid": "..."}], ...]].
func parseTrackUUIDs(raw []byte) ([]string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil || len(outer) < 2 {
		return nil, fmt.Errorf("unexpected top-level shape")
	}

	var inner []json.RawMessage
	if err := json.Unmarshal(outer[1], &inner); err != nil {
		return nil, fmt.Errorf("unexpected inner shape")
	}

	var ids []string
	for _, entryRaw := range inner {
		var entry []json.RawMessage
		if err := json.Unmarshal(entryRaw, &entry); err != nil || len(entry) < 2 {
			continue
		}
		var obj struct {
			TrackUUID string `json:"track_uuid"`
		}
		if err := json.Unmarshal(entry[1], &obj); err != nil || obj.TrackUUID == "" {
			continue
		}
		ids = append(ids, obj.TrackUUID)
	}
	return ids, nil
}

// Cleanup stops and removes the container (if still present) and deletes
// the per-job directories, per §4.5.
func (r *Runner) Cleanup(ctx context.Context) error {
	if r.containerID != "" {
		if err := r.rt.StopAndRemove(ctx, r.containerID); err != nil {
			r.log.Warn("runner: cleanup container failed", "error", err)
		}
	}
	if err := os.RemoveAll(filepath.Dir(r.inputDir)); err != nil {
		return fmt.Errorf("runner: cleanup dirs: %w", err)
	}
	return nil
}

// ResultMetadata builds the domain.ResultMetadata to merge into the media
// row on SUCCESS.
func ResultMetadata(prefix string, res Result) domain.ResultMetadata {
	return domain.ResultMetadata{
		ResultURI:             prefix + "/" + filepath.Base(res.ArchivePath),
		NumTracks:             res.NumTracks,
		ProcessingTimeSeconds: res.ProcessingTimeSeconds,
	}
}
