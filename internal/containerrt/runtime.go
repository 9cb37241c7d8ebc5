// Package containerrt implements ContainerRuntime: start/stop/inspect/wait
// on containers via the Docker Engine API. Grounded on
// github.com/docker/docker/client, an indirect dependency of the teacher's
// go.mod (pulled in transitively via testcontainers-go) promoted here to a
// direct one since dettrackd talks to the engine itself rather than only
// spinning up ephemeral test containers.
package containerrt

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
)

// Runtime wraps a Docker Engine API client.
type Runtime struct {
	cli *client.Client
}

// New connects to the Docker daemon using the standard DOCKER_HOST /
// environment-based configuration.
func New() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("containerrt: new client: %w", err)
	}
	return &Runtime{cli: cli}, nil
}

// VerifyReachable pings the daemon, used as a fatal startup probe (§7).
func (r *Runtime) VerifyReachable(ctx context.Context) error {
	if _, err := r.cli.Ping(ctx); err != nil {
		return fmt.Errorf("containerrt: ping: %w", err)
	}
	return nil
}

// Bind describes one host<->container directory bind mount.
type Bind struct {
	HostPath      string
	ContainerPath string
	ReadOnly      bool
}

// StartSpec is the full launch contract for one Runner-owned container.
type StartSpec struct {
	Name    string
	Image   string
	Cmd     []string
	Env     []string
	Binds   []Bind
	GPU     bool
	Network string // "host" when set, matching the original's host-network default
}

// Start pulls Image if necessary and launches a detached container
// matching spec, returning its id.
func (r *Runtime) Start(ctx context.Context, spec StartSpec) (string, error) {
	if err := r.ensureImage(ctx, spec.Image); err != nil {
		return "", err
	}

	mounts := make([]mount.Mount, 0, len(spec.Binds))
	for _, b := range spec.Binds {
		mounts = append(mounts, mount.Mount{
			Type:     mount.TypeBind,
			Source:   b.HostPath,
			Target:   b.ContainerPath,
			ReadOnly: b.ReadOnly,
		})
	}

	hostCfg := &container.HostConfig{Mounts: mounts}
	if spec.Network == "host" {
		hostCfg.NetworkMode = "host"
	}
	if spec.GPU {
		hostCfg.Resources.DeviceRequests = []container.DeviceRequest{{
			Count:        -1,
			Capabilities: [][]string{{"gpu"}},
		}}
	}

	created, err := r.cli.ContainerCreate(ctx, &container.Config{
		Image: spec.Image,
		Cmd:   spec.Cmd,
		Env:   spec.Env,
	}, hostCfg, nil, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("containerrt: create %s: %w", spec.Name, err)
	}

	if err := r.cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("containerrt: start %s: %w", spec.Name, err)
	}
	return created.ID, nil
}

func (r *Runtime) ensureImage(ctx context.Context, image string) error {
	_, _, err := r.cli.ImageInspectWithRaw(ctx, image)
	if err == nil {
		return nil
	}
	rc, err := r.cli.ImagePull(ctx, image, imagePullOptions())
	if err != nil {
		return fmt.Errorf("containerrt: pull %s: %w", image, err)
	}
	defer rc.Close()
	_, _ = io.Copy(io.Discard, rc)
	return nil
}

// Status reports a container's coarse run state.
type Status string

const (
	StatusRunning Status = "running"
	StatusExited  Status = "exited"
	StatusMissing Status = "missing"
)

// Inspect reports the current status of a container by id.
func (r *Runtime) Inspect(ctx context.Context, id string) (Status, error) {
	info, err := r.cli.ContainerInspect(ctx, id)
	if err != nil {
		if client.IsErrNotFound(err) {
			return StatusMissing, nil
		}
		return "", fmt.Errorf("containerrt: inspect %s: %w", id, err)
	}
	if info.State != nil && info.State.Running {
		return StatusRunning, nil
	}
	return StatusExited, nil
}

// ListByPrefix returns the ids of running containers whose name begins
// with prefix — the authoritative concurrency counter
// per §4.2.
func (r *Runtime) ListByPrefix(ctx context.Context, prefix string) ([]string, error) {
	containers, err := r.cli.ContainerList(ctx, container.ListOptions{
		All:     false,
		Filters: filters.NewArgs(),
	})
	if err != nil {
		return nil, fmt.Errorf("containerrt: list: %w", err)
	}

	var ids []string
	for _, c := range containers {
		for _, name := range c.Names {
			if strings.HasPrefix(strings.TrimPrefix(name, "/"), prefix) {
				ids = append(ids, c.ID)
				break
			}
		}
	}
	return ids, nil
}

// StopAndRemove stops (if running) and removes a container by name,
// ignoring not-found per §4.6's reconciliation contract.
func (r *Runtime) StopAndRemove(ctx context.Context, nameOrID string) error {
	timeout := 10
	if err := r.cli.ContainerStop(ctx, nameOrID, container.StopOptions{Timeout: &timeout}); err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("containerrt: stop %s: %w", nameOrID, err)
	}
	if err := r.cli.ContainerRemove(ctx, nameOrID, container.RemoveOptions{Force: true}); err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("containerrt: remove %s: %w", nameOrID, err)
	}
	return nil
}

// ListContainersByPrefix returns the name (without the leading "/") of
// every container, running or stopped, whose name begins with prefix, used
// by startup reconciliation which needs names (for StopAndRemove) rather
// than ids.
func (r *Runtime) ListContainersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	containers, err := r.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("containerrt: list all: %w", err)
	}
	var names []string
	for _, c := range containers {
		for _, name := range c.Names {
			trimmed := strings.TrimPrefix(name, "/")
			if strings.HasPrefix(trimmed, prefix) {
				names = append(names, trimmed)
				break
			}
		}
	}
	return names, nil
}

// HasVolume reports whether a named volume exists, used by the Runner to
// decide between a host-path bind and a named scratch volume in nested
// deployments (§4.5).
func (r *Runtime) HasVolume(ctx context.Context, name string) (bool, error) {
	_, err := r.cli.VolumeInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("containerrt: volume inspect %s: %w", name, err)
	}
	return true, nil
}

// Wait blocks until the container exits or ctx is cancelled, matching the
// one-hour container wait timeout noted in §5 (enforced by the caller via
// ctx).
func (r *Runtime) Wait(ctx context.Context, id string) (int64, error) {
	statusCh, errCh := r.cli.ContainerWait(ctx, id, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return 0, fmt.Errorf("containerrt: wait %s: %w", id, err)
	case st := <-statusCh:
		return st.StatusCode, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// DefaultWaitTimeout is the container wait timeout from §5.
const DefaultWaitTimeout = time.Hour
