// Package dispatcher wires the dispatcher daemon: startup reconciliation,
// the DockerMonitor and ModelSyncMonitor, and the Dispatcher driver loop
// (§4.2-§4.6). Grounded on the subcommand shape of
// crawler/cmd/scheduler/scheduler.go.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbari-org/dettrackd/internal/bootstrap"
	"github.com/mbari-org/dettrackd/internal/config"
	"github.com/mbari-org/dettrackd/internal/containerrt"
	internaldispatcher "github.com/mbari-org/dettrackd/internal/dispatcher"
	"github.com/mbari-org/dettrackd/internal/modelsync"
	"github.com/mbari-org/dettrackd/internal/notifier"
	"github.com/mbari-org/dettrackd/internal/scheduler"
)

// Command returns the "dispatcher" subcommand.
func Command(cfgFile *string, debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatcher",
		Short: "Run the container dispatcher and model-sync daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), *cfgFile, *debug)
		},
	}
}

func run(ctx context.Context, cfgFile string, debug bool) error {
	deps, err := bootstrap.New(ctx, bootstrap.Options{ConfigPath: cfgFile, RequireMonitors: true, Debug: debug})
	if err != nil {
		return fmt.Errorf("dispatcher: bootstrap: %w", err)
	}
	defer deps.Close()

	rt, err := containerrt.New()
	if err != nil {
		return fmt.Errorf("dispatcher: container runtime: %w", err)
	}
	if err := rt.VerifyReachable(ctx); err != nil {
		return fmt.Errorf("dispatcher: container runtime unreachable: %w", err)
	}

	cfg := deps.Config
	notify := notifier.New(cfg.NotifyURL, deps.Log)

	scratchVolume := ""
	productionMode := cfg.Mode == "prod"
	if productionMode {
		scratchVolume = "dettrackd-scratch"
	}

	dockerMonitor := scheduler.New(deps.Store, rt, deps.Gateway, notify, scheduler.Config{
		MaxConcurrent:  maxConcurrent(cfg.NumGPUs),
		Engine:         cfg.Monitors.Docker.Engine(),
		TrackConfig:    cfg.Monitors.Docker.StrongsortTrackConfig,
		RootBucket:     cfg.Minio.RootBucket,
		TrackPrefix:    cfg.Minio.TrackPrefix,
		BaseDir:        cfg.TempDir,
		Env:            dispatchEnv(cfg),
		GPU:            cfg.NumGPUs > 0,
		ProductionMode: productionMode,
		ScratchVolume:  scratchVolume,
	}, deps.Log)

	if err := dockerMonitor.StartupReconcile(ctx); err != nil {
		return fmt.Errorf("dispatcher: startup reconcile: %w", err)
	}

	modelMonitor := modelsync.New(deps.Gateway, cfg.Monitors.Models.Path, cfg.Minio.ModelPrefix, deps.Log)

	driver := internaldispatcher.New(deps.Log)
	driver.Register("docker", dockerMonitor, time.Duration(cfg.Monitors.Docker.CheckEvery)*time.Second)
	driver.Register("models", modelMonitor, time.Duration(cfg.Monitors.Models.CheckEvery)*time.Second)
	driver.Start(ctx)

	<-ctx.Done()
	deps.Log.Info("dispatcher: shutdown signal received")
	driver.Stop()
	return nil
}

// maxConcurrent mirrors the original's "one container slot per GPU, or one
// slot total on a CPU-only host" rule.
func maxConcurrent(numGPUs int) int {
	if numGPUs <= 0 {
		return 1
	}
	return numGPUs
}

// dispatchEnv builds the container's object-store credential environment
// (§4.5 "Environment"). MINIO_ENDPOINT_URL is swapped for the external
// endpoint when one is configured, since the container may see a different
// address than the host process does (§6).
func dispatchEnv(cfg *config.Config) []string {
	endpoint := cfg.Minio.Endpoint
	if cfg.Minio.ExternalEndpoint != "" {
		endpoint = cfg.Minio.ExternalEndpoint
	}
	env := []string{
		"MINIO_ENDPOINT_URL=" + endpoint,
		"MINIO_ACCESS_KEY=" + cfg.Minio.AccessKey,
		"MINIO_SECRET_KEY=" + cfg.Minio.SecretKey,
		"ROOT_BUCKET=" + cfg.Minio.RootBucket,
	}
	if cfg.Minio.Region != "" {
		env = append(env, "AWS_DEFAULT_REGION="+cfg.Minio.Region)
	}
	return env
}
