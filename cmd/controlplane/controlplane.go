// Package controlplane wires the ControlPlane HTTP daemon: the five
// admission/status routes of §4.1 backed by the job store, model catalog,
// and video prober. Grounded on the subcommand shape of
// crawler/cmd/httpd/httpd.go.
package controlplane

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mbari-org/dettrackd/internal/api"
	"github.com/mbari-org/dettrackd/internal/bootstrap"
	"github.com/mbari-org/dettrackd/internal/catalog"
	"github.com/mbari-org/dettrackd/internal/metrics"
	"github.com/mbari-org/dettrackd/internal/videoprobe"
)

const shutdownTimeout = 15 * time.Second

// Command returns the "controlplane" subcommand. cfgFile and debug are
// bound to the root command's persistent flags.
func Command(cfgFile *string, debug *bool) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "controlplane",
		Short: "Run the HTTP control plane",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), *cfgFile, *debug, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address the control plane listens on")
	return cmd
}

func run(ctx context.Context, cfgFile string, debug bool, addr string) error {
	deps, err := bootstrap.New(ctx, bootstrap.Options{ConfigPath: cfgFile, RequireMonitors: false, Debug: debug})
	if err != nil {
		return fmt.Errorf("controlplane: bootstrap: %w", err)
	}
	defer deps.Close()

	cat := catalog.New(deps.Gateway, deps.Config.Minio.ModelPrefix)
	if err := cat.Refresh(ctx); err != nil {
		deps.Log.Warn("controlplane: initial catalog refresh failed", "error", err)
	}

	prober := videoprobe.New()
	engine := deps.Config.Monitors.Docker.Engine()

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)

	handlers := api.NewHandlers(deps.Store, cat, prober, engine, "dev", deps.Log)
	server := api.NewServer(addr, deps.Log, handlers, debug, reg)

	errCh := server.StartAsync()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("controlplane: %w", err)
		}
		return nil
	case <-ctx.Done():
		deps.Log.Info("controlplane: shutdown signal received")
		return server.Shutdown(context.Background(), shutdownTimeout)
	}
}
