// Package bootstrap constructs the dependencies shared by both cmd/
// binaries (config, logger, job store, object-store gateway), mirroring
// cmd/common/deps.go's NewCommandDeps() in the teacher repo.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/mbari-org/dettrackd/internal/config"
	"github.com/mbari-org/dettrackd/internal/logger"
	"github.com/mbari-org/dettrackd/internal/objectstore"
	"github.com/mbari-org/dettrackd/internal/store"
)

// Deps bundles the shared infrastructure both cmd/ binaries build on.
type Deps struct {
	Config  *config.Config
	Log     logger.Interface
	Store   *store.Store
	Gateway *objectstore.Gateway
}

// Options selects which config file to load and whether the full monitor
// config block must validate (the dispatcher needs it; the control plane
// does not).
type Options struct {
	ConfigPath      string
	RequireMonitors bool
	Debug           bool
}

// New loads config, builds the logger, opens the job store, and
// constructs the object-store gateway — failing fast (§7 "Fatal startup
// errors") if any of these cannot be established.
func New(ctx context.Context, opts Options) (*Deps, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load config: %w", err)
	}
	if err := cfg.Validate(opts.RequireMonitors); err != nil {
		return nil, fmt.Errorf("bootstrap: invalid config: %w", err)
	}

	log := logger.Must(logger.Config{
		Level:       cfg.Log.Level,
		Encoding:    cfg.Log.Format,
		Development: opts.Debug,
	})

	st, err := store.Open(ctx, cfg.Database.DatabaseFile())
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open store: %w", err)
	}

	gateway, err := objectstore.New(cfg.Minio, log)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("bootstrap: object store: %w", err)
	}
	if err := gateway.VerifyReachable(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("bootstrap: object store unreachable: %w", err)
	}

	return &Deps{Config: cfg, Log: log, Store: st, Gateway: gateway}, nil
}

// Close releases every resource opened by New.
func (d *Deps) Close() {
	if d.Store != nil {
		d.Store.Close()
	}
}
