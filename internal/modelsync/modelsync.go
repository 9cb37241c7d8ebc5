// Package modelsync implements ModelSyncMonitor (§4.3): on each tick, push
// new local model files to the object store.
package modelsync

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mbari-org/dettrackd/internal/logger"
	"github.com/mbari-org/dettrackd/internal/metrics"
	"github.com/mbari-org/dettrackd/internal/objectstore"
)

var syncedExtensions = []string{".pt", ".gz"}

// Gateway is the subset of internal/objectstore.Gateway the
// ModelSyncMonitor needs, defined consumer-side so tests can supply a fake.
type Gateway interface {
	Head(ctx context.Context, key string) (bool, error)
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// Monitor walks a local directory and uploads any new model file found.
type Monitor struct {
	gateway     Gateway
	localDir    string
	modelPrefix string
	log         logger.Interface
}

// New constructs a Monitor.
func New(gateway Gateway, localDir, modelPrefix string, log logger.Interface) *Monitor {
	return &Monitor{gateway: gateway, localDir: localDir, modelPrefix: modelPrefix, log: log.WithComponent("modelsync")}
}

// Check walks the local models directory and uploads every recognised
// model file not already present in the object store, logging the number
// uploaded (§4.3). It always returns nil; sync errors are logged.
func (m *Monitor) Check(ctx context.Context) error {
	n, err := m.sync(ctx)
	if err != nil {
		m.log.Error("model sync failed", "error", err)
		return nil // transient infra error, §7: logged, dispatcher keeps running
	}
	if n > 0 {
		m.log.Info("model sync complete", "uploaded", n)
		metrics.ModelsSynced.Add(float64(n))
	}
	return nil
}

func (m *Monitor) sync(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(m.localDir)
	if err != nil {
		return 0, fmt.Errorf("modelsync: read dir %s: %w", m.localDir, err)
	}

	uploaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !objectstore.HasExtension(name, syncedExtensions...) {
			continue
		}

		key := fmt.Sprintf("%s/%s", m.modelPrefix, name)
		exists, err := m.gateway.Head(ctx, key)
		if err != nil {
			m.log.Warn("modelsync: head check failed", "key", key, "error", err)
			continue
		}
		if exists {
			continue
		}

		if err := m.uploadOne(ctx, filepath.Join(m.localDir, name), key); err != nil {
			m.log.Warn("modelsync: upload failed", "key", key, "error", err)
			continue
		}
		uploaded++
	}
	return uploaded, nil
}

func (m *Monitor) uploadOne(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	return m.gateway.Upload(ctx, key, f, info.Size(), "application/octet-stream")
}
