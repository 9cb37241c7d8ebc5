// Package catalog implements ModelCatalog: the enumerated set of runnable
// models, refreshed on demand from the object store.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/mbari-org/dettrackd/internal/objectstore"
)

var modelExtensions = []string{".pt", ".gz"}

// Entry is one catalog row: a display name mapped to its object-store URI.
type Entry struct {
	Name string
	URI  string
}

// Gateway is the subset of internal/objectstore.Gateway the Catalog needs,
// defined here (the consumer side) so tests can supply a fake rather than
// a live MinIO client — the same pattern internal/api and
// internal/scheduler use for their own Store interfaces.
type Gateway interface {
	List(ctx context.Context, prefix string) ([]string, error)
	URI(key string) string
}

// Catalog holds the last-refreshed model set. Order is stable and the
// first entry is the API-documented default, per §3.
type Catalog struct {
	mu      sync.RWMutex
	gateway Gateway
	prefix  string
	entries []Entry
}

// New constructs an empty Catalog; call Refresh before first use.
func New(gateway Gateway, modelPrefix string) *Catalog {
	return &Catalog{gateway: gateway, prefix: modelPrefix}
}

// Refresh rebuilds the catalog by listing the models prefix and filtering
// to the recognised extension set.
func (c *Catalog) Refresh(ctx context.Context) error {
	keys, err := c.gateway.List(ctx, c.prefix+"/")
	if err != nil {
		return fmt.Errorf("catalog: refresh: %w", err)
	}

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		if !objectstore.HasExtension(key, modelExtensions...) {
			continue
		}
		entries = append(entries, Entry{
			Name: objectstore.Basename(key),
			URI:  c.gateway.URI(key),
		})
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	return nil
}

// Names returns the current display names, in stable order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Lookup resolves a display name to its object-store URI.
func (c *Catalog) Lookup(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.Name == name {
			return e.URI, true
		}
	}
	return "", false
}

// Empty reports whether the catalog currently has no entries, used by the
// health check.
func (c *Catalog) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries) == 0
}
