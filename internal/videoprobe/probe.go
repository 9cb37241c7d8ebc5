// Package videoprobe implements VideoProbe: a reachability check against an
// HTTP URL for the video a prediction request wants processed.
package videoprobe

import (
	"context"
	"net/http"
	"time"
)

// Prober issues HEAD requests to determine whether a video URL is
// reachable.
type Prober struct {
	client *http.Client
}

// New constructs a Prober with the default client timeout noted in §5.
func New() *Prober {
	return &Prober{client: &http.Client{Timeout: 10 * time.Second}}
}

// Reachable reports true when a HEAD request against url returns any 2xx
// status.
func (p *Prober) Reachable(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
