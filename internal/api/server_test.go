package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbari-org/dettrackd/internal/api"
	"github.com/mbari-org/dettrackd/internal/catalog"
	"github.com/mbari-org/dettrackd/internal/logger"
	"github.com/mbari-org/dettrackd/internal/metrics"
	"github.com/mbari-org/dettrackd/internal/videoprobe"
)

func TestServerStartAsyncServesAndShutsDownGracefully(t *testing.T) {
	log, err := logger.New(logger.Config{Level: "error", Encoding: "console"})
	require.NoError(t, err)

	cat := catalog.New(&fakeGateway{}, "models")
	h := api.NewHandlers(newFakeStore(), cat, videoprobe.New(), "strongsort", "test", log)
	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)
	srv := api.NewServer("127.0.0.1:18765", log, h, false, reg)

	errCh := srv.StartAsync()
	waitForServer(t, "http://127.0.0.1:18765/")

	resp, err := http.Get("http://127.0.0.1:18765/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	metricsResp, err := http.Get("http://127.0.0.1:18765/metrics")
	require.NoError(t, err)
	metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx, time.Second))

	select {
	case err, ok := <-errCh:
		if ok {
			assert.NoError(t, err)
		}
	case <-time.After(time.Second):
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server at %s did not become reachable", url)
}
