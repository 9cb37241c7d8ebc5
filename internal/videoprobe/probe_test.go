package videoprobe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbari-org/dettrackd/internal/videoprobe"
)

func TestReachableOnOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := videoprobe.New()
	assert.True(t, p.Reachable(context.Background(), srv.URL+"/clip.mp4"))
}

func TestReachableOnNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := videoprobe.New()
	assert.False(t, p.Reachable(context.Background(), srv.URL+"/missing.mp4"))
}

func TestReachableOnConnectionRefused(t *testing.T) {
	p := videoprobe.New()
	assert.False(t, p.Reachable(context.Background(), "http://127.0.0.1:1/missing.mp4"))
}

func TestReachableOnInvalidURL(t *testing.T) {
	p := videoprobe.New()
	assert.False(t, p.Reachable(context.Background(), "://not-a-url"))
}
