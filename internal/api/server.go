// Package api implements the ControlPlane HTTP surface (§4.1): admission,
// validation, enqueue, and status queries. Grounded on the server
// lifecycle in infrastructure/gin/server.go, adapted to dettrackd's own
// logger.Interface instead of the shared module's typed zap.Field logger.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbari-org/dettrackd/internal/logger"
	"github.com/mbari-org/dettrackd/internal/metrics"
)

// requestIDHeader is the response header carrying each request's
// correlation id, surfaced so a caller can quote it back when reporting an
// issue.
const requestIDHeader = "X-Request-ID"

// Server wraps a gin engine plus the http.Server that serves it, with
// graceful-shutdown lifecycle management matching the teacher's gin.Server.
type Server struct {
	router *gin.Engine
	http   *http.Server
	log    logger.Interface
}

// NewServer builds the ControlPlane's HTTP server, applying request-id
// stamping, then panic recovery, then request logging before handing off
// to Handlers.Register; no CORS middleware is installed. reg is exposed on
// GET /metrics via promhttp, the way classifier/internal/telemetry wires
// its own Prometheus registry onto an HTTP handler.
func NewServer(addr string, log logger.Interface, h *Handlers, debug bool, reg *prometheus.Registry) *Server {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(recoveryMiddleware(log))
	router.Use(requestLogMiddleware(log))

	h.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return &Server{
		router: router,
		http: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

// StartAsync starts the HTTP server in a goroutine and returns an error
// channel that receives any non-shutdown server error.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("control plane listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("control plane: %w", err)
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully stops the server within timeout.
func (s *Server) Shutdown(ctx context.Context, timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("control plane shutdown: %w", err)
	}
	s.log.Info("control plane stopped")
	return nil
}

// requestIDMiddleware stamps every request with a correlation id, the same
// role infrastructure/events.Event.EventID plays for an async event:
// a uuid.UUID identifying this occurrence, carried through logs and
// handed back to the caller.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func recoveryMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", "error", fmt.Sprint(r), "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			}
		}()
		c.Next()
	}
}

func requestLogMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		status := c.Writer.Status()
		log.Info("request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", elapsed,
		)
		metrics.HTTPRequestDuration.WithLabelValues(
			c.FullPath(), c.Request.Method, fmt.Sprint(status),
		).Observe(elapsed.Seconds())
	}
}
