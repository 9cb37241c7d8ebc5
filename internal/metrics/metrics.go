// Package metrics exposes prometheus collectors for the dispatcher and
// control plane, grounded on the prometheus/client_golang direct
// dependency carried by the teacher pack's shared infrastructure module.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Every collector dettrackd exports. MustRegister registers all of them on
// one registry; the control plane does so and serves them on /metrics.
var (
	JobsDispatched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dettrackd_jobs_dispatched_total",
		Help: "Number of media rows promoted from QUEUED to RUNNING.",
	})

	JobsSucceeded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dettrackd_jobs_succeeded_total",
		Help: "Number of media rows that reached SUCCESS.",
	})

	JobsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dettrackd_jobs_failed_total",
		Help: "Number of media rows that reached FAILED.",
	})

	ModelsSynced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dettrackd_models_synced_total",
		Help: "Number of local model files uploaded by ModelSyncMonitor.",
	})

	RunningContainers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dettrackd_running_containers",
		Help: "Live containers bearing the reserved dettrackd name prefix.",
	})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "dettrackd_http_request_duration_seconds",
		Help: "Control plane HTTP request duration.",
	}, []string{"path", "method", "status"})
)

// MustRegister registers every collector above on reg.
func MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(JobsDispatched, JobsSucceeded, JobsFailed, ModelsSynced, RunningContainers, HTTPRequestDuration)
}
