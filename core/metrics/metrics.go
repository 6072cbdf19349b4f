package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace for all metrics
const metricsNamespace = "itunes2storage"

// Config holds configuration for run metrics.
type Config struct {
	// Textfile is the path of the node-exporter textfile written after each run. Empty disables it.
	Textfile string `mapstructure:"textfile" default:""`
}

// RunStats is the outcome of one sync run as seen by the metrics layer.
type RunStats struct {
	Added           int
	Updated         int
	Removed         int
	Unchanged       int
	CopyFailures    int
	DeleteFailures  int
	Playlists       int
	PlaylistFailure int
	MirrorTracks    int
	Duration        time.Duration
	Success         bool
}

// Metrics holds the Prometheus collectors describing sync runs.
// Each instance owns its registry, so tests and repeated runs never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	// RunsTotal counts runs by status (success, error).
	RunsTotal *prometheus.CounterVec
	// TracksTotal counts track operations by action (added, updated, removed, unchanged).
	TracksTotal *prometheus.CounterVec
	// FailuresTotal counts per-item failures by operation (copy, delete, playlist).
	FailuresTotal *prometheus.CounterVec
	// MirrorTracks is the number of tracks recorded in the mirror state after the last run.
	MirrorTracks prometheus.Gauge
	// PlaylistsWritten is the number of manifests written by the last run.
	PlaylistsWritten prometheus.Gauge
	// LastRunDurationSeconds is the wall time of the last run.
	LastRunDurationSeconds prometheus.Gauge
	// LastRunTimestampSeconds is the unix time the last run finished.
	LastRunTimestampSeconds prometheus.Gauge
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runs_total",
			Help:      "Total number of sync runs by status.",
		}, []string{"status"}),
		TracksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tracks_total",
			Help:      "Total number of reconciled tracks by action.",
		}, []string{"action"}),
		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "failures_total",
			Help:      "Total number of per-item failures by operation.",
		}, []string{"operation"}),
		MirrorTracks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "mirror_tracks",
			Help:      "Number of tracks recorded in the mirror state.",
		}),
		PlaylistsWritten: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "playlists_written",
			Help:      "Number of playlist manifests written by the last run.",
		}),
		LastRunDurationSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last sync run in seconds.",
		}),
		LastRunTimestampSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last sync run finished.",
		}),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.TracksTotal,
		m.FailuresTotal,
		m.MirrorTracks,
		m.PlaylistsWritten,
		m.LastRunDurationSeconds,
		m.LastRunTimestampSeconds,
	)

	return m
}

// Registry exposes the underlying registry as a gatherer.
func (m *Metrics) Registry() prometheus.Gatherer {
	return m.registry
}

// RecordRun folds one run's outcome into the collectors.
func (m *Metrics) RecordRun(stats RunStats) {
	status := "success"
	if !stats.Success {
		status = "error"
	}
	m.RunsTotal.WithLabelValues(status).Inc()

	m.TracksTotal.WithLabelValues("added").Add(float64(stats.Added))
	m.TracksTotal.WithLabelValues("updated").Add(float64(stats.Updated))
	m.TracksTotal.WithLabelValues("removed").Add(float64(stats.Removed))
	m.TracksTotal.WithLabelValues("unchanged").Add(float64(stats.Unchanged))

	m.FailuresTotal.WithLabelValues("copy").Add(float64(stats.CopyFailures))
	m.FailuresTotal.WithLabelValues("delete").Add(float64(stats.DeleteFailures))
	m.FailuresTotal.WithLabelValues("playlist").Add(float64(stats.PlaylistFailure))

	m.MirrorTracks.Set(float64(stats.MirrorTracks))
	m.PlaylistsWritten.Set(float64(stats.Playlists))
	m.LastRunDurationSeconds.Set(stats.Duration.Seconds())
	m.LastRunTimestampSeconds.SetToCurrentTime()
}

// WriteTextfile writes the current values in the Prometheus text format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
