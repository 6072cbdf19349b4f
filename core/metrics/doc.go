// Package metrics records sync run outcomes as Prometheus metrics.
//
// The tool is a short-lived CLI, so instead of serving /metrics it writes the
// registry to a node-exporter textfile after every run (see Config.Textfile).
//
// # Metrics
//
//   - itunes2storage_runs_total{status}
//   - itunes2storage_tracks_total{action}
//   - itunes2storage_failures_total{operation}
//   - itunes2storage_mirror_tracks
//   - itunes2storage_playlists_written
//   - itunes2storage_last_run_duration_seconds
//   - itunes2storage_last_run_timestamp_seconds
package metrics
