// Package pipeline wires the catalog, extraction, mirror and playlist packages into a sync run.
//
// A run goes through these phases, each traced as its own span:
//
//  1. prepare: the target must be an existing directory; the app directory is created.
//  2. catalog.load: the library file is read and decoded (cached between runs while unchanged).
//  3. extract: playlists matching the prefix and the tracks they reference are selected.
//  4. mirror.sync: copies, updates and deletions are applied and the mirror state is persisted.
//  5. playlists.emit: manifests are regenerated.
//
// Catalog errors, an unavailable target and a failed state write abort the run. Per-file and
// per-playlist failures are logged and counted in the Report.
//
// Watch keeps a mirror current by re-running after the catalog file changes.
package pipeline
