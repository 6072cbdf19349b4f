// Package telemetry wires OpenTelemetry tracing for sync runs.
//
// With the "none" exporter the global no-op provider stays in place and spans cost nothing.
// With "stdout" every phase of a run (catalog, extract, reconcile, playlists) is exported
// as pretty-printed JSON, to standard output or to Config.File.
//
//	shutdown, err := telemetry.Init(ctx, cfg.Trace, version)
//	defer shutdown(context.Background())
//	ctx, span := telemetry.Tracer().Start(ctx, "reconcile")
//	defer span.End()
package telemetry
