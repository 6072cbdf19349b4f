package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"itunes2storage/core/config"
	"itunes2storage/core/logger"
	"itunes2storage/core/metrics"
	"itunes2storage/core/storage"
	"itunes2storage/core/telemetry"
	"itunes2storage/feature/catalog"
	"itunes2storage/feature/library"
	"itunes2storage/feature/mirror"
	"itunes2storage/feature/playlist"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrTargetUnavailable is returned when the mirror root is missing or its app directory cannot be created.
var ErrTargetUnavailable = errors.New("target directory unavailable")

const runKey = "run"

// Report summarizes one run.
type Report struct {
	RunID          string        `json:"run_id"`
	CatalogVersion string        `json:"catalog_version"`
	Playlists      int           `json:"playlists"`
	Tracks         int           `json:"tracks"`
	Counts         mirror.Counts `json:"counts"`
	CopyFailures   int           `json:"copy_failures"`
	DeleteFailures int           `json:"delete_failures"`
	// PlaylistsWritten and PlaylistsFailed are zero for a plan.
	PlaylistsWritten int           `json:"playlists_written"`
	PlaylistsFailed  int           `json:"playlists_failed"`
	Duration         time.Duration `json:"duration"`
	// Mirror holds the scheduled and failed operations.
	Mirror *mirror.Result `json:"mirror,omitempty"`
}

// Runner executes sync runs for one configuration.
type Runner struct {
	cfg     *config.Config
	client  storage.Client
	logger  *zap.Logger
	loader  *catalog.Loader
	metrics *metrics.Metrics
	tracer  trace.Tracer
	sf      singleflight.Group

	// Debounce is the quiet period Watch waits for after the last catalog change.
	Debounce time.Duration
}

// NewRunner creates a Runner. The catalog loader and metrics registry are shared by every run.
func NewRunner(cfg *config.Config, client storage.Client, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		loader:   catalog.NewLoader(client),
		metrics:  metrics.New(),
		tracer:   telemetry.Tracer(),
		Debounce: 2 * time.Second,
	}
}

// Metrics returns the registry runs are recorded into.
func (r *Runner) Metrics() *metrics.Metrics {
	return r.metrics
}

// Extract loads the catalog and selects the configured playlists.
func (r *Runner) Extract(ctx context.Context) (*catalog.Document, []library.Playlist, library.TrackSet, error) {
	doc, err := r.loadCatalog(ctx, r.logger)
	if err != nil {
		return nil, nil, nil, err
	}

	playlists, tracks, err := r.extract(ctx, r.logger, doc)
	if err != nil {
		return nil, nil, nil, err
	}
	return doc, playlists, tracks, nil
}

// Run performs one full sync: catalog, extraction, mirror reconciliation and playlist regeneration.
// Concurrent calls share a single run.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	result, err, _ := r.sf.Do(runKey, func() (interface{}, error) {
		return r.run(ctx)
	})
	report, _ := result.(*Report)
	return report, err
}

// Plan reports what a run would copy and delete without touching the mirror.
func (r *Runner) Plan(ctx context.Context) (*Report, error) {
	report, log := r.newReport()
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "plan", trace.WithAttributes(attribute.String("run_id", report.RunID)))
	defer span.End()

	doc, err := r.loadCatalog(ctx, log)
	if err != nil {
		return report, fail(span, err)
	}
	report.CatalogVersion = doc.ApplicationVersion

	playlists, tracks, err := r.extract(ctx, log, doc)
	if err != nil {
		return report, fail(span, err)
	}
	report.Playlists = len(playlists)
	report.Tracks = len(tracks)

	prior, err := mirror.LoadState(ctx, r.client, r.cfg.StatePath())
	if err != nil {
		log.Warn("Mirror state unreadable, planning from an empty state", zap.Error(err))
	}

	result := r.engine(log).Plan(tracks, prior)
	report.Mirror = result
	report.Counts = result.Counts
	report.Duration = time.Since(start)

	return report, nil
}

func (r *Runner) run(ctx context.Context) (*Report, error) {
	report, log := r.newReport()
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "sync", trace.WithAttributes(attribute.String("run_id", report.RunID)))
	defer span.End()

	var mirrorTracks int
	err := r.sync(ctx, log, report, &mirrorTracks)
	report.Duration = time.Since(start)

	r.metrics.RecordRun(metrics.RunStats{
		Added:           report.Counts.Added,
		Updated:         report.Counts.Updated,
		Removed:         report.Counts.Removed,
		Unchanged:       report.Counts.Unchanged,
		CopyFailures:    report.CopyFailures,
		DeleteFailures:  report.DeleteFailures,
		Playlists:       report.PlaylistsWritten,
		PlaylistFailure: report.PlaylistsFailed,
		MirrorTracks:    mirrorTracks,
		Duration:        report.Duration,
		Success:         err == nil,
	})
	if werr := r.metrics.WriteTextfile(r.cfg.Metrics.Textfile); werr != nil {
		log.Warn("Failed to write metrics textfile", zap.String("file", r.cfg.Metrics.Textfile), zap.Error(werr))
	}

	if err != nil {
		return report, fail(span, err)
	}
	return report, nil
}

func (r *Runner) sync(ctx context.Context, log *zap.Logger, report *Report, mirrorTracks *int) error {
	if err := r.prepare(ctx, log); err != nil {
		return err
	}

	doc, err := r.loadCatalog(ctx, log)
	if err != nil {
		return err
	}
	report.CatalogVersion = doc.ApplicationVersion

	playlists, tracks, err := r.extract(ctx, log, doc)
	if err != nil {
		return err
	}
	report.Playlists = len(playlists)
	report.Tracks = len(tracks)

	result, err := r.reconcile(ctx, log, tracks)
	if result != nil {
		report.Mirror = result
		report.Counts = result.Counts
		report.CopyFailures = result.CopyFailures()
		report.DeleteFailures = result.DeleteFailures()
	}
	if err != nil {
		return err
	}
	*mirrorTracks = len(result.State)

	emitted := r.emit(ctx, log, playlists, tracks)
	report.PlaylistsWritten = len(emitted.Written)
	report.PlaylistsFailed = len(emitted.Failed)

	return nil
}

// prepare checks the mirror root and creates the app directory.
func (r *Runner) prepare(ctx context.Context, log *zap.Logger) error {
	ctx, span := r.tracer.Start(ctx, "prepare")
	defer span.End()

	info, err := r.client.Stat(ctx, r.cfg.TargetPath)
	if err != nil {
		return fail(span, fmt.Errorf("%w: %s: %v", ErrTargetUnavailable, r.cfg.TargetPath, err))
	}
	if !info.IsDir() {
		return fail(span, fmt.Errorf("%w: %s is not a directory", ErrTargetUnavailable, r.cfg.TargetPath))
	}

	if err := r.client.MakeDir(ctx, r.cfg.AppPath()); err != nil {
		return fail(span, fmt.Errorf("%w: %s: %v", ErrTargetUnavailable, r.cfg.AppPath(), err))
	}

	log.Debug("Target ready", zap.String("target", r.cfg.TargetPath), zap.String("app_dir", r.cfg.AppPath()))
	return nil
}

func (r *Runner) loadCatalog(ctx context.Context, log *zap.Logger) (*catalog.Document, error) {
	ctx, span := r.tracer.Start(ctx, "catalog.load", trace.WithAttributes(attribute.String("path", r.cfg.ITunesXMLPath)))
	defer span.End()

	doc, err := r.loader.Load(ctx, r.cfg.ITunesXMLPath)
	if err != nil {
		return nil, fail(span, err)
	}

	log.Info("Catalog loaded",
		zap.String("path", r.cfg.ITunesXMLPath),
		zap.String("version", doc.ApplicationVersion),
		zap.Int("tracks", len(doc.Tracks)),
		zap.Int("playlists", len(doc.Playlists)),
	)
	return doc, nil
}

func (r *Runner) extract(ctx context.Context, log *zap.Logger, doc *catalog.Document) ([]library.Playlist, library.TrackSet, error) {
	_, span := r.tracer.Start(ctx, "extract", trace.WithAttributes(attribute.String("prefix", r.cfg.PlaylistPrefix)))
	defer span.End()

	playlists, tracks, err := library.Extract(doc, r.cfg.PlaylistPrefix)
	if err != nil {
		return nil, nil, fail(span, err)
	}

	span.SetAttributes(attribute.Int("playlists", len(playlists)), attribute.Int("tracks", len(tracks)))
	log.Info("Playlists selected",
		zap.String("prefix", r.cfg.PlaylistPrefix),
		zap.Int("playlists", len(playlists)),
		zap.Int("tracks", len(tracks)),
	)
	return playlists, tracks, nil
}

func (r *Runner) reconcile(ctx context.Context, log *zap.Logger, tracks library.TrackSet) (*mirror.Result, error) {
	ctx, span := r.tracer.Start(ctx, "mirror.sync")
	defer span.End()

	result, err := r.engine(log).Sync(ctx, tracks)
	if result != nil {
		span.SetAttributes(
			attribute.Int("added", result.Counts.Added),
			attribute.Int("updated", result.Counts.Updated),
			attribute.Int("removed", result.Counts.Removed),
			attribute.Int("failed", len(result.Failed)),
		)
		log.Info("Mirror reconciled",
			zap.Int("added", result.Counts.Added),
			zap.Int("updated", result.Counts.Updated),
			zap.Int("removed", result.Counts.Removed),
			zap.Int("unchanged", result.Counts.Unchanged),
			zap.Int("failed", len(result.Failed)),
		)
	}
	if err != nil {
		return result, fail(span, err)
	}
	return result, nil
}

// emit never fails the run; each failed playlist has already been logged by the emitter.
func (r *Runner) emit(ctx context.Context, log *zap.Logger, playlists []library.Playlist, tracks library.TrackSet) *playlist.EmitReport {
	ctx, span := r.tracer.Start(ctx, "playlists.emit")
	defer span.End()

	emitter := playlist.NewEmitter(r.client, log, playlist.Options{
		Root:    r.cfg.TargetPath,
		Author:  r.cfg.PlaylistAuthor,
		Workers: r.cfg.Workers,
	})

	report, err := emitter.Emit(ctx, playlists, tracks, r.cfg.AppPath())
	if err != nil {
		span.RecordError(err)
	}

	span.SetAttributes(attribute.Int("written", len(report.Written)), attribute.Int("failed", len(report.Failed)))
	log.Info("Playlists written",
		zap.Int("written", len(report.Written)),
		zap.Int("failed", len(report.Failed)),
		zap.Int("removed", len(report.Removed)),
	)
	return report
}

func (r *Runner) engine(log *zap.Logger) *mirror.Engine {
	return mirror.NewEngine(r.client, log, mirror.Options{
		Root:      r.cfg.TargetPath,
		StateFile: r.cfg.StatePath(),
		Workers:   r.cfg.Workers,
	})
}

func (r *Runner) newReport() (*Report, *zap.Logger) {
	id := uuid.NewString()
	return &Report{RunID: id}, logger.WithRunID(r.logger, id)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
