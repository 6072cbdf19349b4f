package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch runs once, then runs again whenever the catalog file changes and stays quiet for Debounce.
// The catalog's directory is watched rather than the file, since iTunes replaces the file on save.
// Run failures are logged and the loop keeps going. Watch returns nil when ctx is cancelled.
func (r *Runner) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	catalogPath := filepath.Clean(r.cfg.ITunesXMLPath)
	dir := filepath.Dir(catalogPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch catalog directory %s: %w", dir, err)
	}

	r.logger.Info("Watching catalog", zap.String("path", catalogPath), zap.Duration("debounce", r.Debounce))

	// done is closed when the run in flight finishes; nil while idle.
	var (
		done    chan struct{}
		pending bool
	)
	start := func(reason string) {
		ch := make(chan struct{})
		done = ch
		go func() {
			defer close(ch)
			r.runLogged(ctx, reason)
		}()
	}
	defer func() {
		if done != nil {
			<-done
		}
	}()

	start("startup")

	timer := time.NewTimer(r.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isCatalogChange(event, catalogPath) {
				continue
			}
			r.logger.Debug("Catalog changed", zap.String("op", event.Op.String()))
			r.loader.Invalidate(r.cfg.ITunesXMLPath)
			timer.Reset(r.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("File watcher error", zap.Error(err))

		case <-timer.C:
			// A change seen during a run is picked up by one more run once it finishes.
			if done != nil {
				pending = true
				continue
			}
			start("catalog changed")

		case <-done:
			done = nil
			if pending {
				pending = false
				start("catalog changed")
			}
		}
	}
}

// runLogged runs once and logs the outcome. Overlapping calls share the run in flight.
func (r *Runner) runLogged(ctx context.Context, reason string) {
	report, err := r.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		r.logger.Error("Sync failed", zap.String("reason", reason), zap.Error(err))
		return
	}
	r.logger.Info("Sync completed",
		zap.String("reason", reason),
		zap.String("run_id", report.RunID),
		zap.Int("added", report.Counts.Added),
		zap.Int("updated", report.Counts.Updated),
		zap.Int("removed", report.Counts.Removed),
		zap.Duration("duration", report.Duration),
	)
}

func isCatalogChange(event fsnotify.Event, catalogPath string) bool {
	if filepath.Clean(event.Name) != catalogPath {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
