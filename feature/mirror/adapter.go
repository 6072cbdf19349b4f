package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"itunes2storage/core/reconcile"
	"itunes2storage/core/storage"
	"itunes2storage/feature/library"

	"go.uber.org/zap"
)

// trackAdapter reconciles library tracks (source) against state entries (state)
// and applies the resulting actions to the mirror directory.
type trackAdapter struct {
	client storage.Client
	root   string
	logger *zap.Logger
}

var (
	_ reconcile.Adapter = (*trackAdapter)(nil)
	_ reconcile.Mutator = (*trackAdapter)(nil)
)

func (a *trackAdapter) Name() string {
	return "tracks"
}

func (a *trackAdapter) ResolveName(source, state reconcile.Item) string {
	if track, ok := source.(library.Track); ok {
		return track.DisplayTitle()
	}
	if entry, ok := state.(Entry); ok {
		return entry.Title
	}
	return ""
}

func (a *trackAdapter) CompareFields(source, state reconcile.Item) []string {
	track := source.(library.Track)
	entry := state.(Entry)

	var mismatch []string
	if !track.Modified.Equal(entry.Modified) {
		mismatch = append(mismatch, fmt.Sprintf("modified: source=%s state=%s",
			track.Modified.Format(time.RFC3339), entry.Modified.Format(time.RFC3339)))
	}
	if track.Destination != entry.Path {
		mismatch = append(mismatch, fmt.Sprintf("path: source=%s state=%s", track.Destination, entry.Path))
	}
	return mismatch
}

func (a *trackAdapter) GetMetadata(source, state reconcile.Item) map[string]string {
	meta := make(map[string]string)
	if track, ok := source.(library.Track); ok {
		meta["path"] = track.Destination
		meta["src"] = track.Source
	} else if entry, ok := state.(Entry); ok {
		meta["path"] = entry.Path
		meta["src"] = entry.Src
	}
	return meta
}

// Copy copies the track's source file to its destination. For an update whose destination
// moved, the previous file is removed afterwards.
func (a *trackAdapter) Copy(ctx context.Context, action reconcile.Action) error {
	track := action.Source.(library.Track)

	dest, err := a.resolve(track.Destination)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCopyFailed, track.PID, err)
	}

	if err := a.client.CopyFile(ctx, track.Source, dest); err != nil {
		return fmt.Errorf("%w: %s -> %s: %w", ErrCopyFailed, track.Source, dest, err)
	}

	if prior, ok := action.State.(Entry); ok && prior.Path != "" && prior.Path != track.Destination {
		if err := a.remove(ctx, prior.Path); err != nil {
			a.logger.Warn("Failed to remove previous copy",
				zap.String("pid", track.PID),
				zap.String("path", prior.Path),
				zap.Error(err),
			)
		}
	}

	return nil
}

// Delete removes the file recorded for the entry. A file that is already gone counts as deleted.
func (a *trackAdapter) Delete(ctx context.Context, action reconcile.Action) error {
	entry := action.State.(Entry)

	if err := a.remove(ctx, entry.Path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeleteFailed, entry.Path, err)
	}
	return nil
}

func (a *trackAdapter) remove(ctx context.Context, rel string) error {
	path, err := a.resolve(rel)
	if err != nil {
		return err
	}

	err = a.client.RemoveFile(ctx, path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// resolve joins a mirror-relative path onto the root, refusing paths that leave it.
func (a *trackAdapter) resolve(rel string) (string, error) {
	return resolvePath(a.root, rel)
}

func resolvePath(root, rel string) (string, error) {
	if rel == "" {
		return "", errors.New("empty mirror path")
	}

	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the mirror", rel)
	}
	return filepath.Join(root, clean), nil
}
