package checks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"itunes2storage/core/storage"
	"itunes2storage/feature/mirror"

	"go.uber.org/zap"
)

// mediaExtensions are the file types iTunes manages. Other files in the mirror root are never
// reported or deleted.
var mediaExtensions = map[string]struct{}{
	".mp3": {}, ".m4a": {}, ".m4b": {}, ".m4p": {}, ".m4r": {}, ".aac": {},
	".aif": {}, ".aiff": {}, ".aifc": {}, ".wav": {}, ".flac": {}, ".alac": {},
	".mp4": {}, ".m4v": {}, ".mov": {}, ".ogg": {}, ".opus": {}, ".wma": {},
}

// IsMediaFile reports whether name has a media file extension.
func IsMediaFile(name string) bool {
	_, ok := mediaExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// FilesReport lists the differences between the mirror state and the mirror root.
type FilesReport struct {
	// Missing lists state entries whose file is absent.
	Missing []mirror.Entry `json:"missing"`
	// Orphans lists media files in the mirror root that no state entry refers to.
	Orphans []string `json:"orphans"`
}

// Clean reports whether state and files agree.
func (r *FilesReport) Clean() bool {
	return len(r.Missing) == 0 && len(r.Orphans) == 0
}

// CheckFiles compares the state with the media files directly inside root.
// state must be the persisted state as read; with an unreadable state every media file would look untracked.
func CheckFiles(ctx context.Context, client storage.Client, root string, state mirror.State) (*FilesReport, error) {
	report := &FilesReport{
		Missing: []mirror.Entry{},
		Orphans: []string{},
	}

	tracked := make(map[string]struct{}, len(state))
	for _, pid := range state.PIDs() {
		entry := state[pid]
		path := filepath.Join(root, filepath.FromSlash(entry.Path))
		tracked[path] = struct{}{}

		_, err := client.Stat(ctx, path)
		if errors.Is(err, fs.ErrNotExist) {
			report.Missing = append(report.Missing, entry)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", path, err)
		}
	}

	files, err := client.ListFiles(ctx, root, storage.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}
	for _, file := range files {
		if !IsMediaFile(file) {
			continue
		}
		if _, ok := tracked[file]; !ok {
			report.Orphans = append(report.Orphans, file)
		}
	}
	sort.Strings(report.Orphans)

	return report, nil
}

// FixFiles deletes orphans and returns state without its missing entries, so the next sync
// copies them again. It stops at the first failed deletion.
func FixFiles(ctx context.Context, client storage.Client, logger *zap.Logger, report *FilesReport, state mirror.State) (mirror.State, error) {
	for _, orphan := range report.Orphans {
		if err := client.RemoveFile(ctx, orphan); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Error("Failed to remove orphan", zap.String("file", orphan), zap.Error(err))
			return state, err
		}
		logger.Info("Removed orphan", zap.String("file", orphan))
	}

	fixed := state.Clone()
	for _, entry := range report.Missing {
		delete(fixed, entry.PID)
		logger.Info("Dropped state entry with missing file", zap.String("pid", entry.PID), zap.String("path", entry.Path))
	}
	return fixed, nil
}
