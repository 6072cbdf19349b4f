package playlist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"itunes2storage/core/storage"
	"itunes2storage/core/utils"
	"itunes2storage/feature/library"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrPlaylistWriteFailed wraps the failure to write one manifest.
var ErrPlaylistWriteFailed = errors.New("playlist write failed")

// IndexFile is the JSON summary of the emitted playlists, written next to the manifests.
const IndexFile = "playlists.json"

// Generator names the tool in manifest headers.
const Generator = "itunes2storage"

// Options configures an Emitter.
type Options struct {
	// Root is the mirror root; track destinations are relative to it.
	Root string
	// Author is written into every manifest header.
	Author string
	// Workers bounds concurrent manifest writes.
	Workers int
}

// Outcome is the result of writing one manifest.
type Outcome struct {
	Name    string `json:"name"`
	File    string `json:"file"`
	Entries int    `json:"entries"`
	Skipped int    `json:"skipped"`
	Err     error  `json:"-"`
}

// EmitReport collects the outcome of one emission.
type EmitReport struct {
	// Removed lists the manifests deleted before writing.
	Removed []string `json:"removed"`
	// Written lists the manifests written.
	Written []Outcome `json:"written"`
	// Failed lists the manifests that could not be written.
	Failed []Outcome `json:"failed"`
	// Overwritten lists playlists whose file name was reused by a later playlist.
	Overwritten []string `json:"overwritten"`
}

// Emitter regenerates the playlist manifests.
type Emitter struct {
	client storage.Client
	logger *zap.Logger
	opts   Options
}

// NewEmitter creates an Emitter.
func NewEmitter(client storage.Client, logger *zap.Logger, opts Options) *Emitter {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Author == "" {
		opts.Author = Generator
	}
	return &Emitter{client: client, logger: logger, opts: opts}
}

// FileName returns the manifest file name for a playlist name.
func FileName(name string) string {
	return utils.SanitizeFileName(name) + Extension
}

// Emit removes every manifest in dir and writes one manifest per playlist.
// Track identities missing from tracks are skipped. One failing playlist does not stop the others;
// the returned error joins every per-playlist failure, each wrapping ErrPlaylistWriteFailed.
func (e *Emitter) Emit(ctx context.Context, playlists []library.Playlist, tracks library.TrackSet, dir string) (*EmitReport, error) {
	report := &EmitReport{
		Removed:     []string{},
		Written:     []Outcome{},
		Failed:      []Outcome{},
		Overwritten: []string{},
	}

	report.Removed = e.removeManifests(ctx, dir)

	// Later playlists win a file name; drop the earlier ones up front so the result does not
	// depend on write order.
	byFile := make(map[string]int, len(playlists))
	for i, p := range playlists {
		byFile[FileName(p.Name)] = i
	}

	var selected []library.Playlist
	for i, p := range playlists {
		if byFile[FileName(p.Name)] != i {
			report.Overwritten = append(report.Overwritten, p.Name)
			e.logger.Debug("Playlist file name reused by a later playlist", zap.String("playlist", p.Name))
			continue
		}
		selected = append(selected, p)
	}

	outcomes := make([]Outcome, len(selected))

	var g errgroup.Group
	g.SetLimit(e.opts.Workers)
	for i, p := range selected {
		i, p := i, p
		g.Go(func() error {
			outcomes[i] = e.write(ctx, p, tracks, dir)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			report.Failed = append(report.Failed, outcome)
			errs = append(errs, outcome.Err)
			e.logger.Error("Failed to write playlist",
				zap.String("playlist", outcome.Name),
				zap.String("file", outcome.File),
				zap.Error(outcome.Err),
			)
			continue
		}
		report.Written = append(report.Written, outcome)
	}

	e.writeIndex(ctx, selected, dir)

	return report, errors.Join(errs...)
}

func (e *Emitter) write(ctx context.Context, p library.Playlist, tracks library.TrackSet, dir string) Outcome {
	file := filepath.Join(dir, FileName(p.Name))
	outcome := Outcome{Name: p.Name, File: file}

	data, entries, skipped, err := e.Render(p, tracks, dir)
	if err != nil {
		outcome.Err = fmt.Errorf("%w: %s: %w", ErrPlaylistWriteFailed, p.Name, err)
		return outcome
	}
	outcome.Entries, outcome.Skipped = entries, skipped

	if err := e.client.PutFile(ctx, file, bytes.NewReader(data)); err != nil {
		outcome.Err = fmt.Errorf("%w: %s: %w", ErrPlaylistWriteFailed, file, err)
	}
	return outcome
}

// Render produces the manifest for p as it would be written into dir, with the number of
// entries written and dangling identities skipped.
func (e *Emitter) Render(p library.Playlist, tracks library.TrackSet, dir string) ([]byte, int, int, error) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	enc.Comment(fmt.Sprintf("Playlist created by %s, author: %s", Generator, e.opts.Author))
	enc.Blank()

	entries, skipped := 0, 0
	for _, pid := range p.Tracks {
		track, ok := tracks[pid]
		if !ok {
			skipped++
			continue
		}

		rel, err := filepath.Rel(dir, filepath.Join(e.opts.Root, filepath.FromSlash(track.Destination)))
		if err != nil {
			return nil, 0, 0, err
		}
		enc.Entry(filepath.ToSlash(rel), track.Duration, track.DisplayTitle())
		entries++
	}

	if err := enc.Close(); err != nil {
		return nil, 0, 0, err
	}
	return buf.Bytes(), entries, skipped, nil
}

func (e *Emitter) removeManifests(ctx context.Context, dir string) []string {
	removed := []string{}

	files, err := e.client.ListFiles(ctx, dir, storage.ListOptions{Extension: Extension})
	if err != nil {
		e.logger.Warn("Failed to list existing playlists", zap.String("dir", dir), zap.Error(err))
		return removed
	}

	for _, file := range files {
		if err := e.client.RemoveFile(ctx, file); err != nil {
			e.logger.Warn("Failed to remove playlist", zap.String("file", file), zap.Error(err))
			continue
		}
		removed = append(removed, file)
	}
	return removed
}

type indexEntry struct {
	library.Playlist
	File string `json:"file"`
}

// writeIndex records the emitted playlists in IndexFile. Failures are only logged.
func (e *Emitter) writeIndex(ctx context.Context, playlists []library.Playlist, dir string) {
	index := make([]indexEntry, 0, len(playlists))
	for _, p := range playlists {
		index = append(index, indexEntry{Playlist: p, File: FileName(p.Name)})
	}

	data, err := json.MarshalIndent(index, "", "  ")
	if err == nil {
		err = e.client.PutFile(ctx, filepath.Join(dir, IndexFile), bytes.NewReader(data))
	}
	if err != nil {
		e.logger.Warn("Failed to write playlist index", zap.String("dir", dir), zap.Error(err))
	}
}
