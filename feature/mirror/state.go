package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"itunes2storage/core/storage"
	"itunes2storage/feature/library"
)

var (
	// ErrStateUnreadable is returned with an empty state when the persisted state is missing or corrupt.
	ErrStateUnreadable = errors.New("mirror state unreadable")
	// ErrStatePersistFailed is returned when the new state cannot be written.
	ErrStatePersistFailed = errors.New("mirror state persist failed")
	// ErrCopyFailed wraps a failed track copy.
	ErrCopyFailed = errors.New("copy failed")
	// ErrDeleteFailed wraps a failed track deletion.
	ErrDeleteFailed = errors.New("delete failed")
)

// Entry records one materialized track.
type Entry struct {
	PID      string    `json:"pid"`
	Title    string    `json:"title"`
	Path     string    `json:"path"` // relative to the mirror root
	Src      string    `json:"src"`
	Time     int       `json:"time"` // duration in seconds
	Modified time.Time `json:"modified"`
}

// State maps persistent IDs to what was materialized for them.
type State map[string]Entry

// EntryFromTrack builds the state entry recorded after a track was copied.
func EntryFromTrack(t library.Track) Entry {
	return Entry{
		PID:      t.PID,
		Title:    t.DisplayTitle(),
		Path:     t.Destination,
		Src:      t.Source,
		Time:     t.Duration,
		Modified: t.Modified,
	}
}

// PIDs returns the state's identities in sorted order.
func (s State) PIDs() []string {
	pids := make([]string, 0, len(s))
	for pid := range s {
		pids = append(pids, pid)
	}
	sort.Strings(pids)
	return pids
}

// Clone returns a shallow copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for pid, entry := range s {
		out[pid] = entry
	}
	return out
}

// LoadState reads the persisted state. Any failure yields an empty state together with
// an error wrapping ErrStateUnreadable, which callers log and otherwise ignore.
func LoadState(ctx context.Context, client storage.Client, file string) (State, error) {
	data, err := client.ReadFile(ctx, file)
	if err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrStateUnreadable, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrStateUnreadable, err)
	}
	if state == nil {
		return State{}, nil
	}

	for pid, entry := range state {
		if entry.PID == "" {
			entry.PID = pid
			state[pid] = entry
		}
	}

	return state, nil
}

// SaveState replaces the persisted state in one step (temporary file and rename).
func SaveState(ctx context.Context, client storage.Client, file string, state State) error {
	if state == nil {
		state = State{}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStatePersistFailed, err)
	}

	if err := client.PutFile(ctx, file, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStatePersistFailed, file, err)
	}
	return nil
}
