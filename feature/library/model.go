package library

import (
	"path"
	"sort"
	"strings"
	"time"
)

// Track is a catalog track that can be materialized into the mirror.
type Track struct {
	PID         string    `json:"pid"` // catalog persistent ID, stable across runs
	Name        string    `json:"name"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album"`
	DiscNumber  int       `json:"disc_number"`
	TrackNumber int       `json:"track_number"`
	Duration    int       `json:"duration"` // whole seconds, rounded up
	Modified    time.Time `json:"modified"`
	Source      string    `json:"source"`      // absolute path of the catalog's media file
	Destination string    `json:"destination"` // relative to the mirror root
}

// DisplayTitle is the title written into playlist manifests: "Album - Artist".
// Missing parts are dropped; with neither the track name is used.
func (t Track) DisplayTitle() string {
	parts := make([]string, 0, 2)
	if album := strings.TrimSpace(t.Album); album != "" {
		parts = append(parts, album)
	}
	if artist := strings.TrimSpace(t.Artist); artist != "" {
		parts = append(parts, artist)
	}
	if len(parts) == 0 {
		return t.Name
	}
	return strings.Join(parts, " - ")
}

// TrackSet maps persistent IDs to tracks.
type TrackSet map[string]Track

// PIDs returns the set's identities in sorted order.
func (s TrackSet) PIDs() []string {
	pids := make([]string, 0, len(s))
	for pid := range s {
		pids = append(pids, pid)
	}
	sort.Strings(pids)
	return pids
}

// Playlist is a selected catalog playlist.
type Playlist struct {
	ID     int      `json:"id"`
	PID    string   `json:"pid"`
	Name   string   `json:"name"`   // catalog name with the selection token removed
	Tracks []string `json:"tracks"` // persistent IDs in catalog order, duplicates kept
}

// DestinationPath derives where a track is copied to, relative to the mirror root:
// the persistent ID followed by the source file's extension.
func DestinationPath(t Track) string {
	return t.PID + path.Ext(t.Source)
}
