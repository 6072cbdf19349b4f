package library

import (
	"fmt"
	"strings"

	"itunes2storage/core/utils"
	"itunes2storage/feature/catalog"
)

// Extract selects the playlists whose name contains "<prefix>_" and resolves the tracks they reference.
//
// Playlist entries whose track is absent from the catalog are skipped. Tracks without a persistent ID
// or without a local file location cannot be mirrored and are left out of the track set; playlists still
// list their persistent ID, so manifests simply omit them. A track referenced by several playlists is
// resolved once.
func Extract(doc *catalog.Document, prefix string) ([]Playlist, TrackSet, error) {
	if doc == nil {
		return nil, nil, fmt.Errorf("%w: no document", catalog.ErrCatalogMalformed)
	}

	token := prefix + "_"

	var (
		playlists = make([]Playlist, 0)
		order     []int
		seen      = make(map[int]struct{})
	)

	for _, raw := range doc.Playlists {
		if raw == nil || !raw.HasItems() || !strings.Contains(raw.Name, token) {
			continue
		}

		playlist := Playlist{
			ID:     raw.PlaylistID,
			PID:    raw.PersistentID,
			Name:   strings.Replace(raw.Name, token, "", 1),
			Tracks: make([]string, 0, len(raw.Items)),
		}

		for _, item := range raw.Items {
			track, ok := doc.Track(item.TrackID)
			if !ok || track == nil || track.PersistentID == "" {
				continue
			}
			playlist.Tracks = append(playlist.Tracks, track.PersistentID)

			if _, dup := seen[item.TrackID]; !dup {
				seen[item.TrackID] = struct{}{}
				order = append(order, item.TrackID)
			}
		}

		playlists = append(playlists, playlist)
	}

	tracks := make(TrackSet, len(order))
	for _, id := range order {
		raw, _ := doc.Track(id)
		if _, dup := tracks[raw.PersistentID]; dup {
			continue
		}

		track, ok := buildTrack(raw)
		if !ok {
			continue
		}
		tracks[track.PID] = track
	}

	return playlists, tracks, nil
}

func buildTrack(raw *catalog.Track) (Track, bool) {
	source, ok := catalog.DecodeLocation(raw.Location)
	if !ok {
		return Track{}, false
	}

	track := Track{
		PID:         raw.PersistentID,
		Name:        raw.Name,
		Artist:      raw.Artist,
		Album:       raw.Album,
		DiscNumber:  utils.IntOr(raw.DiscNumber, 1),
		TrackNumber: utils.IntOr(raw.TrackNumber, 1),
		Duration:    utils.MillisToSeconds(raw.TotalTime),
		Modified:    raw.DateModified,
		Source:      source,
	}
	track.Destination = DestinationPath(track)

	return track, true
}
