package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"howett.net/plist"
)

var (
	// ErrCatalogUnreadable is returned when the library file cannot be read.
	ErrCatalogUnreadable = errors.New("catalog unreadable")
	// ErrCatalogMalformed is returned when the library file is not a recognizable library document.
	ErrCatalogMalformed = errors.New("catalog malformed")
)

// Document is a decoded iTunes library.
type Document struct {
	MajorVersion       int               `plist:"Major Version"`
	MinorVersion       int               `plist:"Minor Version"`
	ApplicationVersion string            `plist:"Application Version"`
	MusicFolder        string            `plist:"Music Folder"`
	Tracks             map[string]*Track `plist:"Tracks"`
	Playlists          []*Playlist       `plist:"Playlists"`

	index map[int]*Track
}

// Track is a single entry of the library's Tracks dictionary.
type Track struct {
	TrackID      int       `plist:"Track ID"`
	PersistentID string    `plist:"Persistent ID"`
	Name         string    `plist:"Name"`
	Artist       string    `plist:"Artist"`
	AlbumArtist  string    `plist:"Album Artist"`
	Album        string    `plist:"Album"`
	Kind         string    `plist:"Kind"`
	DiscNumber   int       `plist:"Disc Number"`
	TrackNumber  int       `plist:"Track Number"`
	TotalTime    int64     `plist:"Total Time"` // milliseconds
	Size         int64     `plist:"Size"`
	DateModified time.Time `plist:"Date Modified"`
	DateAdded    time.Time `plist:"Date Added"`
	Location     string    `plist:"Location"`
}

// Playlist is a single entry of the library's Playlists array.
type Playlist struct {
	PlaylistID   int            `plist:"Playlist ID"`
	PersistentID string         `plist:"Playlist Persistent ID"`
	Name         string         `plist:"Name"`
	Master       bool           `plist:"Master"`
	Folder       bool           `plist:"Folder"`
	Items        []PlaylistItem `plist:"Playlist Items"`
}

// PlaylistItem references a track by its catalog id.
type PlaylistItem struct {
	TrackID int `plist:"Track ID"`
}

// HasItems reports whether the playlist carries an item list at all.
// Folder and some smart playlists have none.
func (p *Playlist) HasItems() bool {
	return p.Items != nil
}

// Decode parses an XML or binary property list into a Document.
func Decode(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrCatalogMalformed)
	}

	var doc Document
	if _, err := plist.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogMalformed, err)
	}
	if doc.Tracks == nil {
		return nil, fmt.Errorf("%w: no Tracks dictionary", ErrCatalogMalformed)
	}

	doc.buildIndex()
	return &doc, nil
}

func (d *Document) buildIndex() {
	d.index = make(map[int]*Track, len(d.Tracks))
	for key, track := range d.Tracks {
		if track == nil {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || id == 0 {
			id = track.TrackID
		}
		d.index[id] = track
	}
}

// Track looks a track up by its catalog id.
func (d *Document) Track(id int) (*Track, bool) {
	if d.index == nil {
		d.buildIndex()
	}
	track, ok := d.index[id]
	return track, ok
}

// DecodeLocation turns a track Location URI into a local filesystem path.
// Both file://localhost/path and file:///path are accepted. Percent escapes are decoded;
// malformed escapes leave the path as written. Windows drive paths (/C:/...) lose their
// leading slash. Any other scheme, a remote host (file://server/share/...) or an empty
// location reports false.
func DecodeLocation(location string) (string, bool) {
	const scheme = "file://"

	if len(location) < len(scheme) || !strings.EqualFold(location[:len(scheme)], scheme) {
		return "", false
	}

	raw := location[len(scheme):]
	if len(raw) >= len("localhost") && strings.EqualFold(raw[:len("localhost")], "localhost") {
		raw = raw[len("localhost"):]
	}
	// Anything left before the first slash names a remote host.
	if !strings.HasPrefix(raw, "/") || raw == "/" {
		return "", false
	}

	path, err := url.PathUnescape(raw)
	if err != nil {
		path = raw
	}

	if len(path) >= 4 && path[0] == '/' && path[2] == ':' && path[3] == '/' && isDriveLetter(path[1]) {
		path = path[1:]
	}

	return path, true
}

func isDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
