package catalog_test

import (
	"context"
	"os"
	"testing"
	"time"

	"itunes2storage/core/storage"
	"itunes2storage/core/storage/mocks"
	"itunes2storage/feature/catalog"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const libraryXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple Computer//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Major Version</key><integer>1</integer>
	<key>Minor Version</key><integer>1</integer>
	<key>Application Version</key><string>12.9.5.5</string>
	<key>Music Folder</key><string>file:///Users/me/Music/iTunes/iTunes%20Media/</string>
	<key>Tracks</key>
	<dict>
		<key>101</key>
		<dict>
			<key>Track ID</key><integer>101</integer>
			<key>Name</key><string>Song One</string>
			<key>Artist</key><string>Band</string>
			<key>Album</key><string>Record</string>
			<key>Disc Number</key><integer>1</integer>
			<key>Track Number</key><integer>3</integer>
			<key>Total Time</key><integer>215001</integer>
			<key>Date Modified</key><date>2020-05-01T10:00:00Z</date>
			<key>Persistent ID</key><string>AAAA000000000001</string>
			<key>Location</key><string>file:///Users/me/Music/Band/Record/03%20Song%20One.mp3</string>
		</dict>
		<key>102</key>
		<dict>
			<key>Track ID</key><integer>102</integer>
			<key>Name</key><string>Song Two</string>
			<key>Persistent ID</key><string>AAAA000000000002</string>
			<key>Location</key><string>file://localhost/Users/me/Music/Two.m4a</string>
		</dict>
	</dict>
	<key>Playlists</key>
	<array>
		<dict>
			<key>Name</key><string>Library</string>
			<key>Master</key><true/>
			<key>Playlist ID</key><integer>1</integer>
			<key>Playlist Persistent ID</key><string>PL00000000000001</string>
			<key>Playlist Items</key>
			<array>
				<dict><key>Track ID</key><integer>101</integer></dict>
				<dict><key>Track ID</key><integer>102</integer></dict>
			</array>
		</dict>
		<dict>
			<key>Name</key><string>Sync_Road Trip</string>
			<key>Playlist ID</key><integer>2</integer>
			<key>Playlist Persistent ID</key><string>PL00000000000002</string>
			<key>Playlist Items</key>
			<array>
				<dict><key>Track ID</key><integer>102</integer></dict>
			</array>
		</dict>
		<dict>
			<key>Name</key><string>Sync_Folder</string>
			<key>Folder</key><true/>
			<key>Playlist ID</key><integer>3</integer>
		</dict>
	</array>
</dict>
</plist>
`

func TestDecode(t *testing.T) {
	doc, err := catalog.Decode([]byte(libraryXML))
	require.NoError(t, err)

	assert.Equal(t, "12.9.5.5", doc.ApplicationVersion)
	assert.Len(t, doc.Tracks, 2)
	require.Len(t, doc.Playlists, 3)

	track, ok := doc.Track(101)
	require.True(t, ok)
	assert.Equal(t, "AAAA000000000001", track.PersistentID)
	assert.Equal(t, "Band", track.Artist)
	assert.Equal(t, 3, track.TrackNumber)
	assert.Equal(t, int64(215001), track.TotalTime)
	assert.True(t, track.DateModified.Equal(time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)))

	_, ok = doc.Track(999)
	assert.False(t, ok)

	assert.True(t, doc.Playlists[0].Master)
	assert.Equal(t, "PL00000000000002", doc.Playlists[1].PersistentID)
	assert.Equal(t, []catalog.PlaylistItem{{TrackID: 102}}, doc.Playlists[1].Items)
	assert.False(t, doc.Playlists[2].HasItems())
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Empty", ""},
		{"NotPlist", "hello world"},
		{"ArrayRoot", `<?xml version="1.0"?><plist version="1.0"><array><string>x</string></array></plist>`},
		{"NoTracks", `<?xml version="1.0"?><plist version="1.0"><dict><key>Application Version</key><string>1</string></dict></plist>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := catalog.Decode([]byte(tt.data))
			assert.ErrorIs(t, err, catalog.ErrCatalogMalformed)
			assert.Nil(t, doc)
		})
	}
}

func TestDecode_EmptyPlaylistsOptional(t *testing.T) {
	doc, err := catalog.Decode([]byte(`<?xml version="1.0"?><plist version="1.0"><dict><key>Tracks</key><dict/></dict></plist>`))
	require.NoError(t, err)
	assert.Empty(t, doc.Tracks)
	assert.Empty(t, doc.Playlists)
}

func TestDocument_TrackWithoutDecode(t *testing.T) {
	doc := &catalog.Document{Tracks: map[string]*catalog.Track{
		"7":   {TrackID: 7, PersistentID: "P7"},
		"abc": {TrackID: 8, PersistentID: "P8"},
	}}

	track, ok := doc.Track(7)
	require.True(t, ok)
	assert.Equal(t, "P7", track.PersistentID)

	track, ok = doc.Track(8)
	require.True(t, ok)
	assert.Equal(t, "P8", track.PersistentID)
}

func TestDecode_TrackIndex(t *testing.T) {
	data := `<?xml version="1.0"?><plist version="1.0"><dict>
	<key>Tracks</key>
	<dict>
		<key> 7 </key><dict><key>Track ID</key><integer>7</integer><key>Name</key><string>Padded</string></dict>
		<key>odd</key><dict><key>Track ID</key><integer>9</integer><key>Name</key><string>Named</string></dict>
	</dict>
	</dict></plist>`

	doc, err := catalog.Decode([]byte(data))
	require.NoError(t, err)

	track, ok := doc.Track(7)
	require.True(t, ok)
	assert.Equal(t, "Padded", track.Name)

	// A key that is not a number falls back to the track's own id
	track, ok = doc.Track(9)
	require.True(t, ok)
	assert.Equal(t, "Named", track.Name)
}

func TestDecodeLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
		ok       bool
	}{
		{"TripleSlash", "file:///Users/me/Music/a.mp3", "/Users/me/Music/a.mp3", true},
		{"Localhost", "file://localhost/Users/me/Music/a.mp3", "/Users/me/Music/a.mp3", true},
		{"PercentEncoded", "file:///Users/me/My%20Music/Caf%C3%A9.m4a", "/Users/me/My Music/Café.m4a", true},
		{"BadEscape", "file:///Users/me/100%.mp3", "/Users/me/100%.mp3", true},
		{"WindowsDrive", "file://localhost/C:/Users/me/Music/a.mp3", "C:/Users/me/Music/a.mp3", true},
		{"UpperScheme", "FILE:///a.mp3", "/a.mp3", true},
		{"HTTP", "http://example.com/a.mp3", "", false},
		{"Empty", "", "", false},
		{"SchemeOnly", "file://", "", false},
		{"RemoteHost", "file://server/share/x.mp3", "", false},
		{"LocalhostLookalike", "file://localhostname/x.mp3", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := catalog.DecodeLocation(tt.location)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/lib.xml", []byte(libraryXML), 0644))

		doc, err := catalog.Load(ctx, storage.NewClientWithFs(fs), "/lib.xml")
		require.NoError(t, err)
		assert.Len(t, doc.Tracks, 2)
	})

	t.Run("Unreadable", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ReadFile", mock.Anything, "/lib.xml").Return(nil, os.ErrPermission)

		_, err := catalog.Load(ctx, client, "/lib.xml")
		assert.ErrorIs(t, err, catalog.ErrCatalogUnreadable)
		client.AssertExpectations(t)
	})

	t.Run("Malformed", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ReadFile", mock.Anything, "/lib.xml").Return([]byte("garbage"), nil)

		_, err := catalog.Load(ctx, client, "/lib.xml")
		assert.ErrorIs(t, err, catalog.ErrCatalogMalformed)
	})
}

func TestLoader_Cache(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/lib.xml", []byte(libraryXML), 0644))
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, fs.Chtimes("/lib.xml", t1, t1))

	loader := catalog.NewLoader(storage.NewClientWithFs(fs))

	first, err := loader.Load(ctx, "/lib.xml")
	require.NoError(t, err)

	second, err := loader.Load(ctx, "/lib.xml")
	require.NoError(t, err)
	assert.Same(t, first, second)

	// A newer file is decoded again
	t2 := t1.Add(time.Hour)
	require.NoError(t, fs.Chtimes("/lib.xml", t2, t2))
	third, err := loader.Load(ctx, "/lib.xml")
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	loader.Invalidate("/lib.xml")
	fourth, err := loader.Load(ctx, "/lib.xml")
	require.NoError(t, err)
	assert.NotSame(t, third, fourth)

	_, err = loader.Load(ctx, "/missing.xml")
	assert.ErrorIs(t, err, catalog.ErrCatalogUnreadable)
}
