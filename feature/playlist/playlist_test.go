package playlist_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"itunes2storage/core/storage"
	"itunes2storage/core/storage/mocks"
	"itunes2storage/feature/library"
	"itunes2storage/feature/playlist"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	root   = "/target"
	appDir = "/target/_itunes2storage"
)

func testTracks() library.TrackSet {
	return library.TrackSet{
		"P1": {PID: "P1", Name: "One", Album: "Record", Artist: "Band", Duration: 216, Destination: "P1.mp3"},
		"P2": {PID: "P2", Name: "Two", Duration: 0, Destination: "P2.m4a"},
	}
}

func TestEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := playlist.NewEncoder(&buf)
	enc.Comment("hello\nworld")
	enc.Entry("../a.mp3", 5, "Title")
	require.NoError(t, enc.Close())

	assert.Equal(t, "#EXTM3U\n# hello world\n#EXTINF:5,Title\n../a.mp3\n", buf.String())

	var empty bytes.Buffer
	require.NoError(t, playlist.NewEncoder(&empty).Close())
	assert.Equal(t, "#EXTM3U\n", empty.String())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Road Trip.m3u", playlist.FileName("Road Trip"))
	assert.Equal(t, "AC_DC.m3u", playlist.FileName("AC/DC"))
}

func TestEmitter_Render(t *testing.T) {
	emitter := playlist.NewEmitter(nil, zap.NewNop(), playlist.Options{Root: root, Author: "neil"})

	data, entries, skipped, err := emitter.Render(library.Playlist{
		Name:   "A",
		Tracks: []string{"P1", "MISSING", "P2", "P1"},
	}, testTracks(), appDir)
	require.NoError(t, err)

	assert.Equal(t, 3, entries)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "#EXTM3U\n"+
		"# Playlist created by itunes2storage, author: neil\n"+
		"\n"+
		"#EXTINF:216,Record - Band\n../P1.mp3\n"+
		"#EXTINF:0,Two\n../P2.m4a\n"+
		"#EXTINF:216,Record - Band\n../P1.mp3\n", string(data))
}

func TestEmitter_Emit(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(appDir, 0755))
	require.NoError(t, afero.WriteFile(fs, appDir+"/Old Name.m3u", []byte("#EXTM3U\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, appDir+"/tracks.json", []byte("{}"), 0644))
	client := storage.NewClientWithFs(fs)

	emitter := playlist.NewEmitter(client, zap.NewNop(), playlist.Options{Root: root, Workers: 2})

	playlists := []library.Playlist{
		{Name: "A", Tracks: []string{"P1"}},
		{Name: "B", Tracks: []string{"P2", "GONE"}},
	}

	report, err := emitter.Emit(ctx, playlists, testTracks(), appDir)
	require.NoError(t, err)

	assert.Equal(t, []string{appDir + "/Old Name.m3u"}, report.Removed)
	assert.Len(t, report.Written, 2)
	assert.Empty(t, report.Failed)

	exists, _ := afero.Exists(fs, appDir+"/Old Name.m3u")
	assert.False(t, exists)
	exists, _ = afero.Exists(fs, appDir+"/tracks.json")
	assert.True(t, exists)

	a, err := afero.ReadFile(fs, appDir+"/A.m3u")
	require.NoError(t, err)
	assert.Contains(t, string(a), "author: itunes2storage")
	assert.Contains(t, string(a), "../P1.mp3")

	b, err := afero.ReadFile(fs, appDir+"/B.m3u")
	require.NoError(t, err)
	assert.Contains(t, string(b), "../P2.m4a")
	assert.NotContains(t, string(b), "GONE")

	index, err := afero.ReadFile(fs, appDir+"/"+playlist.IndexFile)
	require.NoError(t, err)
	assert.Contains(t, string(index), `"file": "B.m3u"`)
}

func TestEmitter_Collision(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(appDir, 0755))

	emitter := playlist.NewEmitter(storage.NewClientWithFs(fs), zap.NewNop(), playlist.Options{Root: root, Workers: 4})

	report, err := emitter.Emit(ctx, []library.Playlist{
		{Name: "A/B", Tracks: []string{"P1"}},
		{Name: "A_B", Tracks: []string{"P2"}},
	}, testTracks(), appDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"A/B"}, report.Overwritten)
	data, _ := afero.ReadFile(fs, appDir+"/A_B.m3u")
	assert.Contains(t, string(data), "../P2.m4a")
	assert.NotContains(t, string(data), "../P1.mp3")
}

func TestEmitter_FailureDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)

	client.On("ListFiles", mock.Anything, appDir, storage.ListOptions{Extension: ".m3u"}).
		Return(nil, errors.New("listing denied"))
	client.On("PutFile", mock.Anything, appDir+"/A.m3u", mock.Anything).Return(errors.New("disk full"))
	client.On("PutFile", mock.Anything, appDir+"/B.m3u", mock.Anything).Return(nil)
	client.On("PutFile", mock.Anything, appDir+"/C.m3u", mock.Anything).Return(nil)
	client.On("PutFile", mock.Anything, appDir+"/"+playlist.IndexFile, mock.Anything).Return(nil)

	emitter := playlist.NewEmitter(client, zap.NewNop(), playlist.Options{Root: root})

	report, err := emitter.Emit(ctx, []library.Playlist{
		{Name: "A", Tracks: []string{"P1"}},
		{Name: "B", Tracks: []string{"P1"}},
		{Name: "C"},
	}, testTracks(), appDir)

	assert.ErrorIs(t, err, playlist.ErrPlaylistWriteFailed)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "A", report.Failed[0].Name)
	assert.Len(t, report.Written, 2)
	assert.Empty(t, report.Removed)

	client.AssertExpectations(t)
}
