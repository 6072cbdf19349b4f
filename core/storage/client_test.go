package storage_test

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"itunes2storage/core/storage"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("DefaultBackend", func(t *testing.T) {
		client, err := storage.NewClient(storage.Config{})
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		for _, backend := range []string{"s3", "memory"} {
			client, err := storage.NewClient(storage.Config{Backend: backend})
			assert.Error(t, err, backend)
			assert.Nil(t, client, backend)
		}
	})
}

func TestPutAndReadFile(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	client := storage.NewClientWithFs(fs)

	require.NoError(t, client.MakeDir(ctx, "/target/app"))
	require.NoError(t, client.PutFile(ctx, "/target/app/state.json", bytes.NewBufferString(`{"a":1}`)))

	data, err := client.ReadFile(ctx, "/target/app/state.json")
	assert.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	// Overwrite replaces content and leaves no temp files behind
	require.NoError(t, client.PutFile(ctx, "/target/app/state.json", bytes.NewBufferString(`{}`)))
	data, _ = client.ReadFile(ctx, "/target/app/state.json")
	assert.Equal(t, `{}`, string(data))

	files, err := client.ListFiles(ctx, "/target/app", storage.ListOptions{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"/target/app/state.json"}, files)
}

func TestCopyFile(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	client := storage.NewClientWithFs(fs)

	mtime := time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, afero.WriteFile(fs, "/music/song.mp3", []byte("audio"), 0644))
	require.NoError(t, fs.Chtimes("/music/song.mp3", mtime, mtime))

	t.Run("CopiesContentAndTime", func(t *testing.T) {
		err := client.CopyFile(ctx, "/music/song.mp3", "/target/ABC.mp3")
		assert.NoError(t, err)

		data, err := afero.ReadFile(fs, "/target/ABC.mp3")
		assert.NoError(t, err)
		assert.Equal(t, "audio", string(data))

		info, err := client.Stat(ctx, "/target/ABC.mp3")
		assert.NoError(t, err)
		assert.True(t, info.ModTime().Equal(mtime))
	})

	t.Run("MissingSource", func(t *testing.T) {
		err := client.CopyFile(ctx, "/music/missing.mp3", "/target/X.mp3")
		assert.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)

		_, statErr := client.Stat(ctx, "/target/X.mp3")
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("DirectorySource", func(t *testing.T) {
		err := client.CopyFile(ctx, "/music", "/target/dir.mp3")
		assert.Error(t, err)
	})
}

func TestRemoveFile(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	client := storage.NewClientWithFs(fs)

	require.NoError(t, afero.WriteFile(fs, "/target/A.mp3", []byte("x"), 0644))
	assert.NoError(t, client.RemoveFile(ctx, "/target/A.mp3"))

	err := client.RemoveFile(ctx, "/target/A.mp3")
	assert.True(t, os.IsNotExist(err))
}

func TestListFiles(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	client := storage.NewClientWithFs(fs)

	require.NoError(t, afero.WriteFile(fs, "/app/b.m3u", nil, 0644))
	require.NoError(t, afero.WriteFile(fs, "/app/A.M3U", nil, 0644))
	require.NoError(t, afero.WriteFile(fs, "/app/tracks.json", nil, 0644))
	require.NoError(t, fs.MkdirAll("/app/sub.m3u", 0755))

	t.Run("FilterByExtension", func(t *testing.T) {
		files, err := client.ListFiles(ctx, "/app", storage.ListOptions{Extension: ".m3u"})
		assert.NoError(t, err)
		assert.Equal(t, []string{"/app/A.M3U", "/app/b.m3u"}, files)
	})

	t.Run("AllFiles", func(t *testing.T) {
		files, err := client.ListFiles(ctx, "/app", storage.ListOptions{})
		assert.NoError(t, err)
		assert.Len(t, files, 3)
	})

	t.Run("MissingDir", func(t *testing.T) {
		_, err := client.ListFiles(ctx, "/nope", storage.ListOptions{})
		assert.Error(t, err)
	})
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := storage.NewClientWithFs(afero.NewMemMapFs())

	_, err := client.Stat(ctx, "/")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, client.MakeDir(ctx, "/x"), context.Canceled)
	assert.ErrorIs(t, client.CopyFile(ctx, "/a", "/b"), context.Canceled)
}
