package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultDirPermissions is the mode used for directories created by the client.
const DefaultDirPermissions = 0755

// ListOptions filters the result of ListFiles.
type ListOptions struct {
	// Extension keeps only files with this extension (case-insensitive, e.g. ".m3u").
	// Empty keeps every regular file.
	Extension string
}

// Client defines the interface for storage operations.
type Client interface {
	// Stat returns file information for a path.
	Stat(ctx context.Context, name string) (fs.FileInfo, error)
	// MakeDir creates a directory along with any missing parents.
	MakeDir(ctx context.Context, name string) error
	// ReadFile reads a whole file.
	ReadFile(ctx context.Context, name string) ([]byte, error)
	// PutFile writes the reader's content to name through a temporary file and a rename.
	PutFile(ctx context.Context, name string, reader io.Reader) error
	// CopyFile copies src to dst, keeping the modification time of src.
	CopyFile(ctx context.Context, src, dst string) error
	// RemoveFile deletes a single file.
	RemoveFile(ctx context.Context, name string) error
	// ListFiles lists the regular files directly inside dir, sorted by name.
	// Returned paths are joined with dir.
	ListFiles(ctx context.Context, dir string, opts ListOptions) ([]string, error)
}

// NewClient creates a new filesystem client based on the configuration.
func NewClient(cfg Config) (Client, error) {
	if !cfg.IsValidBackend() {
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}

	return &fsClient{fs: afero.NewOsFs(), syncWrites: cfg.SyncWrites}, nil
}

// NewClientWithFs creates a client on top of an existing afero filesystem.
func NewClientWithFs(backend afero.Fs) Client {
	return &fsClient{fs: backend}
}

type fsClient struct {
	fs         afero.Fs
	syncWrites bool
}

func (c *fsClient) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.fs.Stat(name)
}

func (c *fsClient) MakeDir(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.fs.MkdirAll(name, DefaultDirPermissions)
}

func (c *fsClient) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return afero.ReadFile(c.fs, name)
}

func (c *fsClient) PutFile(ctx context.Context, name string, reader io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.writeAtomic(name, reader)
	return err
}

func (c *fsClient) CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := c.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("source %s is a directory", src)
	}

	if err := c.fs.MkdirAll(filepath.Dir(dst), DefaultDirPermissions); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	tmp, err := c.writeAtomic(dst, in)
	if err != nil {
		return err
	}

	// Players and later runs compare mtimes; keep the catalog file's.
	if err := c.fs.Chtimes(tmp, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time: %w", err)
	}
	return nil
}

func (c *fsClient) RemoveFile(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.fs.Remove(name)
}

func (c *fsClient) ListFiles(ctx context.Context, dir string, opts ListOptions) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if opts.Extension != "" && !strings.EqualFold(filepath.Ext(entry.Name()), opts.Extension) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// writeAtomic streams reader into a temporary sibling of name and renames it over name.
// It returns the final path.
func (c *fsClient) writeAtomic(name string, reader io.Reader) (string, error) {
	dir, base := filepath.Split(name)
	if dir == "" {
		dir = "."
	}

	tmp, err := afero.TempFile(c.fs, dir, "."+base+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) (string, error) {
		tmp.Close()
		_ = c.fs.Remove(tmpName)
		return "", cause
	}

	if _, err := io.Copy(tmp, reader); err != nil {
		return cleanup(fmt.Errorf("failed to write %s: %w", name, err))
	}
	if c.syncWrites {
		if err := tmp.Sync(); err != nil {
			return cleanup(fmt.Errorf("failed to sync %s: %w", name, err))
		}
	}
	if err := tmp.Close(); err != nil {
		_ = c.fs.Remove(tmpName)
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := c.fs.Rename(tmpName, name); err != nil {
		_ = c.fs.Remove(tmpName)
		return "", fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return name, nil
}
