// Package storage provides an abstraction layer over the local filesystem.
//
// It wraps an afero filesystem to provide a simplified interface for the operations the
// mirror needs: inspecting paths, creating directories, reading and atomically writing
// files, copying media files and listing directory contents. The same client serves the
// real disk (afero.NewOsFs) and an in-memory filesystem for tests (afero.NewMemMapFs).
//
// # Client Interface
//
// The Client interface abstracts the underlying filesystem, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - Stat: Reports whether a path exists and what it is.
//   - MakeDir: Creates a directory and any missing parents.
//   - ReadFile: Reads a whole file into memory.
//   - PutFile: Writes content through a temporary file and a rename.
//   - CopyFile: Copies a file the same way, preserving the source modification time.
//   - RemoveFile: Deletes a single file.
//   - ListFiles: Lists the regular files of a directory (optionally filtered by extension).
//
// # Usage
//
//	client, err := storage.NewClient(cfg)
//	info, err := client.Stat(ctx, "/Volumes/Player")
package storage
