package storage

// Config holds configuration for the storage provider.
type Config struct {
	// Backend selects the filesystem implementation. Only os is supported; in-memory
	// filesystems are built with NewClientWithFs.
	Backend string `mapstructure:"backend" default:"os"`
	// SyncWrites flushes written files to stable storage before they are renamed into place.
	SyncWrites bool `mapstructure:"sync_writes" default:"false"`
}

const BackendOS = "os"

// IsValidBackend checks if the configured backend is supported. Empty means os.
func (c Config) IsValidBackend() bool {
	switch c.Backend {
	case "", BackendOS:
		return true
	default:
		return false
	}
}
