package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"itunes2storage/core/logger"
	"itunes2storage/core/metrics"
	"itunes2storage/core/storage"
	"itunes2storage/core/telemetry"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (e.g. I2S_TARGETPATH, I2S_LOG_LEVEL).
const EnvPrefix = "I2S"

// SettingsFile is the settings file looked up when LoadConfig is given a directory.
const SettingsFile = "settings.json"

// ErrInvalidConfig is returned by Validate when required settings are missing or out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// TargetPath is the mirror root directory tracks are copied into.
	TargetPath string `mapstructure:"targetPath" default:""`
	// ITunesXMLPath is the location of the iTunes library XML file.
	ITunesXMLPath string `mapstructure:"itunesXMLPath" default:""`
	// PlaylistPrefix selects playlists whose name contains "<prefix>_".
	PlaylistPrefix string `mapstructure:"playlistPrefix" default:""`
	// AppDir is the directory under TargetPath holding the state file and manifests.
	AppDir string `mapstructure:"appDir" default:"_itunes2storage"`
	// PlaylistAuthor is written into the header of every manifest.
	PlaylistAuthor string `mapstructure:"playlistAuthor" default:"itunes2storage"`
	// Workers bounds concurrent copy, delete and playlist operations. 1 runs them sequentially.
	Workers int `mapstructure:"workers" default:"1"`

	// Storage holds configuration for the filesystem backend.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Metrics holds configuration for the run metrics textfile.
	Metrics metrics.Config `mapstructure:"metrics"`
	// Trace holds configuration for span export.
	Trace telemetry.Config `mapstructure:"trace"`
}

// AppPath returns the directory holding the mirror state and playlist manifests.
func (c *Config) AppPath() string {
	return filepath.Join(c.TargetPath, c.AppDir)
}

// StatePath returns the location of the persisted mirror state.
func (c *Config) StatePath() string {
	return filepath.Join(c.AppPath(), "tracks.json")
}

// Validate checks that the settings needed for a sync are present.
func (c *Config) Validate() error {
	var missing []string
	if c.TargetPath == "" {
		missing = append(missing, "targetPath")
	}
	if c.ITunesXMLPath == "" {
		missing = append(missing, "itunesXMLPath")
	}
	if c.PlaylistPrefix == "" {
		missing = append(missing, "playlistPrefix")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}

	if c.AppDir == "" || filepath.IsAbs(c.AppDir) || strings.Contains(c.AppDir, "..") {
		return fmt.Errorf("%w: appDir must be a relative directory name, got %q", ErrInvalidConfig, c.AppDir)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if !c.Storage.IsValidBackend() {
		return fmt.Errorf("%w: unsupported storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	if !c.Trace.IsValidExporter() {
		return fmt.Errorf("%w: unsupported trace exporter %q", ErrInvalidConfig, c.Trace.Exporter)
	}
	return nil
}

// LoadConfig loads configuration from a settings file, environment variables and .env file.
// path is either a directory (settings.json inside it is used when present) or a settings file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "."
	}

	dir, settingsPath := path, ""
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir, settingsPath = filepath.Dir(path), path
	} else if candidate := filepath.Join(path, SettingsFile); fileExists(candidate) {
		settingsPath = candidate
	}

	// Ignore error if file doesn't exist
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	if settingsPath != "" {
		v.SetConfigFile(settingsPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings %s: %w", settingsPath, err)
		}
	}

	// Map environment variables to nested keys (e.g. I2S_LOG_LEVEL -> log.level)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
