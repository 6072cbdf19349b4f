package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"itunes2storage/core/config"
	"itunes2storage/core/logger"
	"itunes2storage/core/storage"
	"itunes2storage/core/telemetry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X itunes2storage/cmd.Version=...".
var Version = "dev"

var configPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "itunes2storage",
	Short: "Mirror iTunes playlists into a directory",
	Long: `itunes2storage copies the tracks of selected iTunes playlists into a target directory
(a USB stick, a car stereo card, a NAS share) and writes an M3U manifest for each playlist.

Playlists are selected by name: every playlist containing "<playlistPrefix>_" is mirrored.
Re-running only copies what changed and removes what is no longer referenced.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format and debug level give readable timestamps for a CLI
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".",
		"settings directory (reads settings.json and .env) or settings file")
}

// app bundles what every command needs.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	client   storage.Client
	shutdown func(context.Context) error
}

// setup loads and validates the configuration, then builds the logger, storage client and tracer.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	shutdown, err := telemetry.Init(ctx, cfg.Trace, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	return &app{cfg: cfg, logger: l, client: client, shutdown: shutdown}, nil
}

// close flushes spans and logs.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("Failed to flush traces", zap.Error(err))
	}
	_ = a.logger.Sync()
}
