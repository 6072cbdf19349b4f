package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"itunes2storage/feature/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the selected playlists into the target directory",
	Long: `Copies new and changed tracks, deletes tracks no longer referenced, persists the mirror
state and regenerates every playlist manifest.

Failed copies and deletions are logged and retried on the next run; the command only fails when
the catalog cannot be read, the target directory is unavailable or the mirror state cannot be written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		runner := pipeline.NewRunner(a.cfg, a.client, a.logger)
		report, err := runner.Run(ctx)
		if err != nil {
			return err
		}

		a.logger.Info("Sync completed",
			zap.String("run_id", report.RunID),
			zap.Int("added", report.Counts.Added),
			zap.Int("updated", report.Counts.Updated),
			zap.Int("removed", report.Counts.Removed),
			zap.Int("unchanged", report.Counts.Unchanged),
			zap.Int("copy_failures", report.CopyFailures),
			zap.Int("delete_failures", report.DeleteFailures),
			zap.Int("playlists", report.PlaylistsWritten),
			zap.Int("playlist_failures", report.PlaylistsFailed),
			zap.Duration("duration", report.Duration),
		)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(syncCmd)
}
