package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"itunes2storage/feature/pipeline"

	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync now and again whenever the iTunes library changes",
	Long: `Runs a sync, then watches the library file and syncs again once it has been quiet for
the debounce period. Stops on interrupt.`,
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
		runner.Debounce = watchDebounce
		return runner.Watch(ctx)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "Quiet period after a library change before syncing")
	RootCmd.AddCommand(watchCmd)
}
