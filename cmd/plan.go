package cmd

import (
	"encoding/json"
	"os"

	"itunes2storage/feature/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var planJSON bool

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what a sync would copy and delete",
	Long: `Loads the catalog and the mirror state and reports the copies, updates and deletions a sync
would perform. Nothing is written.

Examples:
  # Summary and a sample of actions
  itunes2storage plan

  # Full plan as JSON
  itunes2storage plan --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		runner := pipeline.NewRunner(a.cfg, a.client, a.logger)
		report, err := runner.Plan(cmd.Context())
		if err != nil {
			return err
		}

		if planJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printPlan(a.logger, report)
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the full plan as JSON")
	RootCmd.AddCommand(planCmd)
}

// printPlan prints a plan summary using logger.
func printPlan(l *zap.Logger, report *pipeline.Report) {
	c := report.Counts

	l.Info("Sync plan",
		zap.String("catalog_version", report.CatalogVersion),
		zap.Int("playlists", report.Playlists),
		zap.Int("tracks", report.Tracks),
		zap.Int("added", c.Added),
		zap.Int("updated", c.Updated),
		zap.Int("removed", c.Removed),
		zap.Int("unchanged", c.Unchanged),
	)

	if report.Mirror == nil {
		return
	}

	// Show sample of actions (max 5 of each for logger)
	const maxShow = 5
	for i, op := range report.Mirror.ToCopy {
		if i == maxShow {
			l.Info("Additional copies not shown", zap.Int("count", len(report.Mirror.ToCopy)-maxShow))
			break
		}
		l.Info("Copy", zap.String("pid", op.PID), zap.String("src", op.Src), zap.String("dest", op.Dest))
	}
	for i, dest := range report.Mirror.ToDelete {
		if i == maxShow {
			l.Info("Additional deletions not shown", zap.Int("count", len(report.Mirror.ToDelete)-maxShow))
			break
		}
		l.Info("Delete", zap.String("dest", dest))
	}
}
