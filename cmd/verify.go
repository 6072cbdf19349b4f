package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"itunes2storage/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verifyFix  bool
	verifyJSON bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the mirror directory against its recorded state",
	Long: `Reports mirror directories that are missing, state entries whose file is gone and files in
the mirror root that no state entry refers to.

With --fix, missing directories are created, untracked files are deleted and entries whose file is
gone are dropped from the state so the next sync copies them again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		startTime := time.Now()

		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		svc := integrity.NewService(a.client, a.cfg.TargetPath, a.cfg.AppPath(), a.cfg.StatePath(), a.logger)

		a.logger.Info("Verifying mirror...", zap.String("target", a.cfg.TargetPath))
		report, err := svc.Verify(ctx)
		if err != nil {
			return fmt.Errorf("verify failed: %w", err)
		}

		if verifyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			printVerifyReport(report, time.Since(startTime))
		}

		if report.Clean() {
			a.logger.Info("Mirror is intact.")
			return nil
		}

		if !verifyFix {
			a.logger.Info("Run with --fix to repair the mirror.")
			return nil
		}

		a.logger.Info("Fixing mirror...")
		if err := svc.Fix(ctx, report); err != nil {
			return fmt.Errorf("failed to fix mirror: %w", err)
		}
		a.logger.Info("Mirror fixed successfully.")
		return nil
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyFix, "fix", false, "Create missing directories, delete untracked files and drop missing entries")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Print the report as JSON")
	RootCmd.AddCommand(verifyCmd)
}

func printVerifyReport(report *integrity.Report, elapsed time.Duration) {
	fmt.Println("\n=== Mirror Integrity ===")
	fmt.Printf("Missing Directories: %d\n", len(report.MissingDirs))
	for _, dir := range report.MissingDirs {
		fmt.Printf("  %s\n", dir)
	}
	if report.StateErr != nil {
		fmt.Printf("State: %v\n", report.StateErr)
	}
	if report.Files != nil {
		fmt.Printf("Missing Files: %d\n", len(report.Files.Missing))
		for _, entry := range report.Files.Missing {
			fmt.Printf("  %s (%s)\n", entry.Path, entry.Title)
		}
		fmt.Printf("Untracked Files: %d\n", len(report.Files.Orphans))
		for _, file := range report.Files.Orphans {
			fmt.Printf("  %s\n", file)
		}
	}
	fmt.Printf("Execution Time: %s\n\n", elapsed.String())
}
