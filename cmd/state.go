package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"itunes2storage/feature/mirror"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var stateJSON bool

// stateCmd represents the state command
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the recorded mirror state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		file := a.cfg.StatePath()
		state, err := mirror.LoadState(cmd.Context(), a.client, file)
		if err != nil {
			a.logger.Warn("Mirror state unreadable", zap.String("file", file), zap.Error(err))
		}

		if stateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		}

		var seconds int
		for _, pid := range state.PIDs() {
			entry := state[pid]
			seconds += entry.Time
			fmt.Printf("%s  %-40s  %s\n", entry.PID, entry.Title, entry.Path)
		}
		fmt.Printf("\nState file: %s\n", file)
		fmt.Printf("Tracks: %d\n", len(state))
		fmt.Printf("Total duration: %dh%02dm\n", seconds/3600, seconds%3600/60)
		return nil
	},
}

func init() {
	stateCmd.Flags().BoolVar(&stateJSON, "json", false, "Print the state as JSON")
	RootCmd.AddCommand(stateCmd)
}
