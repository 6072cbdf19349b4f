package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"itunes2storage/feature/library"
	"itunes2storage/feature/pipeline"

	"github.com/spf13/cobra"
)

var inspectJSON bool

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List the playlists and tracks selected from the library",
	Long: `Loads the iTunes library, applies the playlist prefix and prints the selected playlists with
the tracks each one resolves to. Useful to check the prefix before a first sync.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		runner := pipeline.NewRunner(a.cfg, a.client, a.logger)
		doc, playlists, tracks, err := runner.Extract(cmd.Context())
		if err != nil {
			return err
		}

		if inspectJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Version   string             `json:"version"`
				Playlists []library.Playlist `json:"playlists"`
				Tracks    library.TrackSet   `json:"tracks"`
			}{doc.ApplicationVersion, playlists, tracks})
		}

		fmt.Printf("\n=== Library %s ===\n", doc.ApplicationVersion)
		fmt.Printf("Tracks in library: %d\n", len(doc.Tracks))
		fmt.Printf("Selected playlists: %d\n", len(playlists))
		fmt.Printf("Selected tracks: %d\n\n", len(tracks))

		for _, p := range playlists {
			fmt.Printf("%s (%d entries)\n", p.Name, len(p.Tracks))
			for _, pid := range p.Tracks {
				track, ok := tracks[pid]
				if !ok {
					fmt.Printf("  %s  [no local file]\n", pid)
					continue
				}
				fmt.Printf("  %s  %s -> %s\n", pid, track.DisplayTitle(), track.Destination)
			}
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print playlists and tracks as JSON")
	RootCmd.AddCommand(inspectCmd)
}
