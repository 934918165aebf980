package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/bidsync/internal/archive"
)

var extractCmd = &cobra.Command{
	Use:   "extract ARCHIVE",
	Short: "Dump normalized projects from a feed archive as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := archive.ProcessFile(cmd.Context(), args[0], cfg.Ingest.Concurrency)
		if err != nil {
			return eris.Wrap(err, "extract: process archive")
		}

		projects := extractProjects(entries)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(projects); err != nil {
			return eris.Wrap(err, "extract: encode output")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
