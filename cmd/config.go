package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		redacted := *cfg
		if redacted.Salesforce.ClientID != "" {
			redacted.Salesforce.ClientID = "<redacted>"
		}
		if redacted.Salesforce.Username != "" {
			redacted.Salesforce.Username = "<redacted>"
		}

		out, err := yaml.Marshal(redacted)
		if err != nil {
			return eris.Wrap(err, "config: marshal")
		}
		if _, err := os.Stdout.Write(out); err != nil {
			return eris.Wrap(err, "config: write")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
