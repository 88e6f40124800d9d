package cmd

import (
	"github.com/spf13/cobra"

	"wildwise/storage"
)

var historyFormat string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the saved conversation",
	Long: `Print the saved conversation to stdout.

Formats:
  markdown - Readable transcript (default)
  json     - Message array as stored
  yaml     - Message array in YAML

Examples:
  wildwise history
  wildwise history --format json > conversation.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := storage.ParseFormat(historyFormat)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openSession(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer s.close()

		return storage.Export(cmd.OutOrStdout(), s.store.History(), format)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "markdown", "Output format: markdown, json, yaml")
}
