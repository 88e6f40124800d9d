package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"wildwise/storage"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export the saved conversation to a file",
	Long: `Export the saved conversation to a file.

The format follows the file extension (.json, .yaml/.yml, .md). Without a
path the conversation is written to ~/Downloads in the --format format.

Examples:
  wildwise export ~/notes/wildwise.md
  wildwise export --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			format, err := storage.ParseFormat(exportFormat)
			if err != nil {
				return err
			}
			path = storage.GenerateExportPath(cfg.Storage.SessionID, format)
		}

		s, err := openSession(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer s.close()

		history := s.store.History()
		if err := storage.ExportToFile(path, history); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d messages to %s\n", len(history), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Format when no path is given: json, yaml, markdown")
}
