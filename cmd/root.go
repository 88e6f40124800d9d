package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose     bool
	dataDir     string
	backendFlag string
	version     = "dev"
	license     = "Apache-2.0"
)

// rootCmd runs the interactive terminal client when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "wildwise",
	Short: "Ask a wildlife research assistant by voice or text",
	Long: `WildWise is a terminal client for a wildlife research assistant.

Type a question or dictate it, and WildWise answers with related research
papers and an image of the animal when one is relevant. The conversation is
saved between runs.

Quick Start:
  wildwise                                   # Start the interactive client
  wildwise ask "Where do snow leopards live?" # One question, printed
  wildwise ask --voice                       # Dictate one question
  wildwise history --format markdown         # Print the saved conversation
  wildwise export ~/wildwise.yaml            # Export the conversation`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd)
	},
}

// SetVersionInfo records the build version shown by --version and the help screen
func SetVersionInfo(v, l string) {
	version = v
	license = l
	rootCmd.Version = fmt.Sprintf("%s (%s)", version, license)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write a debug log to <data dir>/debug.log")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides WILDWISE_DATA_DIR and settings.toml)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Answering backend: wildwise, ollama, openai or anthropic")

	rootCmd.Version = fmt.Sprintf("%s (%s)", version, license)
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
