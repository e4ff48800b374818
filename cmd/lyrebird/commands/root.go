package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lyrebird-studio/lyrebird/pkg/config"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "lyrebird",
	Short: "Multi-voice speech synthesis studio",
	Long: `lyrebird - a multi-voice speech synthesis studio.

It parses a script into speaker and emotion segments, synthesizes each
segment through a neural TTS engine with cloned or preset voices, and
assembles the results into one audio artifact. An LLM writer can draft
and polish dialogue scripts.

Examples:
  # Run the API server with the default configuration
  lyrebird serve

  # Run against a config file
  lyrebird serve -f config.yaml

  # List local voice profiles
  lyrebird voices -f config.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
