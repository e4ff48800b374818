package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lyrebird-studio/lyrebird/pkg/cli"
	"github.com/lyrebird-studio/lyrebird/pkg/voice"
)

var (
	voicesSearch string
	voicesOutput string
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the local voice profiles",
	Long: `List the voice profiles stored in the voices directory.

Only local recordings and uploads are shown; engine preset voices are
served by a running engine and require 'lyrebird serve'.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := cli.ParseFormat(voicesOutput)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		reg := voice.NewRegistry(cfg.Voices.Dir, nil)
		if err := reg.Scan(); err != nil {
			return err
		}
		profiles, err := reg.List(cmd.Context(), voicesSearch)
		if err != nil {
			return err
		}
		return cli.Write(os.Stdout, format, profiles)
	},
}

func init() {
	voicesCmd.Flags().StringVarP(&voicesSearch, "search", "s", "", "filter by name substring")
	voicesCmd.Flags().StringVarP(&voicesOutput, "output", "o", "yaml", "output format (yaml, json)")
	rootCmd.AddCommand(voicesCmd)
}
