package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lyrebird-studio/lyrebird/pkg/cli"
	"github.com/lyrebird-studio/lyrebird/pkg/library"
	"github.com/lyrebird-studio/lyrebird/pkg/storage"
)

var librarySearch string

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List generated audio artifacts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Storage.Backend != "local" {
			return fmt.Errorf("library listing requires local storage, got %q", cfg.Storage.Backend)
		}
		store, err := storage.NewLocal(cfg.Storage.Dir)
		if err != nil {
			return err
		}
		entries, err := library.New(store).List(cmd.Context(), librarySearch)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FILENAME\tVOICE\tDURATION\tSIZE\tCREATED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.Filename,
				e.VoiceName,
				cli.Duration(time.Duration(e.Duration*float64(time.Second))),
				cli.Bytes(e.Size),
				e.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	libraryCmd.Flags().StringVarP(&librarySearch, "search", "s", "", "filter by filename or text")
	rootCmd.AddCommand(libraryCmd)
}
