package cmd

import (
	"os"

	"github.com/jywlabs/skync/internal/status"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize library, sources, targets and health",
	Long: `Show the library directory and how many skills it holds, the number of
skills in each source, each target and whether it is enabled, and the number
of broken links in the library.

Everything is rescanned on every call.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	status.Show(os.Stdout, cfg)
	return nil
}
