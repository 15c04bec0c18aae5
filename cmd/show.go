package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jywlabs/skync/internal/config"
	"github.com/jywlabs/skync/internal/discover"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a skill's SKILL.md",
	Long: `Print the SKILL.md of the named skill exactly as it is on disk.

Names are case-sensitive. When several sources contain the skill, the one
from the source listed first is shown.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return runShowFn(cfg, args[0], os.Stdout)
}

func runShowFn(cfg *config.Config, name string, w io.Writer) error {
	skills, err := discover.DiscoverAll(cfg)
	if err != nil {
		return err
	}

	s, ok := discover.Find(skills, name)
	if !ok {
		return fmt.Errorf("skill %q not found - run 'skync list' to see available skills", name)
	}

	content, err := discover.ReadMarker(s)
	if err != nil {
		return err
	}
	fmt.Fprint(w, content)
	return nil
}
