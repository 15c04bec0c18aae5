package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jywlabs/skync/internal/config"
	"github.com/jywlabs/skync/internal/health"
	"github.com/jywlabs/skync/internal/ui"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report broken links in the library and targets",
	Long: `Check the library and every enabled target for links whose referent
no longer exists.

Exits non-zero when a broken link is found. Run 'skync sync' to repair.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return runCheckFn(cfg, os.Stdout)
}

func runCheckFn(cfg *config.Config, w io.Writer) error {
	total := checkDir(w, "library", cfg.LibraryDir)
	for _, t := range cfg.EnabledTargets() {
		total += checkDir(w, t.Name, t.Path)
	}

	fmt.Fprintln(w)
	if total == 0 {
		fmt.Fprintln(w, ui.StyleSuccess.Render("✓ No broken links"))
		return nil
	}
	fmt.Fprintf(w, "Run 'skync sync' to remove broken links.\n")
	return fmt.Errorf("%d broken link(s) found", total)
}

func checkDir(w io.Writer, label, dir string) int {
	broken := health.BrokenLinks(dir)
	if len(broken) == 0 {
		fmt.Fprintf(w, "%s %s (%s)\n", ui.StyleSuccess.Render("✓"), label, dir)
		return 0
	}
	fmt.Fprintf(w, "%s %s (%s): %d broken: %s\n", ui.StyleError.Render("✗"), label, dir, len(broken), strings.Join(broken, ", "))
	return len(broken)
}
