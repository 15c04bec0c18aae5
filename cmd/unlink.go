package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jywlabs/skync/internal/config"
	"github.com/jywlabs/skync/internal/linkset"
	"github.com/jywlabs/skync/internal/output"
	"github.com/spf13/cobra"
)

var unlinkDryRunFlag bool

var unlinkCmd = &cobra.Command{
	Use:   "unlink <target>",
	Short: "Remove skync links from a target",
	Long: `Remove every link skync created in a target's skill directory.

Only links pointing into a source or the library are removed. Other files
and links in the directory are left alone. The target's enabled setting is
not changed, so disable it in the config first or the next sync will
recreate the links.

Use --dry-run to preview what would be removed without making changes.

This command is idempotent and safe to run multiple times.`,
	Args: cobra.ExactArgs(1),
	RunE: runUnlink,
}

func init() {
	unlinkCmd.Flags().BoolVar(&unlinkDryRunFlag, "dry-run", false, "Preview changes without removing links")
	rootCmd.AddCommand(unlinkCmd)
}

func runUnlink(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return runUnlinkFn(cfg, args[0], unlinkDryRunFlag, os.Stdout)
}

func runUnlinkFn(cfg *config.Config, name string, dryRun bool, w io.Writer) error {
	t, ok := cfg.Target(name)
	if !ok {
		return fmt.Errorf("unknown target %q", name)
	}

	roots := []string{cfg.LibraryDir}
	for _, src := range cfg.Sources {
		roots = append(roots, src.Path)
	}

	result := linkset.Reconcile(linkset.OSFS{}, t.Path, nil, linkset.Under(roots...), dryRun)
	output.New(w).Destination(t.Name, result)

	switch {
	case len(result.Failures) > 0:
		return result.Err()
	case len(result.Removed) == 0:
		fmt.Fprintln(w, "No skync links found.")
	case dryRun:
		fmt.Fprintf(w, "\nWould remove %d link(s). Run without --dry-run to remove.\n", len(result.Removed))
	default:
		fmt.Fprintf(w, "\nRemoved %d link(s).\n", len(result.Removed))
	}

	return nil
}
