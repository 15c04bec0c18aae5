package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jywlabs/skync/internal/config"
	"github.com/jywlabs/skync/internal/library"
	"github.com/jywlabs/skync/internal/linkset"
	"github.com/jywlabs/skync/internal/logger"
	"github.com/jywlabs/skync/internal/output"
	"github.com/jywlabs/skync/internal/ui"
	"github.com/jywlabs/skync/internal/watch"
	"github.com/spf13/cobra"
)

var (
	syncDryRunFlag   bool
	syncWatchFlag    bool
	syncDebounceFlag time.Duration
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Link skills into the library and every enabled target",
	Long: `Discover skills in every source, link each one into library_dir, and
mirror the library into every enabled target.

When two sources contain a skill with the same name, the source listed
first in the config wins. Links that no longer match a skill are removed.
Entries that are not links are never touched.

Use --dry-run to preview changes. Use --watch to re-sync whenever a
source changes.

Examples:
  skync sync
  skync sync --dry-run
  skync sync --watch --debounce 1s`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncDryRunFlag, "dry-run", "n", false, "Preview changes without touching the filesystem")
	syncCmd.Flags().BoolVarP(&syncWatchFlag, "watch", "w", false, "Keep running and re-sync when sources change")
	syncCmd.Flags().DurationVar(&syncDebounceFlag, "debounce", watch.DefaultDebounce, "Quiet period before a re-sync in watch mode")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := library.Options{DryRun: syncDryRunFlag}

	if !syncWatchFlag {
		return runSyncFn(cmd.Context(), cfg, opts, os.Stdout)
	}
	return runSyncWatchFn(cmd.Context(), cfg, opts, syncDebounceFlag, os.Stdout)
}

// runSyncFn runs one sync and prints its report. It returns an error when
// any link failed.
func runSyncFn(ctx context.Context, cfg *config.Config, opts library.Options, w io.Writer) error {
	report, err := library.Sync(ctx, cfg, linkset.OSFS{}, opts)
	if err != nil {
		return err
	}

	output.New(w).Report(report)

	if !report.Failed() {
		return nil
	}
	var merr *multierror.Error
	merr = multierror.Append(merr, report.Library.Err())
	for _, t := range report.Targets {
		merr = multierror.Append(merr, t.Result.Err())
	}
	return fmt.Errorf("sync incomplete: %w", merr.ErrorOrNil())
}

// runSyncWatchFn syncs once, then again after every burst of source changes
// until ctx is cancelled. Failed syncs are reported and do not stop the loop.
func runSyncWatchFn(ctx context.Context, cfg *config.Config, opts library.Options, debounce time.Duration, w io.Writer) error {
	if err := runSyncFn(ctx, cfg, opts, w); err != nil {
		logger.G(ctx).WithError(err).Warn("initial sync incomplete")
	}

	roots := make([]string, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		roots = append(roots, src.Path)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Watching sources for changes... Press Ctrl+C to stop")

	return watch.Run(ctx, roots, debounce, func(ctx context.Context, e watch.Event) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ui.StyleInfo.Render(fmt.Sprintf("Change detected: %s (%s)", e.Path, e.Op)))
		if err := runSyncFn(ctx, cfg, opts, w); err != nil {
			logger.G(ctx).WithError(err).Warn("sync incomplete")
		}
	})
}
