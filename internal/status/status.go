// Package status renders a summary of the library, sources, targets and
// link health. Every call rescans the filesystem.
package status

import (
	"fmt"
	"io"

	"github.com/jywlabs/skync/internal/config"
	"github.com/jywlabs/skync/internal/discover"
	"github.com/jywlabs/skync/internal/health"
	"github.com/jywlabs/skync/internal/ui"
)

// Show writes the status report for cfg to w.
func Show(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "%s %s\n", ui.StyleBold.Render("Library:"), cfg.LibraryDir)
	count := health.CountEntries(cfg.LibraryDir)
	fmt.Fprintf(w, "  %s skills consolidated\n", ui.StyleCount.Render(fmt.Sprint(count)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, ui.StyleBold.Render("Sources:"))
	if len(cfg.Sources) == 0 {
		fmt.Fprintln(w, "  (none configured)")
	}
	for _, src := range cfg.Sources {
		// A failed scan counts as zero.
		skills, _ := discover.Scan(cfg, src)
		fmt.Fprintf(w, "  %s %s skills\n",
			ui.PadRight(ui.StyleMuted.Render(src.Path), 40),
			ui.StyleCount.Render(fmt.Sprint(len(skills))))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, ui.StyleBold.Render("Targets:"))
	if len(cfg.Targets) == 0 {
		fmt.Fprintln(w, "  (none configured)")
	}
	for _, t := range cfg.Targets {
		state := ui.StyleDisabled.Render("disabled")
		if t.Enabled {
			state = ui.StyleEnabled.Render("enabled")
		}
		line := fmt.Sprintf("  %s %s", ui.PadRight(ui.StyleBold.Render(t.Name), 20), state)
		if t.Enabled {
			if broken := health.CountBrokenLinks(t.Path); broken > 0 {
				line += " " + ui.StyleWarning.Render(fmt.Sprintf("(%d broken)", broken))
			}
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	broken := health.CountBrokenLinks(cfg.LibraryDir)
	if broken == 0 {
		fmt.Fprintf(w, "%s %s\n", ui.StyleBold.Render("Health:"), ui.StyleSuccess.Render("All good"))
	} else {
		fmt.Fprintf(w, "%s %s\n", ui.StyleBold.Render("Health:"),
			ui.StyleError.Render(fmt.Sprintf("%d broken symlinks", broken)))
	}
}
