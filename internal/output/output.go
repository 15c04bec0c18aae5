package output

import (
	"fmt"
	"io"

	"github.com/jywlabs/skync/internal/library"
	"github.com/jywlabs/skync/internal/linkset"
	"github.com/jywlabs/skync/internal/ui"
)

// Printer handles formatted sync output for the CLI.
type Printer struct {
	w io.Writer
}

// New creates a new Printer that writes to the given writer.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// SkillCount prints the number of skills chosen for the library.
// Format: "Found N skills"
func (p *Printer) SkillCount(count int) {
	if count == 1 {
		fmt.Fprintf(p.w, "Found 1 skill\n")
	} else {
		fmt.Fprintf(p.w, "Found %d skills\n", count)
	}
}

// Collision prints a skill that lost its name to an earlier source.
// Format: "! name: using <winner source>, ignoring <loser path>"
func (p *Printer) Collision(c library.Collision) {
	fmt.Fprintf(p.w, "%s %s: using %s, ignoring %s\n", ui.StyleWarning.Render("!"), c.Name, c.Winner.SourceName, c.Loser.Path)
}

// Destination prints the outcome of reconciling one directory.
// Format: "<label> (<dir>): N created, N replaced, N removed, N unchanged"
func (p *Printer) Destination(label string, r *linkset.Result) {
	verb := ""
	if r.DryRun {
		verb = "would be "
	}
	fmt.Fprintf(p.w, "%s (%s): %d %screated, %d %sreplaced, %d %sremoved, %d unchanged\n",
		label, r.Dir,
		len(r.Created), verb,
		len(r.Replaced), verb,
		len(r.Removed), verb,
		len(r.Unchanged))

	for _, name := range r.Conflicts {
		fmt.Fprintf(p.w, "  %s %s exists and is not a link, skipped\n", ui.StyleWarning.Render("!"), name)
	}
	for _, f := range r.Failures {
		fmt.Fprintf(p.w, "  %s %s\n", ui.StyleError.Render("✗"), f.Error())
	}
}

// Summary prints the final line of a sync.
func (p *Printer) Summary(report *library.SyncReport) {
	changes := report.Library.Changes()
	failures := len(report.Library.Failures)
	for _, t := range report.Targets {
		changes += t.Result.Changes()
		failures += len(t.Result.Failures)
	}

	switch {
	case failures > 0:
		fmt.Fprintln(p.w, ui.StyleError.Render(fmt.Sprintf("✗ Sync finished with %d failed link(s)", failures)))
	case report.Library.DryRun:
		fmt.Fprintln(p.w, ui.StyleWarning.Render(fmt.Sprintf("Dry run: %d change(s) pending.", changes))+" Run without --dry-run to apply.")
	case changes == 0:
		fmt.Fprintln(p.w, ui.StyleSuccess.Render("✓ Already in sync"))
	default:
		fmt.Fprintln(p.w, ui.StyleSuccess.Render(fmt.Sprintf("✓ Synced (%d change(s))", changes)))
	}
}

// Report prints a full sync report.
func (p *Printer) Report(report *library.SyncReport) {
	p.SkillCount(len(report.Resolution.Skills))
	for _, c := range report.Resolution.Collisions {
		p.Collision(c)
	}
	p.Destination("library", report.Library)
	for _, t := range report.Targets {
		p.Destination(t.Target.Name, t.Result)
	}
	p.Summary(report)
}
