// Package library consolidates discovered skills into the library directory
// and propagates the result into enabled targets.
//
// Name collisions across sources are resolved by source order: the skill
// from the earliest configured source wins and later ones are reported as
// collisions. Every call starts from a fresh discovery pass.
package library

import (
	"context"

	"github.com/jywlabs/skync/internal/config"
	"github.com/jywlabs/skync/internal/discover"
	"github.com/jywlabs/skync/internal/linkset"
	"github.com/jywlabs/skync/internal/logger"
	"github.com/jywlabs/skync/internal/target"
)

// Options control a sync run.
type Options struct {
	DryRun bool
}

// Collision records a skill that lost its name to an earlier source.
type Collision struct {
	Name   string
	Winner discover.Skill
	Loser  discover.Skill
}

// Resolution is the collision-free set of skills chosen for the library.
type Resolution struct {
	Skills     []discover.Skill // Winners, in discovery order
	Collisions []Collision
}

// Resolve folds skills in order, keeping the first skill for each name.
func Resolve(skills []discover.Skill) Resolution {
	var res Resolution
	chosen := make(map[string]discover.Skill, len(skills))

	for _, s := range skills {
		if winner, ok := chosen[s.Name]; ok {
			res.Collisions = append(res.Collisions, Collision{Name: s.Name, Winner: winner, Loser: s})
			continue
		}
		chosen[s.Name] = s
		res.Skills = append(res.Skills, s)
	}

	return res
}

// Desired returns the name -> skill path mapping for reconciliation.
func (r Resolution) Desired() map[string]string {
	desired := make(map[string]string, len(r.Skills))
	for _, s := range r.Skills {
		desired[s.Name] = s.Path
	}
	return desired
}

// TargetReport is the outcome of propagating into one target.
type TargetReport struct {
	Target config.Target
	Result *linkset.Result
}

// SyncReport is the outcome of one consolidation and propagation run.
type SyncReport struct {
	Resolution Resolution
	Library    *linkset.Result
	Targets    []TargetReport
}

// Failed reports whether any link failed anywhere in the run.
func (r *SyncReport) Failed() bool {
	if r.Library != nil && len(r.Library.Failures) > 0 {
		return true
	}
	for _, t := range r.Targets {
		if len(t.Result.Failures) > 0 {
			return true
		}
	}
	return false
}

// Discover runs a fresh discovery pass and resolves collisions.
func Discover(ctx context.Context, cfg *config.Config) (Resolution, error) {
	skills, err := discover.DiscoverAll(cfg)
	if err != nil {
		return Resolution{}, err
	}

	res := Resolve(skills)
	for _, c := range res.Collisions {
		logger.G(ctx).WithFields(map[string]interface{}{
			"skill":  c.Name,
			"winner": c.Winner.SourceName,
			"loser":  c.Loser.SourceName,
		}).Warn("skill name collision, keeping the earlier source")
	}
	return res, nil
}

// Consolidate makes library_dir hold exactly one link per resolved skill.
// Every stale link in the library is removed; non-link entries are reported
// as conflicts and left alone.
func Consolidate(ctx context.Context, cfg *config.Config, res Resolution, fsys linkset.LinkFS, opts Options) *linkset.Result {
	result := linkset.Reconcile(fsys, cfg.LibraryDir, res.Desired(), nil, opts.DryRun)
	logResult(ctx, "library", result)
	return result
}

// Propagate mirrors the resolved skills into every enabled target.
// Disabled targets are skipped without touching their directory. Stale links
// are only removed when they point into a source or the library, so links
// the user placed in a target directory survive.
func Propagate(ctx context.Context, cfg *config.Config, res Resolution, fsys linkset.LinkFS, opts Options) []TargetReport {
	roots := []string{cfg.LibraryDir}
	for _, src := range cfg.Sources {
		roots = append(roots, src.Path)
	}
	owns := linkset.Under(roots...)
	desired := res.Desired()

	var reports []TargetReport
	for _, t := range cfg.Targets {
		if !t.Enabled {
			logger.G(ctx).WithField("target", t.Name).Debug("target disabled, skipping")
			continue
		}

		filter, err := target.NewFilter(t.Include, t.Exclude)
		if err != nil {
			// Validate rejects bad patterns; a hand-built config can still get here.
			result := &linkset.Result{Dir: t.Path, DryRun: opts.DryRun}
			result.Failures = append(result.Failures, linkset.Failure{Op: "filter", Err: err})
			reports = append(reports, TargetReport{Target: t, Result: result})
			continue
		}

		result := linkset.Reconcile(fsys, t.Path, filter.Apply(desired), owns, opts.DryRun)
		logResult(ctx, t.Name, result)
		reports = append(reports, TargetReport{Target: t, Result: result})
	}

	return reports
}

// Sync runs one discovery pass, consolidates the library, and propagates
// the same resolution into enabled targets.
func Sync(ctx context.Context, cfg *config.Config, fsys linkset.LinkFS, opts Options) (*SyncReport, error) {
	res, err := Discover(ctx, cfg)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{Resolution: res}
	report.Library = Consolidate(ctx, cfg, res, fsys, opts)
	report.Targets = Propagate(ctx, cfg, res, fsys, opts)
	return report, nil
}

func logResult(ctx context.Context, dest string, r *linkset.Result) {
	log := logger.G(ctx).WithField("dest", dest)
	for _, a := range r.Created {
		log.WithFields(map[string]interface{}{"skill": a.Name, "target": a.Target}).Debug("link created")
	}
	for _, a := range r.Replaced {
		log.WithFields(map[string]interface{}{"skill": a.Name, "target": a.Target, "previous": a.Previous}).Debug("link replaced")
	}
	for _, a := range r.Removed {
		log.WithFields(map[string]interface{}{"skill": a.Name, "previous": a.Previous}).Debug("stale link removed")
	}
	for _, name := range r.Conflicts {
		log.WithField("skill", name).Warn("entry exists and is not a link, leaving it alone")
	}
	for _, f := range r.Failures {
		log.WithError(f.Err).WithFields(map[string]interface{}{"skill": f.Name, "op": f.Op}).Warn("link reconciliation failed")
	}
}
