// Package linkset reconciles a directory of symbolic links against a desired
// name -> referent mapping.
//
// Planning is a pure function over a directory listing, so it can be tested
// without a filesystem. Applying a plan records each failed link and keeps
// going; a partial failure is a normal outcome, reported on the Result.
package linkset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Action is a single link change.
type Action struct {
	Name     string
	Target   string // Desired referent
	Previous string // Referent before the change (Replace and Remove only)
}

// Plan is the set of changes that brings a directory to the desired state.
type Plan struct {
	Create    []Action
	Replace   []Action
	Remove    []Action
	Unchanged []string
	Conflicts []string // Desired names occupied by something that is not a link
}

// Changes returns the number of link mutations in the plan.
func (p Plan) Changes() int {
	return len(p.Create) + len(p.Replace) + len(p.Remove)
}

// OwnsFunc reports whether a stale link pointing at target may be removed.
type OwnsFunc func(target string) bool

// ComputePlan compares desired with existing. Link targets in existing must
// already be absolute. A nil owns removes every stale link and replaces every
// link pointing elsewhere; otherwise links not owned are never touched and a
// desired name held by one is a conflict.
func ComputePlan(desired map[string]string, existing []Entry, owns OwnsFunc) Plan {
	var plan Plan

	present := make(map[string]Entry, len(existing))
	for _, e := range existing {
		present[e.Name] = e
	}

	for name, want := range desired {
		want = filepath.Clean(want)
		e, ok := present[name]
		switch {
		case !ok:
			plan.Create = append(plan.Create, Action{Name: name, Target: want})
		case !e.IsLink:
			plan.Conflicts = append(plan.Conflicts, name)
		case filepath.Clean(e.Target) == want:
			plan.Unchanged = append(plan.Unchanged, name)
		case owns != nil && !owns(e.Target):
			plan.Conflicts = append(plan.Conflicts, name)
		default:
			plan.Replace = append(plan.Replace, Action{Name: name, Target: want, Previous: e.Target})
		}
	}

	for _, e := range existing {
		if _, ok := desired[e.Name]; ok || !e.IsLink {
			continue
		}
		if owns != nil && !owns(e.Target) {
			continue
		}
		plan.Remove = append(plan.Remove, Action{Name: e.Name, Previous: e.Target})
	}

	sortActions(plan.Create)
	sortActions(plan.Replace)
	sortActions(plan.Remove)
	sort.Strings(plan.Unchanged)
	sort.Strings(plan.Conflicts)

	return plan
}

func sortActions(actions []Action) {
	sort.Slice(actions, func(i, j int) bool { return actions[i].Name < actions[j].Name })
}

// Failure records one link that could not be reconciled.
type Failure struct {
	Name string
	Op   string // "read", "create", "replace" or "remove"
	Err  error
}

func (f Failure) Error() string {
	if f.Name == "" {
		return fmt.Sprintf("%s: %v", f.Op, f.Err)
	}
	return fmt.Sprintf("%s %s: %v", f.Op, f.Name, f.Err)
}

// Result is the outcome of reconciling one directory.
type Result struct {
	Dir       string
	DryRun    bool
	Created   []Action
	Replaced  []Action
	Removed   []Action
	Unchanged []string
	Conflicts []string
	Failures  []Failure
}

// Changes returns the number of links created, replaced or removed.
func (r *Result) Changes() int {
	return len(r.Created) + len(r.Replaced) + len(r.Removed)
}

// Err returns every failure as one error, or nil.
func (r *Result) Err() error {
	var merr *multierror.Error
	for _, f := range r.Failures {
		merr = multierror.Append(merr, f)
	}
	return merr.ErrorOrNil()
}

func (r *Result) fail(name, op string, err error) {
	r.Failures = append(r.Failures, Failure{Name: name, Op: op, Err: err})
}

// Apply performs plan inside dir. Removals run first, then replacements,
// then creations. In dry-run mode nothing is touched and the result reports
// what would have changed.
func Apply(fsys LinkFS, dir string, plan Plan, dryRun bool) *Result {
	res := &Result{
		Dir:       dir,
		DryRun:    dryRun,
		Unchanged: plan.Unchanged,
		Conflicts: plan.Conflicts,
	}

	if dryRun {
		res.Created = plan.Create
		res.Replaced = plan.Replace
		res.Removed = plan.Remove
		return res
	}

	for _, a := range plan.Remove {
		if err := fsys.Remove(filepath.Join(dir, a.Name)); err != nil && !os.IsNotExist(err) {
			res.fail(a.Name, "remove", err)
			continue
		}
		res.Removed = append(res.Removed, a)
	}

	for _, a := range plan.Replace {
		link := filepath.Join(dir, a.Name)
		if err := fsys.Remove(link); err != nil && !os.IsNotExist(err) {
			res.fail(a.Name, "replace", err)
			continue
		}
		if err := fsys.Symlink(a.Target, link); err != nil {
			res.fail(a.Name, "replace", err)
			continue
		}
		res.Replaced = append(res.Replaced, a)
	}

	if len(plan.Create) > 0 {
		if err := fsys.MkdirAll(dir); err != nil {
			for _, a := range plan.Create {
				res.fail(a.Name, "create", err)
			}
			return res
		}
	}

	for _, a := range plan.Create {
		if err := fsys.Symlink(a.Target, filepath.Join(dir, a.Name)); err != nil {
			res.fail(a.Name, "create", err)
			continue
		}
		res.Created = append(res.Created, a)
	}

	return res
}

// Reconcile reads dir, plans against desired, and applies the plan.
// A missing dir reads as empty and is created when there is something to link.
func Reconcile(fsys LinkFS, dir string, desired map[string]string, owns OwnsFunc, dryRun bool) *Result {
	existing, err := fsys.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		res := &Result{Dir: dir, DryRun: dryRun}
		res.fail("", "read", err)
		return res
	}

	for i := range existing {
		if existing[i].IsLink && existing[i].Target != "" && !filepath.IsAbs(existing[i].Target) {
			existing[i].Target = filepath.Join(dir, existing[i].Target)
		}
	}

	// A skill that already lives at dir/name must not be linked to itself.
	var inPlace []string
	filtered := make(map[string]string, len(desired))
	for name, want := range desired {
		if filepath.Clean(want) == filepath.Join(dir, name) {
			inPlace = append(inPlace, name)
			continue
		}
		filtered[name] = want
	}

	plan := ComputePlan(filtered, existing, owns)
	if len(inPlace) > 0 {
		plan.Unchanged = append(plan.Unchanged, inPlace...)
		sort.Strings(plan.Unchanged)
	}
	return Apply(fsys, dir, plan, dryRun)
}

// Under returns an OwnsFunc accepting referents inside any of roots.
func Under(roots ...string) OwnsFunc {
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		if r != "" {
			cleaned = append(cleaned, filepath.Clean(r))
		}
	}
	return func(target string) bool {
		target = filepath.Clean(target)
		for _, root := range cleaned {
			rel, err := filepath.Rel(root, target)
			if err != nil {
				continue
			}
			if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}
}
