package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jywlabs/skync/internal/config"
	"github.com/jywlabs/skync/internal/discover"
	"github.com/jywlabs/skync/internal/linkset"
)

func writeSkill(t *testing.T, root, name, content string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create skill dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write SKILL.md: %v", err)
	}
	return dir
}

func readLink(t *testing.T, path string) string {
	t.Helper()
	target, err := os.Readlink(path)
	if err != nil {
		t.Fatalf("Readlink(%s): %v", path, err)
	}
	return target
}

func TestResolveFirstWins(t *testing.T) {
	skills := []discover.Skill{
		{Name: "x", SourceName: "a", Path: "/a/x"},
		{Name: "y", SourceName: "a", Path: "/a/y"},
		{Name: "x", SourceName: "b", Path: "/b/x"},
	}

	res := Resolve(skills)
	if len(res.Skills) != 2 {
		t.Fatalf("Skills = %+v, want 2", res.Skills)
	}
	if len(res.Collisions) != 1 {
		t.Fatalf("Collisions = %+v, want 1", res.Collisions)
	}
	c := res.Collisions[0]
	if c.Name != "x" || c.Winner.SourceName != "a" || c.Loser.SourceName != "b" {
		t.Errorf("collision = %+v", c)
	}
	if got := res.Desired()["x"]; got != "/a/x" {
		t.Errorf("Desired()[x] = %q, want /a/x", got)
	}
}

func TestSyncIdempotent(t *testing.T) {
	src := t.TempDir()
	writeSkill(t, src, "foo", "foo")
	writeSkill(t, src, "bar", "bar")
	cfg := &config.Config{
		LibraryDir: filepath.Join(t.TempDir(), "library"),
		Sources:    []config.Source{{Name: "a", Path: src}},
	}
	ctx := context.Background()

	first, err := Sync(ctx, cfg, linkset.OSFS{}, Options{})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(first.Library.Created) != 2 {
		t.Fatalf("first sync created %d links, want 2", len(first.Library.Created))
	}

	second, err := Sync(ctx, cfg, linkset.OSFS{}, Options{})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if second.Library.Changes() != 0 {
		t.Errorf("second sync made %d changes, want 0", second.Library.Changes())
	}
	if second.Failed() {
		t.Errorf("second sync failed: %v", second.Library.Err())
	}
}

func TestCollisionDeterminism(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	pathA := writeSkill(t, a, "dup", "from a")
	pathB := writeSkill(t, b, "dup", "from b")

	tests := []struct {
		name    string
		sources []config.Source
		want    string
	}{
		{"a first", []config.Source{{Name: "a", Path: a}, {Name: "b", Path: b}}, pathA},
		{"b first", []config.Source{{Name: "b", Path: b}, {Name: "a", Path: a}}, pathB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{LibraryDir: filepath.Join(t.TempDir(), "lib"), Sources: tt.sources}
			report, err := Sync(context.Background(), cfg, linkset.OSFS{}, Options{})
			if err != nil {
				t.Fatalf("Sync() error = %v", err)
			}
			if got := readLink(t, filepath.Join(cfg.LibraryDir, "dup")); got != tt.want {
				t.Errorf("library/dup -> %q, want %q", got, tt.want)
			}
			if len(report.Resolution.Collisions) != 1 {
				t.Errorf("Collisions = %+v, want 1", report.Resolution.Collisions)
			}
		})
	}
}

func TestSyncRemovesStaleLinks(t *testing.T) {
	src := t.TempDir()
	gone := writeSkill(t, src, "gone", "x")
	writeSkill(t, src, "kept", "y")
	cfg := &config.Config{
		LibraryDir: filepath.Join(t.TempDir(), "lib"),
		Sources:    []config.Source{{Name: "s", Path: src}},
	}
	ctx := context.Background()

	if _, err := Sync(ctx, cfg, linkset.OSFS{}, Options{}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if err := os.RemoveAll(gone); err != nil {
		t.Fatalf("failed to remove skill: %v", err)
	}

	report, err := Sync(ctx, cfg, linkset.OSFS{}, Options{})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(report.Library.Removed) != 1 {
		t.Errorf("Removed = %+v, want gone", report.Library.Removed)
	}
	if _, err := os.Lstat(filepath.Join(cfg.LibraryDir, "gone")); !os.IsNotExist(err) {
		t.Error("link for removed skill should no longer exist")
	}
	if _, err := os.Lstat(filepath.Join(cfg.LibraryDir, "kept")); err != nil {
		t.Errorf("link for kept skill should exist: %v", err)
	}
}

func TestSyncLeavesNonLinkConflicts(t *testing.T) {
	src := t.TempDir()
	writeSkill(t, src, "foo", "x")
	lib := t.TempDir()
	realDir := filepath.Join(lib, "foo")
	if err := os.MkdirAll(realDir, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	cfg := &config.Config{LibraryDir: lib, Sources: []config.Source{{Name: "s", Path: src}}}
	report, err := Sync(context.Background(), cfg, linkset.OSFS{}, Options{})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(report.Library.Conflicts) != 1 || report.Library.Conflicts[0] != "foo" {
		t.Errorf("Conflicts = %v, want foo", report.Library.Conflicts)
	}
	info, err := os.Lstat(realDir)
	if err != nil || info.Mode()&os.ModeSymlink != 0 {
		t.Error("existing directory must not be replaced by a link")
	}
}

func TestPropagate(t *testing.T) {
	src := t.TempDir()
	writeSkill(t, src, "go-testing", "x")
	writeSkill(t, src, "pdf", "y")

	root := t.TempDir()
	enabledDir := filepath.Join(root, "enabled")
	filteredDir := filepath.Join(root, "filtered")
	disabledDir := filepath.Join(root, "disabled")

	// A link the user placed in the target directory must survive.
	if err := os.MkdirAll(enabledDir, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	foreign := filepath.Join(enabledDir, "mine")
	if err := os.Symlink(root, foreign); err != nil {
		t.Fatalf("failed to create link: %v", err)
	}

	cfg := &config.Config{
		LibraryDir: filepath.Join(root, "lib"),
		Sources:    []config.Source{{Name: "s", Path: src}},
		Targets: config.Targets{
			{Name: "enabled", Enabled: true, Path: enabledDir},
			{Name: "filtered", Enabled: true, Path: filteredDir, Include: []string{"go-*"}},
			{Name: "disabled", Enabled: false, Path: disabledDir},
		},
	}

	report, err := Sync(context.Background(), cfg, linkset.OSFS{}, Options{})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(report.Targets) != 2 {
		t.Fatalf("Targets = %d reports, want 2 (disabled skipped)", len(report.Targets))
	}

	for _, name := range []string{"go-testing", "pdf"} {
		if got := readLink(t, filepath.Join(enabledDir, name)); got != filepath.Join(src, name) {
			t.Errorf("enabled/%s -> %q", name, got)
		}
	}
	if _, err := os.Lstat(foreign); err != nil {
		t.Errorf("foreign link in target was removed: %v", err)
	}

	if _, err := os.Lstat(filepath.Join(filteredDir, "go-testing")); err != nil {
		t.Errorf("filtered target should receive go-testing: %v", err)
	}
	if _, err := os.Lstat(filepath.Join(filteredDir, "pdf")); !os.IsNotExist(err) {
		t.Error("filtered target should not receive pdf")
	}

	if _, err := os.Stat(disabledDir); !os.IsNotExist(err) {
		t.Error("disabled target directory must not be created")
	}
}

func TestPropagateRemovesOwnedStaleLinks(t *testing.T) {
	src := t.TempDir()
	gone := writeSkill(t, src, "gone", "x")
	out := filepath.Join(t.TempDir(), "out")

	cfg := &config.Config{
		LibraryDir: filepath.Join(t.TempDir(), "lib"),
		Sources:    []config.Source{{Name: "s", Path: src}},
		Targets:    config.Targets{{Name: "out", Enabled: true, Path: out}},
	}
	ctx := context.Background()

	if _, err := Sync(ctx, cfg, linkset.OSFS{}, Options{}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if err := os.RemoveAll(gone); err != nil {
		t.Fatalf("failed to remove skill: %v", err)
	}
	if _, err := Sync(ctx, cfg, linkset.OSFS{}, Options{}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if _, err := os.Lstat(filepath.Join(out, "gone")); !os.IsNotExist(err) {
		t.Error("stale link pointing into a source should be removed from the target")
	}
}

func TestPropagateDoesNotTouchLibrary(t *testing.T) {
	src := t.TempDir()
	writeSkill(t, src, "foo", "x")
	lib := filepath.Join(t.TempDir(), "lib")

	cfg := &config.Config{
		LibraryDir: lib,
		Sources:    []config.Source{{Name: "s", Path: src}},
		Targets:    config.Targets{{Name: "t", Enabled: true, Path: filepath.Join(t.TempDir(), "t")}},
	}
	ctx := context.Background()

	res, err := Discover(ctx, cfg)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	Propagate(ctx, cfg, res, linkset.OSFS{}, Options{})

	if _, err := os.Stat(lib); !os.IsNotExist(err) {
		t.Error("Propagate must not create or write library_dir")
	}
}

func TestSyncDryRun(t *testing.T) {
	src := t.TempDir()
	writeSkill(t, src, "foo", "x")
	cfg := &config.Config{
		LibraryDir: filepath.Join(t.TempDir(), "lib"),
		Sources:    []config.Source{{Name: "s", Path: src}},
	}

	report, err := Sync(context.Background(), cfg, linkset.OSFS{}, Options{DryRun: true})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(report.Library.Created) != 1 {
		t.Errorf("dry run should report 1 creation, got %d", len(report.Library.Created))
	}
	if _, err := os.Stat(cfg.LibraryDir); !os.IsNotExist(err) {
		t.Error("dry run must not create the library")
	}
}

func TestSyncNilConfig(t *testing.T) {
	if _, err := Sync(context.Background(), nil, linkset.OSFS{}, Options{}); err == nil {
		t.Error("Sync(nil config) should return an error")
	}
}

func TestSyncSourceIsTargetStaysStable(t *testing.T) {
	root := t.TempDir()
	claude := filepath.Join(root, "claude")
	team := filepath.Join(root, "team")
	fooDir := writeSkill(t, team, "foo", "from team")
	mineDir := writeSkill(t, claude, "mine", "hand-made")

	cfg := &config.Config{
		LibraryDir: filepath.Join(root, "lib"),
		Sources:    []config.Source{{Name: "claude", Path: claude}, {Name: "team", Path: team}},
		Targets:    config.Targets{{Name: "claude", Enabled: true, Path: claude}},
	}
	ctx := context.Background()

	if _, err := Sync(ctx, cfg, linkset.OSFS{}, Options{}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	for run := 2; run <= 3; run++ {
		report, err := Sync(ctx, cfg, linkset.OSFS{}, Options{})
		if err != nil {
			t.Fatalf("Sync() run %d error = %v", run, err)
		}
		if n := report.Library.Changes(); n != 0 {
			t.Errorf("run %d: library changes = %d, want 0", run, n)
		}
		if n := report.Targets[0].Result.Changes(); n != 0 {
			t.Errorf("run %d: target changes = %d, want 0", run, n)
		}
		if len(report.Resolution.Collisions) != 0 {
			t.Errorf("run %d: propagated links must not be rediscovered: %+v", run, report.Resolution.Collisions)
		}
		if len(report.Targets[0].Result.Conflicts) != 0 {
			t.Errorf("run %d: skill living in the target is not a conflict: %v", run, report.Targets[0].Result.Conflicts)
		}
	}

	if got := readLink(t, filepath.Join(claude, "foo")); got != fooDir {
		t.Errorf("claude/foo -> %q, want %q", got, fooDir)
	}
	if got := readLink(t, filepath.Join(cfg.LibraryDir, "mine")); got != mineDir {
		t.Errorf("library/mine -> %q, want %q", got, mineDir)
	}
	info, err := os.Lstat(mineDir)
	if err != nil || info.Mode()&os.ModeSymlink != 0 {
		t.Error("hand-made skill in the target must stay a real directory")
	}
}

func TestPropagateKeepsForeignLinkWithSkillName(t *testing.T) {
	src := t.TempDir()
	writeSkill(t, src, "pdf", "ours")
	out := filepath.Join(t.TempDir(), "out")
	if err := os.MkdirAll(out, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	theirs := t.TempDir()
	if err := os.Symlink(theirs, filepath.Join(out, "pdf")); err != nil {
		t.Fatalf("failed to create link: %v", err)
	}

	cfg := &config.Config{
		LibraryDir: filepath.Join(t.TempDir(), "lib"),
		Sources:    []config.Source{{Name: "s", Path: src}},
		Targets:    config.Targets{{Name: "out", Enabled: true, Path: out}},
	}
	report, err := Sync(context.Background(), cfg, linkset.OSFS{}, Options{})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	result := report.Targets[0].Result
	if len(result.Replaced) != 0 || len(result.Conflicts) != 1 || result.Conflicts[0] != "pdf" {
		t.Errorf("replaced = %+v, conflicts = %v, want pdf reported as a conflict", result.Replaced, result.Conflicts)
	}
	if got := readLink(t, filepath.Join(out, "pdf")); got != theirs {
		t.Errorf("out/pdf -> %q, want the user's link %q kept", got, theirs)
	}
}
