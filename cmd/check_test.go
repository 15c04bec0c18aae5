package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jywlabs/skync/internal/library"
)

func TestRunCheckFn_Healthy(t *testing.T) {
	cfg, src := newTestConfig(t)
	writeSkill(t, src, "foo", "# foo")
	if err := runSyncFn(context.Background(), cfg, library.Options{}, &bytes.Buffer{}); err != nil {
		t.Fatalf("runSyncFn returned error: %v", err)
	}

	var out bytes.Buffer
	if err := runCheckFn(cfg, &out); err != nil {
		t.Fatalf("runCheckFn returned error: %v", err)
	}
	if !strings.Contains(out.String(), "No broken links") {
		t.Errorf("expected healthy summary, got: %s", out.String())
	}
}

func TestRunCheckFn_Broken(t *testing.T) {
	cfg, src := newTestConfig(t)
	fooDir := writeSkill(t, src, "foo", "# foo")
	writeSkill(t, src, "bar", "# bar")
	if err := runSyncFn(context.Background(), cfg, library.Options{}, &bytes.Buffer{}); err != nil {
		t.Fatalf("runSyncFn returned error: %v", err)
	}
	if err := os.RemoveAll(fooDir); err != nil {
		t.Fatalf("failed to remove skill: %v", err)
	}

	var out bytes.Buffer
	err := runCheckFn(cfg, &out)
	if err == nil {
		t.Fatal("runCheckFn should fail when links are broken")
	}
	if !strings.Contains(err.Error(), "2 broken link(s)") {
		t.Errorf("error = %v, want 2 broken links (library and target)", err)
	}

	output := out.String()
	if !strings.Contains(output, "library ("+cfg.LibraryDir+"): 1 broken: foo") {
		t.Errorf("expected library line naming foo, got: %s", output)
	}
	if !strings.Contains(output, "skync sync") {
		t.Errorf("expected repair hint, got: %s", output)
	}
}

func TestRunCheckFn_SkipsDisabledTargets(t *testing.T) {
	cfg, _ := newTestConfig(t)
	disabled := filepath.Join(t.TempDir(), "disabled")
	if err := os.MkdirAll(disabled, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.Symlink(filepath.Join(disabled, "missing"), filepath.Join(disabled, "dangling")); err != nil {
		t.Fatalf("failed to create link: %v", err)
	}
	cfg.Targets[0].Path = disabled
	cfg.Targets[0].Enabled = false

	var out bytes.Buffer
	if err := runCheckFn(cfg, &out); err != nil {
		t.Errorf("disabled targets should not be checked, got: %v", err)
	}
}
