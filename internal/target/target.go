// Package target knows the integrations skync can mirror the library into and
// how to filter which skills reach each of them.
package target

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

// Integration describes a well-known target and where it looks for skills.
type Integration interface {
	// Name returns the target identifier (e.g., "claude").
	Name() string

	// SkillsDir returns where the integration looks for skills.
	SkillsDir() string
}

// integrations holds registered integrations.
var integrations = map[string]Integration{}

// Register registers an integration by name.
func Register(i Integration) {
	integrations[i.Name()] = i
}

// Lookup returns an integration by name, or nil if not found.
func Lookup(name string) Integration {
	return integrations[name]
}

// Names returns registered integration names, sorted.
func Names() []string {
	names := make([]string, 0, len(integrations))
	for name := range integrations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultDir returns the skills directory of a registered integration,
// or "" when the name is unknown.
func DefaultDir(name string) string {
	if i := Lookup(name); i != nil {
		return i.SkillsDir()
	}
	return ""
}

// homeIntegration is an integration whose skills live under $HOME.
type homeIntegration struct {
	name string
	rel  []string
}

func (h homeIntegration) Name() string { return h.name }

func (h homeIntegration) SkillsDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(append([]string{home}, h.rel...)...)
}

func init() {
	// Claude Code reads user skills from ~/.claude/skills.
	Register(homeIntegration{name: "claude", rel: []string{".claude", "skills"}})
	// Codex uses a global skills directory at ~/.codex/skills.
	Register(homeIntegration{name: "codex", rel: []string{".codex", "skills"}})
	// pi keeps global skills under its agent directory.
	Register(homeIntegration{name: "pi", rel: []string{".pi", "agent", "skills"}})
}

// Filter decides which skill names reach a target.
// An empty include list admits every name; exclude always wins.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewFilter compiles include and exclude glob patterns.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	for _, pattern := range include {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		f.include = append(f.include, g)
	}
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Match reports whether a skill name passes the filter.
func (f *Filter) Match(name string) bool {
	if f == nil {
		return true
	}
	for _, g := range f.exclude {
		if g.Match(name) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, g := range f.include {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Apply returns the subset of desired whose names pass the filter.
func (f *Filter) Apply(desired map[string]string) map[string]string {
	out := make(map[string]string, len(desired))
	for name, path := range desired {
		if f.Match(name) {
			out[name] = path
		}
	}
	return out
}
