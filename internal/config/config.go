// Package config loads and validates the skync configuration file: the
// library directory, the ordered list of sources to scan, and the named
// targets the library is mirrored into.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jywlabs/skync/internal/target"
	"github.com/jywlabs/skync/internal/template"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

// Source is a root directory scanned for skills.
// The path does not need to exist.
type Source struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Target is a named destination the library is mirrored into.
type Target struct {
	Name    string
	Enabled bool
	Path    string
	Include []string
	Exclude []string
}

// rawTarget is used for YAML unmarshaling; the name comes from the mapping key.
type rawTarget struct {
	Enabled *bool    `yaml:"enabled"`
	Path    string   `yaml:"path"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Targets keeps targets in the order they appear in the config file.
type Targets []Target

// UnmarshalYAML decodes the targets mapping node by node so file order survives.
func (t *Targets) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null" {
		*t = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: targets must be a mapping of name to settings", value.Line)
	}

	out := make(Targets, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valNode := value.Content[i], value.Content[i+1]

		var raw rawTarget
		if err := valNode.Decode(&raw); err != nil {
			return fmt.Errorf("target %q: %w", keyNode.Value, err)
		}

		// A target listed without settings is enabled.
		enabled := true
		if raw.Enabled != nil {
			enabled = *raw.Enabled
		}

		out = append(out, Target{
			Name:    keyNode.Value,
			Enabled: enabled,
			Path:    raw.Path,
			Include: raw.Include,
			Exclude: raw.Exclude,
		})
	}

	*t = out
	return nil
}

// Config represents the full skync config.yaml structure.
type Config struct {
	LibraryDir string   `yaml:"library_dir"`
	Sources    []Source `yaml:"sources"`
	Targets    Targets  `yaml:"targets"`

	// Path is the file the config was loaded from. Empty when parsed from memory.
	Path string `yaml:"-"`
}

// DefaultPath returns ~/.skync/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, template.SkyncDir, template.ConfigFile)
}

// DefaultLibraryDir returns ~/.skync/library.
func DefaultLibraryDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, template.SkyncDir, template.LibraryDir)
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	cfg, err := Parse(data, filepath.Dir(absPath))
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.Path = absPath

	return cfg, nil
}

// Parse decodes YAML config data, expands every path relative to baseDir,
// fills target defaults, and validates the result.
func Parse(data []byte, baseDir string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.LibraryDir == "" {
		cfg.LibraryDir = DefaultLibraryDir()
	}
	cfg.LibraryDir = ExpandPath(cfg.LibraryDir, baseDir)

	for i := range cfg.Sources {
		src := &cfg.Sources[i]
		if src.Path == "" {
			continue
		}
		src.Path = ExpandPath(src.Path, baseDir)
		if src.Name == "" {
			src.Name = filepath.Base(src.Path)
		}
	}

	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		if t.Path == "" {
			t.Path = target.DefaultDir(t.Name)
		}
		if t.Path != "" {
			t.Path = ExpandPath(t.Path, baseDir)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the config can drive a sync.
func (c *Config) Validate() error {
	if c.LibraryDir == "" {
		return fmt.Errorf("library_dir must not be empty")
	}

	seen := make(map[string]string, len(c.Sources))
	for i, src := range c.Sources {
		if src.Path == "" {
			return fmt.Errorf("sources[%d].path must not be empty", i)
		}
		if filepath.Clean(src.Path) == filepath.Clean(c.LibraryDir) {
			return fmt.Errorf("source %s must not be library_dir", src.Path)
		}
		if prev, ok := seen[src.Name]; ok {
			return fmt.Errorf("sources %s and %s share the name %q; set an explicit name", prev, src.Path, src.Name)
		}
		seen[src.Name] = src.Path
	}

	names := make(map[string]bool, len(c.Targets))
	for _, t := range c.Targets {
		if t.Name == "" {
			return fmt.Errorf("target name must not be empty")
		}
		if names[t.Name] {
			return fmt.Errorf("target %q is defined twice", t.Name)
		}
		names[t.Name] = true

		if t.Path == "" {
			return fmt.Errorf("target %q is not a known integration (%s); set its path", t.Name, strings.Join(target.Names(), ", "))
		}
		if filepath.Clean(t.Path) == filepath.Clean(c.LibraryDir) {
			return fmt.Errorf("target %q must not point at library_dir", t.Name)
		}
		if _, err := target.NewFilter(t.Include, t.Exclude); err != nil {
			return fmt.Errorf("target %q: %w", t.Name, err)
		}
	}

	return nil
}

// Target returns the target with the given name.
func (c *Config) Target(name string) (Target, bool) {
	for _, t := range c.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return Target{}, false
}

// EnabledTargets returns enabled targets in config order.
func (c *Config) EnabledTargets() []Target {
	var out []Target
	for _, t := range c.Targets {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

// ExpandPath expands a leading ~ and environment variables, and resolves
// relative paths against baseDir.
func ExpandPath(p, baseDir string) string {
	if p == "" {
		return p
	}

	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	p = os.ExpandEnv(p)

	if !filepath.IsAbs(p) && baseDir != "" {
		p = filepath.Join(baseDir, p)
	}

	return filepath.Clean(p)
}
