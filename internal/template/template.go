package template

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var DefaultConfig string

// SkyncDir is the name of the skync home directory under $HOME.
const SkyncDir = ".skync"

// File name constants for consistent usage across the codebase.
const (
	ConfigFile = "config.yaml"
	LibraryDir = "library"
	MarkerFile = "SKILL.md" // Marks a directory as a skill
	EnvFile    = ".env"
)

// RenderConfig fills the default config template with a library directory and
// the given source paths. With no sources a commented example is emitted.
func RenderConfig(libraryDir string, sources []string) string {
	var b strings.Builder
	if len(sources) == 0 {
		b.WriteString("  # - path: ~/skills\n  #   name: personal\n")
	}
	for _, src := range sources {
		fmt.Fprintf(&b, "  - path: %s\n", yamlScalar(src))
	}

	out := strings.Replace(DefaultConfig, "{{LIBRARY_DIR}}", yamlScalar(libraryDir), 1)
	return strings.Replace(out, "{{SOURCES}}", b.String(), 1)
}

// yamlScalar renders s as a single-line YAML scalar, quoting it when a plain
// scalar would be cut short or misread.
func yamlScalar(s string) string {
	out, err := yaml.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	v := strings.TrimSuffix(string(out), "\n")
	if strings.Contains(v, "\n") {
		return strconv.Quote(s)
	}
	return v
}
