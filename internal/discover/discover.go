// Package discover scans configured sources for skill directories.
//
// A skill is an immediate subdirectory of a source that contains a SKILL.md
// marker. Discovery is a fresh filesystem scan on every call; nothing is
// cached, and an unreadable or missing source simply contributes no skills.
package discover

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jywlabs/skync/internal/config"
	"github.com/jywlabs/skync/internal/template"
)

// Skill is one discovered skill directory.
type Skill struct {
	Name       string // Directory name
	SourceName string // Name of the source it was found in
	Path       string // Absolute path to the skill directory
}

// MarkerPath returns the path of the skill's SKILL.md.
func (s Skill) MarkerPath() string {
	return filepath.Join(s.Path, template.MarkerFile)
}

// DiscoverSource lists the skills directly under src.Path.
// A missing or unreadable source yields no skills and no error.
func DiscoverSource(src config.Source) ([]Skill, error) {
	return discoverSource(src, false)
}

// Scan lists the skills of src as the engine sees them. When src is the
// library or an enabled target, symlinked entries are links skync placed
// there and are not reported as skills.
func Scan(cfg *config.Config, src config.Source) ([]Skill, error) {
	return discoverSource(src, isManaged(cfg, src.Path))
}

func discoverSource(src config.Source, skipLinks bool) ([]Skill, error) {
	entries, err := os.ReadDir(src.Path)
	if err != nil {
		return nil, nil
	}

	var skills []Skill
	for _, entry := range entries {
		dir := filepath.Join(src.Path, entry.Name())
		if skipLinks && entry.Type()&os.ModeSymlink != 0 {
			continue
		}

		// Stat follows symlinked skill directories.
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		if !hasMarker(dir) {
			continue
		}

		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}

		skills = append(skills, Skill{
			Name:       entry.Name(),
			SourceName: src.Name,
			Path:       abs,
		})
	}

	return skills, nil
}

// DiscoverAll scans every source in config order and concatenates the results.
// Skills with the same name in different sources are all returned. Links
// skync itself placed in a source are skipped, see Scan.
func DiscoverAll(cfg *config.Config) ([]Skill, error) {
	if cfg == nil {
		return nil, errors.New("no configuration loaded")
	}

	var all []Skill
	for _, src := range cfg.Sources {
		skills, err := Scan(cfg, src)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Path, err)
		}
		all = append(all, skills...)
	}
	return all, nil
}

// Find returns the first skill with exactly the given name.
func Find(skills []Skill, name string) (Skill, bool) {
	for _, s := range skills {
		if s.Name == name {
			return s, true
		}
	}
	return Skill{}, false
}

// ReadMarker returns the content of the skill's SKILL.md.
func ReadMarker(s Skill) (string, error) {
	path := s.MarkerPath()
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(content), nil
}

// hasMarker reports whether dir holds a readable SKILL.md file.
func hasMarker(dir string) bool {
	f, err := os.Open(filepath.Join(dir, template.MarkerFile))
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	return err == nil && !info.IsDir()
}

// isManaged reports whether dir is the library or an enabled target.
func isManaged(cfg *config.Config, dir string) bool {
	if cfg == nil {
		return false
	}
	dir = filepath.Clean(dir)
	if cfg.LibraryDir != "" && filepath.Clean(cfg.LibraryDir) == dir {
		return true
	}
	for _, t := range cfg.Targets {
		if t.Enabled && t.Path != "" && filepath.Clean(t.Path) == dir {
			return true
		}
	}
	return false
}
