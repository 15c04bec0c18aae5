package linkset

import (
	"os"
	"path/filepath"
)

// Entry is one item in a link directory.
type Entry struct {
	Name   string
	IsLink bool
	Target string // Link referent as stored; empty for non-links
}

// LinkFS is the filesystem surface reconciliation needs.
type LinkFS interface {
	ReadDir(dir string) ([]Entry, error)
	Readlink(path string) (string, error)
	Symlink(oldname, newname string) error
	Remove(path string) error
	MkdirAll(dir string) error
}

// OSFS implements LinkFS on the real filesystem.
type OSFS struct{}

// ReadDir lists dir without following links.
func (OSFS) ReadDir(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		e := Entry{Name: de.Name()}
		if de.Type()&os.ModeSymlink != 0 {
			e.IsLink = true
			if target, err := os.Readlink(filepath.Join(dir, de.Name())); err == nil {
				e.Target = target
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (OSFS) Readlink(path string) (string, error) { return os.Readlink(path) }

func (OSFS) Symlink(oldname, newname string) error { return os.Symlink(oldname, newname) }

// Remove deletes a single entry. It never recurses, so a link is removed
// without touching its referent.
func (OSFS) Remove(path string) error { return os.Remove(path) }

func (OSFS) MkdirAll(dir string) error { return os.MkdirAll(dir, 0755) }
