// Package health inspects link directories for dangling symlinks.
// It only reads; repairing links is the job of a sync.
package health

import (
	"os"
	"path/filepath"
	"sort"
)

// BrokenLinks returns the sorted names of symlinks in dir whose referent
// does not exist. Non-link entries are never reported. A missing or
// unreadable dir yields nil.
func BrokenLinks(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var broken []string
	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		// Stat follows the link; failure means the referent is gone.
		if _, err := os.Stat(filepath.Join(dir, entry.Name())); err != nil {
			broken = append(broken, entry.Name())
		}
	}

	sort.Strings(broken)
	return broken
}

// CountBrokenLinks returns the number of dangling symlinks in dir.
func CountBrokenLinks(dir string) int {
	return len(BrokenLinks(dir))
}

// CountEntries returns the number of entries in dir, or 0 when unreadable.
func CountEntries(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	return len(entries)
}
