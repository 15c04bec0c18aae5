// Package watch re-runs a callback when skill sources change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jywlabs/skync/internal/logger"
)

// DefaultDebounce is the quiet period after the last event before a re-sync.
const DefaultDebounce = 500 * time.Millisecond

// Event is a filesystem change inside a watched source.
type Event struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

// Run watches every root and its immediate subdirectories, calling fn once
// per burst of changes. New subdirectories are added as they appear. Missing
// roots are skipped with a warning. Run blocks until ctx is cancelled and
// returns nil in that case.
func Run(ctx context.Context, roots []string, debounce time.Duration, fn func(context.Context, Event)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	for _, root := range roots {
		n, err := addTree(watcher, root)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("directory", root).Warn("source not watched")
			continue
		}
		watched += n
	}
	if watched == 0 {
		return fmt.Errorf("no source directories to watch")
	}
	logger.G(ctx).WithField("directories_count", watched).Info("file watcher initialized")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan Event)
	defer close(events)
	go debounceEvents(ctx, events, debounce, fn)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Chmod == event.Op {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						logger.G(ctx).WithError(err).WithField("directory", event.Name).Warn("failed to watch new directory")
					}
				}
			}
			logger.G(ctx).WithFields(map[string]interface{}{
				"file":      event.Name,
				"operation": event.Op.String(),
			}).Debug("change detected")

			select {
			case events <- Event{Path: event.Name, Op: event.Op, Time: time.Now()}:
			case <-ctx.Done():
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Error("error watching sources")
		case <-ctx.Done():
			return nil
		}
	}
}

// addTree watches root and each directory directly below it.
func addTree(watcher *fsnotify.Watcher, root string) (int, error) {
	if err := watcher.Add(root); err != nil {
		return 0, err
	}
	n := 1

	entries, err := os.ReadDir(root)
	if err != nil {
		return n, nil
	}
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := watcher.Add(path); err == nil {
			n++
		}
	}
	return n, nil
}

// debounceEvents calls fn with the last event of each burst once no event
// has arrived for delay. Calls never overlap. It returns when input is closed
// or ctx is done; a pending burst is dropped.
func debounceEvents(ctx context.Context, input <-chan Event, delay time.Duration, fn func(context.Context, Event)) {
	timer := time.NewTimer(delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var last Event
	pending := false

	for {
		select {
		case event, ok := <-input:
			if !ok {
				return
			}
			last = event
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(delay)
			pending = true
		case <-timer.C:
			pending = false
			fn(ctx, last)
		case <-ctx.Done():
			return
		}
	}
}
