// Package watcher reports batches of TypeScript source changes under a set
// of directories.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Event represents a file change event.
type Event struct {
	Path string
	Op   string // "create", "write", "remove"
}

// DefaultDebounce is how long the watcher waits for more changes before
// reporting a batch.
const DefaultDebounce = 100 * time.Millisecond

// skipDirs are never watched.
var skipDirs = []string{"node_modules", ".git", "dist", "build"}

// Watcher watches directories for file changes using fsnotify.
type Watcher struct {
	dirs       []string
	extensions []string // e.g., [".ts", ".tsx"]
	debounce   time.Duration
	onChange   func(events []Event)
	logger     *zap.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates a new file watcher. onChange is called from the Watch
// goroutine, one batch at a time.
func New(dirs []string, extensions []string, debounce time.Duration, onChange func(events []Event)) *Watcher {
	return &Watcher{
		dirs:       dirs,
		extensions: extensions,
		debounce:   debounce,
		onChange:   onChange,
		logger:     zap.NewNop(),
		stopCh:     make(chan struct{}),
	}
}

// SetLogger sets the logger used for watch errors and registrations.
func (w *Watcher) SetLogger(logger *zap.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// Watch blocks until ctx is done or Stop is called. Directories created
// while watching are picked up automatically.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	for _, dir := range w.dirs {
		if err := w.addRecursive(fsw, dir); err != nil {
			return err
		}
	}

	var (
		pending []Event
		timer   *time.Timer
		timerC  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(fsw, event.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
					continue
				}
			}
			ev, ok := w.translate(event)
			if !ok {
				continue
			}
			pending = append(pending, ev)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watch error", zap.Error(err))

		case <-timerC:
			timerC = nil
			batch := coalesce(pending)
			pending = nil
			if len(batch) > 0 && w.onChange != nil {
				w.onChange(batch)
			}
		}
	}
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path != root {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return err
		}
		w.logger.Debug("Watching directory", zap.String("path", path))
		return nil
	})
}

func skipDir(name string) bool {
	return slices.Contains(skipDirs, name) || strings.HasPrefix(name, ".")
}

// translate maps an fsnotify event to an Event, dropping files without a
// watched extension and chmod-only changes.
func (w *Watcher) translate(event fsnotify.Event) (Event, bool) {
	if !w.matches(event.Name) {
		return Event{}, false
	}
	switch {
	case event.Op&fsnotify.Create != 0:
		return Event{Path: event.Name, Op: "create"}, true
	case event.Op&fsnotify.Write != 0:
		return Event{Path: event.Name, Op: "write"}, true
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return Event{Path: event.Name, Op: "remove"}, true
	}
	return Event{}, false
}

func (w *Watcher) matches(path string) bool {
	return slices.Contains(w.extensions, filepath.Ext(path))
}

// coalesce keeps the last event per path, in order of first appearance.
func coalesce(events []Event) []Event {
	index := make(map[string]int, len(events))
	var out []Event
	for _, ev := range events {
		if i, ok := index[ev.Path]; ok {
			if out[i].Op == "create" && ev.Op == "write" {
				continue
			}
			out[i] = ev
			continue
		}
		index[ev.Path] = len(out)
		out = append(out, ev)
	}
	return out
}
