// Package watch reruns build steps when source files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
)

// Binding ties a glob set to the steps rerun when a matching file changes.
type Binding struct {
	Name     string
	Patterns []string
	Steps    []pipeline.StepName
}

// Matches reports whether the project-relative slash path p is selected by
// the binding's patterns, honoring "!" exclusions.
func (b Binding) Matches(p string) bool {
	var includes, excludes []string
	for _, pattern := range b.Patterns {
		if strings.HasPrefix(pattern, "!") {
			excludes = append(excludes, pattern)
		} else {
			includes = append(includes, pattern)
		}
	}
	return fsutil.MatchesAny(includes, p) && !fsutil.MatchesAny(excludes, p)
}

// Trigger is invoked for a binding whose files changed. path is the
// project-relative path of the change that caused it.
type Trigger func(ctx context.Context, b Binding, path string)

// Watcher dispatches file system events to bindings.
type Watcher struct {
	root     string
	bindings []Binding
	debounce time.Duration
	trigger  Trigger

	ready chan struct{}
	wg    sync.WaitGroup

	mu     sync.Mutex
	timers map[string]*time.Timer

	ignored []string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithIgnoredDirs excludes directories (project-relative or absolute) and
// everything below them. Build outputs belong here so a rerun's own writes
// never trigger another rerun.
func WithIgnoredDirs(dirs ...string) Option {
	return func(w *Watcher) {
		for _, d := range dirs {
			if d == "" {
				continue
			}
			if !filepath.IsAbs(d) {
				d = filepath.Join(w.root, filepath.FromSlash(d))
			}
			w.ignored = append(w.ignored, filepath.Clean(d))
		}
	}
}

// New creates a watcher for the project at root. With a zero debounce every
// event triggers its bindings; otherwise events for the same binding within
// the window collapse into one trigger.
func New(root string, bindings []Binding, debounce time.Duration, trigger Trigger, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		bindings: bindings,
		debounce: debounce,
		trigger:  trigger,
		ready:    make(chan struct{}),
		timers:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Ready is closed once every directory is subscribed.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is canceled, then waits for running triggers.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()

	var patterns []string
	for _, b := range w.bindings {
		patterns = append(patterns, b.Patterns...)
	}
	for _, dir := range fsutil.StaticDirs(patterns) {
		full := filepath.Join(w.root, filepath.FromSlash(dir))
		if _, err := os.Stat(full); err != nil {
			slog.Debug("Skipping missing watch directory", logfields.Path(full))
			continue
		}
		w.addDirsRecursive(fw, full)
	}
	close(w.ready)
	slog.Info("Watching for changes", logfields.Path(w.root), logfields.Count(len(w.bindings)))

	defer w.wait()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Watch stopped")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) wait() {
	w.mu.Lock()
	for _, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) || ev.Op == fsnotify.Chmod || w.isIgnored(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(fw, ev.Name)
			return
		}
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	slog.Debug("File change detected", logfields.Path(rel), logfields.Event(ev.Op.String()))

	for _, b := range w.bindings {
		if b.Matches(rel) {
			w.dispatch(ctx, b, rel)
		}
	}
}

func (w *Watcher) dispatch(ctx context.Context, b Binding, rel string) {
	if w.debounce <= 0 {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.trigger(ctx, b, rel)
		}()
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[b.Name]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.timers[b.Name] = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		if ctx.Err() != nil {
			return
		}
		w.trigger(ctx, b, rel)
	})
}

// addDirsRecursive subscribes root and its subdirectories, skipping hidden
// and ignored directories.
func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if w.isIgnored(path) || (path != root && strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			if err := fw.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

func (w *Watcher) isIgnored(path string) bool {
	path = filepath.Clean(path)
	for _, dir := range w.ignored {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// shouldIgnoreEvent returns true for editor and OS artifacts.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
