package dev

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeTemplate ChangeType = iota
	ChangeData
	ChangeConfig
	ChangeOther
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTemplate:
		return "template"
	case ChangeData:
		return "data"
	case ChangeConfig:
		return "config"
	default:
		return "other"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
	Op   fsnotify.Op
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are files or directories to watch. A file is watched through
	// its directory so editors that replace files on save are seen.
	Paths []string

	// Ignore patterns to skip (globs or path segments).
	Ignore []string

	// Debounce is the quiet period before a batch is reported.
	Debounce time.Duration

	Logger *slog.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
	".#*",
}

// Watcher monitors files for changes.
type Watcher struct {
	config   WatcherConfig
	logger   *slog.Logger
	onChange func([]Change)

	mu      sync.Mutex
	running bool
	fsw     *fsnotify.Watcher
	done    chan struct{}

	// files are watched individually; dirs report every entry.
	files map[string]bool
	dirs  map[string]bool
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		config: config,
		logger: logger.With("component", "dev.watcher"),
		files:  make(map[string]bool),
		dirs:   make(map[string]bool),
	}
}

// OnChange sets the callback for debounced change batches.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start registers every configured path and begins watching in the
// background until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("dev: create watcher: %w", err)
	}
	for _, p := range w.config.Paths {
		if err := w.add(fsw, p); err != nil {
			fsw.Close()
			return err
		}
	}

	w.fsw = fsw
	w.done = make(chan struct{})
	w.running = true
	go w.loop(ctx, fsw, w.done)
	return nil
}

func (w *Watcher) add(fsw *fsnotify.Watcher, p string) error {
	abs, err := filepath.Abs(p)
	if err != nil {
		return fmt.Errorf("dev: resolve %s: %w", p, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("dev: watch %s: %w", p, err)
	}

	dir := abs
	if info.IsDir() {
		w.dirs[abs] = true
	} else {
		w.files[abs] = true
		dir = filepath.Dir(abs)
	}
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("dev: watch %s: %w", dir, err)
	}
	w.logger.Debug("watching", "path", abs)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.done)
	w.fsw.Close()
	w.running = false
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	pending := make(map[string]Change)
	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()

	defer func() {
		timer.Stop()
		w.mu.Lock()
		if w.running && w.done == done {
			close(done)
			fsw.Close()
			w.running = false
		}
		w.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			change, ok := w.accept(ev)
			if !ok {
				continue
			}
			if prev, seen := pending[change.Path]; seen {
				change.Op |= prev.Op
			}
			pending[change.Path] = change
			timer.Reset(w.config.Debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		case <-timer.C:
			w.flush(pending)
			pending = make(map[string]Change)
		}
	}
}

func (w *Watcher) accept(ev fsnotify.Event) (Change, bool) {
	if ev.Op == fsnotify.Chmod {
		return Change{}, false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return Change{}, false
	}
	if !w.files[abs] && !w.dirs[filepath.Dir(abs)] {
		return Change{}, false
	}
	if w.shouldIgnore(abs) {
		return Change{}, false
	}
	return Change{Path: abs, Type: classifyChange(abs), Op: ev.Op}, true
}

func (w *Watcher) flush(pending map[string]Change) {
	if len(pending) == 0 {
		return
	}
	changes := make([]Change, 0, len(pending))
	for _, c := range pending {
		changes = append(changes, c)
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })

	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()

	w.logger.Debug("files changed", "count", len(changes))
	if callback != nil {
		callback(changes)
	}
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/")
		if strings.ContainsAny(pattern, "*?[") {
			if hasPathSep {
				if matched, _ := path.Match(pattern, normalized); matched {
					return true
				}
			} else if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}

		if pathHasSegment(normalized, pattern) {
			return true
		}
	}
	return false
}

func pathHasSegment(p, segment string) bool {
	for _, part := range strings.Split(p, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// classifyChange determines the type of change from the file name.
func classifyChange(p string) ChangeType {
	base := strings.ToLower(filepath.Base(p))
	ext := filepath.Ext(base)
	if strings.TrimSuffix(base, ext) == "vbind" {
		return ChangeConfig
	}
	switch ext {
	case ".html", ".htm", ".tmpl":
		return ChangeTemplate
	case ".json", ".yaml", ".yml":
		return ChangeData
	default:
		return ChangeOther
	}
}
