// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 500 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// defaultIgnores are excluded regardless of Config.Ignore: VCS metadata, the
// repository property sidecar, and editor or OS noise.
var defaultIgnores = []string{
	"**/.git",
	"**/.git/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// BaseDir is the directory to watch recursively. Empty means the
		// current working directory.
		BaseDir string
		// Patterns select the paths (relative to BaseDir, slash-separated)
		// that trigger the callback. Empty matches everything not ignored.
		Patterns []string
		// Ignore lists extra patterns that never trigger the callback.
		Ignore []string
		// Debounce is the quiet period after the last event.
		Debounce time.Duration
		// OnChange receives the sorted changed paths. Errors are logged and
		// watching continues.
		OnChange func(ctx context.Context, changed []string) error
		// Stderr receives warnings; nil means os.Stderr.
		Stderr io.Writer
	}

	// Watcher monitors BaseDir. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		stderr   io.Writer
		debounce time.Duration
		baseDir  string
		started  atomic.Bool
	}

	// debouncer collects paths and fires the callback once per quiet period.
	// A fire that finds the previous callback still running is rescheduled.
	debouncer struct {
		delay time.Duration
		fire  func(changed []string)

		mu      sync.Mutex
		pending map[string]struct{}
		timer   *time.Timer
		running atomic.Bool
	}
)

// New validates cfg and registers every non-ignored directory below BaseDir.
func New(cfg Config) (*Watcher, error) {
	if err := validatePatterns(cfg.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		stderr:   stderr,
		debounce: debounce,
		baseDir:  absBase,
	}
	if err := w.addTree(absBase); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled. It returns nil on
// cancellation and an error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	d := &debouncer{
		delay:   w.debounce,
		pending: make(map[string]struct{}),
		fire: func(changed []string) {
			if ctx.Err() != nil || w.cfg.OnChange == nil {
				return
			}
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				fmt.Fprintf(w.stderr, "watch: callback error: %v\n", err)
			}
		},
	}
	defer func() {
		d.stop()
		if err := w.fsw.Close(); err != nil {
			fmt.Fprintf(w.stderr, "watch: close fsnotify: %v\n", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			rel := w.relative(evt.Name)
			if w.isIgnored(rel) {
				continue
			}
			// New directories are watched too, even when their own path
			// does not match a pattern.
			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					if err := w.addTree(evt.Name); err != nil {
						fmt.Fprintf(w.stderr, "%v\n", err)
					}
				}
			}
			if !w.matchesPatterns(rel) {
				continue
			}
			slog.Debug("watch event", "path", rel, "op", evt.Op.String())
			d.add(rel)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if hint, fatal := exhaustionHint(err); fatal {
				return fmt.Errorf("watch: %s: %w", hint, err)
			}
			fmt.Fprintf(w.stderr, "watch: fsnotify error: %v\n", err)
		}
	}
}

// addTree registers root and every non-ignored directory below it.
// Inaccessible directories are reported and skipped.
func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			fmt.Fprintf(w.stderr, "watch: skipping inaccessible path %q: %v\n", path, walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel := w.relative(path); rel != "." && w.isIgnored(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk directory tree: %w", err)
	}
	return nil
}

func (w *Watcher) relative(path string) string {
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matchesPatterns(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (d *debouncer) add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = struct{}{}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.flush)
	} else {
		d.timer.Reset(d.delay)
	}
}

func (d *debouncer) flush() {
	if !d.running.CompareAndSwap(false, true) {
		// Keep the pending set for the next quiet period.
		d.mu.Lock()
		if d.timer != nil {
			d.timer.Reset(d.delay)
		}
		d.mu.Unlock()
		return
	}
	defer d.running.Store(false)

	d.mu.Lock()
	changed := slices.Sorted(maps.Keys(d.pending))
	clear(d.pending)
	d.mu.Unlock()

	if len(changed) > 0 {
		d.fire(changed)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}
