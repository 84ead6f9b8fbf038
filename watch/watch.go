// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/poiesic/docindex/loader"
)

// DefaultDebounce is the quiet period before a rebuild starts.
const DefaultDebounce = 2 * time.Second

// RebuildFunc rebuilds the index. Its error is logged and does not stop
// the watcher.
type RebuildFunc func(ctx context.Context) error

// Watcher rebuilds on corpus changes.
type Watcher struct {
	root     string
	rebuild  RebuildFunc
	debounce time.Duration
	filter   func(path string) bool
	ignore   []string
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher) error

// WithDebounce sets the quiet period before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) error {
		if d <= 0 {
			return errors.New("debounce must be positive")
		}
		w.debounce = d
		return nil
	}
}

// WithFilter limits create and write events to paths for which fn returns
// true. Removals and renames always count since the removed path can no
// longer be inspected.
func WithFilter(fn func(path string) bool) Option {
	return func(w *Watcher) error {
		w.filter = fn
		return nil
	}
}

// WithIgnore drops every event at or below the given directories.
func WithIgnore(dirs ...string) Option {
	return func(w *Watcher) error {
		for _, d := range dirs {
			abs, err := filepath.Abs(d)
			if err != nil {
				return err
			}
			w.ignore = append(w.ignore, abs)
		}
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// New creates a Watcher for root.
func New(root string, rebuild RebuildFunc, opts ...Option) (*Watcher, error) {
	if rebuild == nil {
		return nil, errors.New("rebuild function is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     abs,
		rebuild:  rebuild,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	w.logger = w.logger.With("component", "watch")
	return w, nil
}

// Run watches until ctx is cancelled. It returns nil on cancellation and
// an error only if the watch cannot be established. A missing root is
// reported as loader.ErrRootNotFound.
func (w *Watcher) Run(ctx context.Context) error {
	if err := loader.CheckRoot(w.root); err != nil {
		return err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := w.addTree(fsw, w.root); err != nil {
		return err
	}
	w.logger.Info("watching corpus", "root", w.root, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(fsw, event) {
				continue
			}
			w.logger.Debug("corpus changed", "path", event.Name, "op", event.Op.String())
			pending = true
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			start := time.Now()
			if err := w.rebuild(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("rebuild failed", "err", err)
				continue
			}
			w.logger.Info("rebuild finished", "elapsed", time.Since(start))
		}
	}
}

// relevant reports whether event should schedule a rebuild. New
// directories are added to the watch as a side effect.
func (w *Watcher) relevant(fsw *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	path, err := filepath.Abs(event.Name)
	if err != nil || w.ignored(path) || hidden(w.root, path) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if err := w.addTree(fsw, path); err != nil {
			w.logger.Warn("failed to watch new directory", "path", path, "err", err)
		}
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}
	return w.filter == nil || w.filter(path)
}

func (w *Watcher) ignored(path string) bool {
	for _, dir := range w.ignore {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addTree watches dir and every non-hidden, non-ignored directory below
// it. Files are ignored. A dir removed before it could be walked is skipped.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && (w.ignored(path) || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// hidden reports whether any path element below root starts with a dot.
func hidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
