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


package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/formats"
)

// Loader turns a directory tree into documents.
type Loader struct {
	registry *formats.Registry
	workers  int
	tolerant bool
	hidden   bool
	logger   *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithRegistry replaces the default format registry.
func WithRegistry(registry *formats.Registry) Option {
	return func(l *Loader) error {
		if registry == nil {
			return ErrRegistryRequired
		}
		l.registry = registry
		return nil
	}
}

// WithWorkers sets how many files of one format are parsed concurrently.
func WithWorkers(n int) Option {
	return func(l *Loader) error {
		if n < 1 {
			n = 1
		}
		l.workers = n
		return nil
	}
}

// WithFileTolerance drops only failing files instead of their whole format batch.
func WithFileTolerance(tolerant bool) Option {
	return func(l *Loader) error {
		l.tolerant = tolerant
		return nil
	}
}

// WithHiddenFiles includes files and directories whose names start with a dot.
func WithHiddenFiles(include bool) Option {
	return func(l *Loader) error {
		l.hidden = include
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// New creates a Loader using formats.DefaultRegistry unless overridden.
func New(opts ...Option) (*Loader, error) {
	l := &Loader{
		registry: formats.DefaultRegistry(),
		workers:  max(1, runtime.NumCPU()/2),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	l.logger = l.logger.With("component", "loader")
	return l, nil
}

// Load returns every document produced from root.
func (l *Loader) Load(ctx context.Context, root string) ([]core.Document, error) {
	docs, _, err := l.LoadWithReport(ctx, root)
	return docs, err
}

// LoadWithReport is Load plus a per-format account of what happened.
// Format failures are reported, not returned; the error is reserved for a
// missing root, walk failures and cancellation.
func (l *Loader) LoadWithReport(ctx context.Context, root string) ([]core.Document, *Report, error) {
	if err := CheckRoot(root); err != nil {
		return nil, nil, err
	}
	l.logger.Debug("scanning corpus", "root", root, "extensions", l.registry.Extensions())

	groups, unsupported, err := l.walk(ctx, root)
	if err != nil {
		return nil, nil, err
	}
	if len(unsupported) > 0 {
		l.logger.Info("skipped unsupported files", "count", len(unsupported))
	}

	pool, err := ants.NewPool(l.workers)
	if err != nil {
		return nil, nil, err
	}
	defer pool.Release()

	report := &Report{Root: root, Unsupported: unsupported}
	var docs []core.Document
	for _, entry := range l.registry.Entries() {
		paths := groups[entry.Extension]
		if len(paths) == 0 {
			l.logger.Debug("no files for format", "extension", entry.Extension)
			continue
		}

		result, err := l.loadFormat(ctx, pool, entry, paths)
		if err != nil {
			return nil, nil, err
		}
		report.Results = append(report.Results, result)
		docs = append(docs, result.Documents...)
	}

	l.logger.Info("loaded documents", "root", root, "files", report.Files(), "documents", len(docs))
	return docs, report, nil
}

// CheckRoot returns ErrRootNotFound unless root is an existing directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}
	return nil
}

// walk groups regular files under root by registered extension. Paths are
// sorted within each group.
func (l *Loader) walk(ctx context.Context, root string) (map[string][]string, []string, error) {
	groups := make(map[string][]string)
	var unsupported []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			l.logger.Warn("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if path != root && !l.hidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		entry, ok := l.registry.Match(path)
		if !ok {
			l.logger.Debug("skipping unsupported file", "path", path)
			unsupported = append(unsupported, path)
			return nil
		}
		groups[entry.Extension] = append(groups[entry.Extension], path)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for _, paths := range groups {
		slices.Sort(paths)
	}
	return groups, unsupported, nil
}

type fileResult struct {
	docs []core.Document
	err  error
}

// loadFormat parses one extension's files on the pool. Only cancellation
// is returned as an error; file failures land in the result.
func (l *Loader) loadFormat(ctx context.Context, pool *ants.Pool, entry formats.Entry, paths []string) (FormatResult, error) {
	result := FormatResult{
		Extension: entry.Extension,
		Format:    entry.Loader.Name(),
		Files:     paths,
	}

	results := make([]fileResult, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[i].err = err
				return
			}
			docs, err := entry.Loader.Parse(ctx, path, entry.Encoding)
			for j := 0; err == nil && j < len(docs); j++ {
				err = core.ValidateDocument(&docs[j])
			}
			results[i].docs, results[i].err = docs, err
		})
		if err != nil {
			wg.Done()
			results[i].err = err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	for i, res := range results {
		if res.err == nil {
			result.Documents = append(result.Documents, res.docs...)
			continue
		}
		if !l.tolerant {
			result.Documents = nil
			result.Err = fmt.Errorf("%w: %s: %w", ErrFormatFailed, paths[i], res.err)
			l.logger.Warn("dropping format batch", "extension", entry.Extension, "files", len(paths), "err", result.Err)
			return result, nil
		}
		l.logger.Warn("dropping file", "path", paths[i], "err", res.err)
		result.FileErrors = append(result.FileErrors, FileError{Path: paths[i], Err: res.err})
	}

	l.logger.Info("loaded format", "extension", entry.Extension, "files", len(paths), "documents", len(result.Documents))
	return result, nil
}
