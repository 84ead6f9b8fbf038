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


package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/poiesic/docindex/storage"
)

const (
	lockFile         = "LOCK"
	manifestFile     = "CURRENT"
	generationPrefix = "gen-"
)

// newGeneration returns a time-ordered generation name.
func newGeneration() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return generationPrefix + id.String(), nil
}

func validGeneration(name string) bool {
	return strings.HasPrefix(name, generationPrefix) && !strings.ContainsAny(name, `/\`) && name != generationPrefix
}

// lockLocation takes the exclusive writer lock for location.
func lockLocation(location string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(location, lockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", location, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIndexLocked, location)
	}
	return lock, nil
}

// Active returns the path of the active generation at location.
func Active(location string) (string, error) {
	gen, err := readManifest(location)
	if err != nil {
		return "", err
	}
	return filepath.Join(location, gen), nil
}

// Open opens the active generation at location for reading.
func Open(ctx context.Context, store storage.VectorStore, location string) (storage.IndexReader, error) {
	path, err := Active(location)
	if err != nil {
		return nil, err
	}
	reader, err := store.Open(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNoActiveIndex, location, err)
		}
		return nil, err
	}
	return reader, nil
}

func readManifest(location string) (string, error) {
	data, err := os.ReadFile(filepath.Join(location, manifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNoActiveIndex, location)
		}
		return "", err
	}
	gen := strings.TrimSpace(string(data))
	if !validGeneration(gen) {
		return "", fmt.Errorf("%w: %q", ErrInvalidManifest, gen)
	}
	return gen, nil
}

// writeManifest atomically points CURRENT at gen: write a temp file, fsync,
// rename over CURRENT. The rename is the commit point; the directory fsync
// that follows is best effort.
func writeManifest(location, gen string) error {
	tmp, err := os.CreateTemp(location, manifestFile+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(gen + "\n"); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(location, manifestFile)); err != nil {
		return err
	}
	_ = syncDir(location)
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// staleEntries lists everything in location except the lock, the manifest
// and the active generation.
func staleEntries(location, active string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(location)
	if err != nil {
		return nil, err
	}
	stale := entries[:0]
	for _, e := range entries {
		switch e.Name() {
		case lockFile, manifestFile, active:
			continue
		}
		stale = append(stale, e)
	}
	return stale, nil
}
