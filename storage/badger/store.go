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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/poiesic/docindex/storage"
)

// Store is a VectorStore that keeps each index in its own BadgerDB
// directory. The location is the directory path.
type Store struct {
	mu       sync.Mutex
	logger   *slog.Logger
	inMemory bool
	// memory holds in-memory databases by location; they live until Clear
	// or Close.
	memory map[string]*Backend
	closed bool
}

var _ storage.VectorStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets the logger used by the store and its databases.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithInMemory keeps indexes in memory instead of on disk.
func WithInMemory() Option {
	return func(s *Store) error {
		s.inMemory = true
		return nil
	}
}

// NewStore creates a BadgerDB backed vector store.
func NewStore(opts ...Option) (storage.VectorStore, error) {
	s := &Store{
		logger: slog.Default(),
		memory: make(map[string]*Backend),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "badger-store")
	return s, nil
}

// Create opens a writer on an empty location.
func (s *Store) Create(ctx context.Context, location string) (storage.IndexWriter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	if s.inMemory {
		if _, ok := s.memory[location]; ok {
			return nil, fmt.Errorf("%w: %s", storage.ErrIndexExists, location)
		}
		backend, err := openBackend("", true, false, s.logger)
		if err != nil {
			return nil, err
		}
		s.memory[location] = backend
		return newChunkWriter(backend, false, s.logger), nil
	}

	entries, err := os.ReadDir(location)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if len(entries) > 0 {
		return nil, fmt.Errorf("%w: %s", storage.ErrIndexExists, location)
	}
	backend, err := openBackend(location, false, false, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("created index", "location", location)
	return newChunkWriter(backend, true, s.logger), nil
}

// Open opens a committed index read-only.
func (s *Store) Open(ctx context.Context, location string) (storage.IndexReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	if s.inMemory {
		backend, ok := s.memory[location]
		if !ok {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, location)
		}
		info, err := loadIndexInfo(backend)
		if err != nil {
			return nil, err
		}
		return &chunkReader{backend: backend, info: info}, nil
	}

	if _, err := os.Stat(location); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, location)
		}
		return nil, err
	}
	backend, err := openBackend(location, false, true, s.logger)
	if err != nil {
		return nil, err
	}
	info, err := loadIndexInfo(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &chunkReader{backend: backend, info: info, owned: true}, nil
}

// Clear deletes the database at location.
func (s *Store) Clear(ctx context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}

	if s.inMemory {
		backend, ok := s.memory[location]
		if !ok {
			return nil
		}
		delete(s.memory, location)
		return backend.Close()
	}

	if err := os.RemoveAll(location); err != nil {
		return err
	}
	s.logger.Debug("cleared index", "location", location)
	return nil
}

// Close releases in-memory databases. On-disk indexes are unaffected.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for location, backend := range s.memory {
		errs = append(errs, backend.Close())
		delete(s.memory, location)
	}
	return errors.Join(errs...)
}
