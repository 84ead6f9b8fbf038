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


package formats

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Entry binds an extension to its loader and encoding.
type Entry struct {
	Extension string
	Loader    FormatLoader
	Encoding  Encoding
}

// Registry maps extensions to format loaders. It is populated at
// construction and read-only afterwards; it is safe for concurrent Lookup.
type Registry struct {
	entries []Entry
	byExt   map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]int)}
}

// DefaultRegistry returns the registry for the supported corpus formats.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	// Order matters: the loader visits extensions in registration order.
	r.mustRegister(".pdf", PDF{}, UTF8)
	r.mustRegister(".xml", XML{}, UTF8)
	r.mustRegister(".csv", CSV{}, Latin1)
	r.mustRegister(".txt", Text{}, UTF8)
	return r
}

// Register adds a loader for ext. An empty encoding means utf-8.
func (r *Registry) Register(ext string, loader FormatLoader, enc Encoding) error {
	if loader == nil {
		return ErrLoaderRequired
	}
	if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
		return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}
	if enc == "" {
		enc = UTF8
	}
	if err := enc.Validate(); err != nil {
		return err
	}
	key := strings.ToLower(ext)
	if _, ok := r.byExt[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateExtension, key)
	}
	r.byExt[key] = len(r.entries)
	r.entries = append(r.entries, Entry{Extension: key, Loader: loader, Encoding: enc})
	return nil
}

func (r *Registry) mustRegister(ext string, loader FormatLoader, enc Encoding) {
	if err := r.Register(ext, loader, enc); err != nil {
		panic(err)
	}
}

// Lookup returns the entry for ext, matched case-insensitively.
func (r *Registry) Lookup(ext string) (Entry, bool) {
	i, ok := r.byExt[strings.ToLower(ext)]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Match returns the entry for the extension of path.
func (r *Registry) Match(path string) (Entry, bool) {
	return r.Lookup(filepath.Ext(path))
}

// Entries returns all entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Extensions returns the registered extensions in registration order.
func (r *Registry) Extensions() []string {
	exts := make([]string, len(r.entries))
	for i, e := range r.entries {
		exts[i] = e.Extension
	}
	return exts
}
