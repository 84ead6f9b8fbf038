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


package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/docindex/ai"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreBadger = "badger"
	StoreChroma = "chroma"
)

// Stores lists the supported store backends.
var Stores = []string{StoreBadger, StoreChroma}

// StoreConfig selects and configures the vector store.
type StoreConfig struct {
	// Backend is one of Stores. Default: "badger"
	Backend string `yaml:"backend"`

	// ChromaURL is the Chroma server base URL. Empty uses the client default.
	ChromaURL string `yaml:"chroma_url"`

	// CollectionPrefix is prepended to Chroma collection names.
	CollectionPrefix string `yaml:"collection_prefix"`
}

// Config is the complete configuration for building an index.
type Config struct {
	// Root is the corpus directory.
	Root string `yaml:"root"`

	// IndexLocation is the directory that holds index generations.
	IndexLocation string `yaml:"index_location"`

	// ChunkSize and ChunkOverlap are measured in characters.
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	BatchSize         int           `yaml:"batch_size"`
	Workers           int           `yaml:"workers"`
	LoaderWorkers     int           `yaml:"loader_workers"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`

	// TolerateFileErrors drops only failing files instead of their whole format.
	TolerateFileErrors bool `yaml:"tolerate_file_errors"`

	Store StoreConfig `yaml:"store"`
	AI    ai.Config   `yaml:"ai"`
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithRoot sets the corpus directory.
func WithRoot(root string) Option {
	return func(c *Config) {
		c.Root = root
	}
}

// WithIndexLocation sets the index directory.
func WithIndexLocation(location string) Option {
	return func(c *Config) {
		c.IndexLocation = location
	}
}

// WithChunking sets chunk size and overlap.
func WithChunking(size, overlap int) Option {
	return func(c *Config) {
		c.ChunkSize = size
		c.ChunkOverlap = overlap
	}
}

// WithStore sets the store backend.
func WithStore(backend string) Option {
	return func(c *Config) {
		c.Store.Backend = backend
	}
}

// WithAI replaces the embedding provider configuration.
func WithAI(cfg ai.Config) Option {
	return func(c *Config) {
		c.AI = cfg
	}
}

// DefaultConfig returns the defaults: the books corpus, a local badger
// index and a local OpenAI-compatible embedding server.
func DefaultConfig() *Config {
	return &Config{
		Root:          "data/books",
		IndexLocation: "index",
		ChunkSize:     300,
		ChunkOverlap:  100,
		BatchSize:     64,
		Workers:       4,
		LoaderWorkers: 4,
		MaxRetries:    3,
		RetryDelay:    500 * time.Millisecond,
		Store: StoreConfig{
			Backend:          StoreBadger,
			CollectionPrefix: "docindex-",
		},
		AI: *ai.DefaultConfig(),
	}
}

// New creates a Config with the default values and applies the provided options.
func New(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies DOCINDEX_* overrides and picks up the provider API key
// from OPENAI_API_KEY or GEMINI_API_KEY. Unparseable numbers are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("DOCINDEX_ROOT"); v != "" {
		c.Root = v
	}
	if v := getenv("DOCINDEX_INDEX_LOCATION"); v != "" {
		c.IndexLocation = v
	}
	if v := getenv("DOCINDEX_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := getenv("DOCINDEX_CHROMA_URL"); v != "" {
		c.Store.ChromaURL = v
	}
	if v := getenv("DOCINDEX_PROVIDER"); v != "" {
		c.AI.Provider = v
	}
	if v := getenv("DOCINDEX_EMBEDDING_HOST"); v != "" {
		c.AI.EmbeddingHost = v
	}
	if v := getenv("DOCINDEX_EMBEDDING_MODEL"); v != "" {
		c.AI.EmbeddingModel = v
	}
	if v := getenv("DOCINDEX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := getenv("DOCINDEX_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestsPerSecond = f
		}
	}

	if c.AI.APIKey == "" {
		switch strings.ToLower(strings.TrimSpace(c.AI.Provider)) {
		case ai.ProviderGemini:
			c.AI.APIKey = getenv("GEMINI_API_KEY")
		default:
			c.AI.APIKey = getenv("OPENAI_API_KEY")
		}
	}
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	switch {
	case c.Root == "":
		return errors.New("config: Root is required")
	case c.IndexLocation == "":
		return errors.New("config: IndexLocation is required")
	case c.ChunkSize <= 0:
		return fmt.Errorf("config: ChunkSize must be positive, got %d", c.ChunkSize)
	case c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize:
		return fmt.Errorf("config: ChunkOverlap must be in [0, %d), got %d", c.ChunkSize, c.ChunkOverlap)
	case c.BatchSize < 1:
		return fmt.Errorf("config: BatchSize must be at least 1, got %d", c.BatchSize)
	case c.Workers < 1:
		return fmt.Errorf("config: Workers must be at least 1, got %d", c.Workers)
	case c.LoaderWorkers < 1:
		return fmt.Errorf("config: LoaderWorkers must be at least 1, got %d", c.LoaderWorkers)
	case c.MaxRetries < 1:
		return fmt.Errorf("config: MaxRetries must be at least 1, got %d", c.MaxRetries)
	case c.RetryDelay < 0:
		return errors.New("config: RetryDelay cannot be negative")
	case c.RequestsPerSecond < 0:
		return errors.New("config: RequestsPerSecond cannot be negative")
	}

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = StoreBadger
	}
	if !slices.Contains(Stores, c.Store.Backend) {
		return fmt.Errorf("config: unknown store %q", c.Store.Backend)
	}
	return c.AI.Validate()
}
