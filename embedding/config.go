package embedding

import (
	"fmt"
	"time"
)

const (
	// DefaultBatchSize is the default number of chunks per embedding request.
	DefaultBatchSize = 64
)

// Config controls batching, concurrency and retry behavior.
type Config struct {
	// BatchSize is the number of chunks sent in each embedding request
	BatchSize int

	// Workers is the number of batches embedded concurrently
	Workers int

	// MaxRetries is the maximum number of attempts per batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// RequestsPerSecond caps embedding requests; zero means unlimited
	RequestsPerSecond float64
}

// DefaultConfig returns a Config suitable for a local embedding server.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:  DefaultBatchSize,
		Workers:    4,
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
	}
}

// Validate checks that all values are in range.
func (c *Config) Validate() error {
	switch {
	case c.BatchSize < 1:
		return fmt.Errorf("%w: batch size must be at least 1, got %d", ErrInvalidConfig, c.BatchSize)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	case c.MaxRetries < 1:
		return fmt.Errorf("%w: max retries must be at least 1, got %d", ErrInvalidConfig, c.MaxRetries)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry delay cannot be negative", ErrInvalidConfig)
	case c.RequestsPerSecond < 0:
		return fmt.Errorf("%w: requests per second cannot be negative", ErrInvalidConfig)
	}
	return nil
}
