package embedding

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmbedderRequired is returned when no embedder is supplied.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidConfig is returned for out-of-range Config values.
	ErrInvalidConfig = errors.New("invalid embedding config")

	// ErrCountMismatch is returned when the embedder returns a different
	// number of vectors than texts.
	ErrCountMismatch = errors.New("embedding count mismatch")

	// ErrEmptyVector is returned when the embedder returns a zero-length vector.
	ErrEmptyVector = errors.New("embedder returned an empty vector")
)
