package loader

import "errors"

var (
	// ErrRootNotFound indicates the corpus root is missing or not a directory.
	ErrRootNotFound = errors.New("corpus root not found")

	// ErrFormatFailed wraps a file failure that emptied a format batch.
	ErrFormatFailed = errors.New("format batch failed")

	// ErrRegistryRequired is returned when a nil registry is supplied.
	ErrRegistryRequired = errors.New("format registry is required")
)
