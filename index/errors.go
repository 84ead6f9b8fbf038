package index

import (
	"errors"
	"fmt"

	"github.com/poiesic/docindex/loader"
)

var (
	// ErrRootNotFound indicates the corpus root is missing or not a directory.
	ErrRootNotFound = loader.ErrRootNotFound

	// ErrIndexLocked indicates another rebuild holds the location lock.
	ErrIndexLocked = errors.New("index location is locked by another rebuild")

	// ErrNoActiveIndex indicates the location has no committed generation.
	ErrNoActiveIndex = errors.New("no active index at location")

	// ErrStoreRequired is returned when no vector store is supplied.
	ErrStoreRequired = errors.New("vector store is required")

	// ErrEmbedderRequired is returned when no embedder is supplied.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidManifest indicates a CURRENT file that does not name a generation.
	ErrInvalidManifest = errors.New("invalid index manifest")
)

// Stage names the rebuild step that failed.
type Stage string

const (
	StageLoad  Stage = "load"
	StageSplit Stage = "split"
	StageEmbed Stage = "embed"
	StageWrite Stage = "write"
	StageSwap  Stage = "swap"
	StageClear Stage = "clear"
)

// RebuildError reports a failed rebuild and the stage it failed in.
type RebuildError struct {
	Stage Stage
	Err   error
}

func (e *RebuildError) Error() string {
	return fmt.Sprintf("rebuild failed at %s: %v", e.Stage, e.Err)
}

func (e *RebuildError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, err error) error {
	return &RebuildError{Stage: stage, Err: err}
}
