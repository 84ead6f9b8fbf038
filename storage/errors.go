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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested index does not exist.
	ErrNotFound = errors.New("index not found")

	// ErrIndexExists indicates Create was called on a location that already holds an index.
	ErrIndexExists = errors.New("index already exists")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrWriterClosed indicates a writer was used after Commit or Abort.
	ErrWriterClosed = errors.New("index writer is closed")

	// ErrLengthMismatch indicates chunks and vectors of different lengths.
	ErrLengthMismatch = errors.New("chunk and vector counts differ")

	// ErrDimensionMismatch indicates a vector whose size differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrNotSupported indicates an operation the store cannot perform.
	ErrNotSupported = errors.New("operation not supported by store")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData indicates that data was truncated during reading.
	ErrTruncatedData = errors.New("truncated data")
)
