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


package core

import "errors"

var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrMissingSource indicates the source metadata field is absent.
	ErrMissingSource = errors.New("source metadata is required")

	// ErrEmptyContent indicates the text of a chunk is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrNegativeOffset indicates a chunk start offset below zero.
	ErrNegativeOffset = errors.New("start offset cannot be negative")

	// ErrUnknownVersion indicates an encoded record with an unsupported format version.
	ErrUnknownVersion = errors.New("unknown record version")

	// ErrUnknownValueKind indicates an encoded metadata value with an unknown kind tag.
	ErrUnknownValueKind = errors.New("unknown metadata value kind")

	// ErrLengthOutOfRange indicates an encoded length that is negative or
	// larger than the remaining input.
	ErrLengthOutOfRange = errors.New("encoded length out of range")
)
