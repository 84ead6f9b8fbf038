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


package chunker

import "errors"

var (
	// ErrInvalidChunkConfig indicates a non-positive chunk size, a negative
	// overlap, or an overlap that is not smaller than the chunk size.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// ErrNoSeparators is returned when an empty separator list is configured.
	ErrNoSeparators = errors.New("at least one separator required")
)
