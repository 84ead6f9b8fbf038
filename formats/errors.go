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

import "errors"

var (
	// ErrInvalidEncoding indicates file bytes are not valid in the requested encoding.
	ErrInvalidEncoding = errors.New("invalid byte sequence for encoding")

	// ErrUnknownEncoding indicates an encoding name that cannot be resolved.
	ErrUnknownEncoding = errors.New("unknown encoding")

	// ErrInvalidExtension indicates an extension without a leading dot.
	ErrInvalidExtension = errors.New("extension must start with a dot")

	// ErrDuplicateExtension indicates an extension is already registered.
	ErrDuplicateExtension = errors.New("extension already registered")

	// ErrLoaderRequired is returned when registering a nil loader.
	ErrLoaderRequired = errors.New("format loader required")
)
