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



// Package storage provides the vector store abstraction the index builder
// writes to.
//
// A VectorStore manages whole indexes addressed by location. Indexes are
// written once through an IndexWriter, committed, and then read through an
// IndexReader; there is no in-place update. Full rebuilds create a new
// location, write it, and Clear the old one.
//
// # Constructor Return Type Pattern
//
// Public constructors return the VectorStore interface to prevent coupling
// to a backend:
//
//	store, err := badger.NewStore()   // returns storage.VectorStore
//	store, err := chroma.NewStore()   // returns storage.VectorStore
//
// # Implementations
//
//   - storage/badger: embedded BadgerDB, one database directory per location
//   - storage/chroma: remote Chroma server, one collection per location
//
// # Serialization
//
// Local stores persist chunks with MarshalStoredChunk, a compact versioned
// binary layout. Metadata values keep their type for strings, integers,
// floats and booleans.
//
// # Context Support
//
// All blocking methods accept context.Context for cancellation.
package storage
