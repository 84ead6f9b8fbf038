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


package embedding

import "github.com/poiesic/docindex/core"

// Batches partitions chunks into consecutive batches of at most size
// chunks, preserving order. The batches share the backing array.
func Batches(chunks []core.Chunk, size int) [][]core.Chunk {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if len(chunks) == 0 {
		return nil
	}

	batches := make([][]core.Chunk, 0, (len(chunks)+size-1)/size)
	for i := 0; i < len(chunks); i += size {
		end := min(i+size, len(chunks))
		batches = append(batches, chunks[i:end:end])
	}
	return batches
}
