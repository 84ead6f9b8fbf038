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


// Package chunker splits documents into overlapping, bounded chunks.
//
// Splitting works on runes. Each chunk holds at most ChunkSize runes and
// consecutive chunks of one document share exactly Overlap runes, so the
// original content can be reassembled as
//
//	chunks[0].Text + chunks[1].Text[overlap:] + ... + chunks[k].Text[overlap:]
//
// A chunk ends at the latest boundary of the coarsest separator that fits in
// the window, trying paragraph, line, sentence and word breaks before cutting
// at an arbitrary character. Splitting is deterministic.
//
// A Splitter also satisfies langchaingo's textsplitter.TextSplitter.
package chunker
