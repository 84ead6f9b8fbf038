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

import "slices"

// span is a half-open rune range [start, end).
type span struct {
	start, end int
}

// spans computes chunk windows over text.
//
// A window starts at start and may extend to start+chunkSize. Unless the
// rest of the text fits, it ends at the last separator boundary inside
// (start+overlap, start+chunkSize], so the next window, which begins at
// end-overlap, always advances. A full-length window that reaches the end
// of a document longer than chunkSize is followed by one tail window
// holding the final overlap runes.
func (s *Splitter) spans(text []rune) []span {
	n := len(text)
	if n == 0 {
		return nil
	}
	if n <= s.chunkSize {
		return []span{{0, n}}
	}

	var out []span
	start := 0
	for {
		limit := start + s.chunkSize
		end := n
		if limit < n {
			end = s.boundary(text, start, limit)
		}
		out = append(out, span{start, end})
		if end == n && end-start < s.chunkSize {
			return out
		}
		start = end - s.overlap
		if start >= n {
			return out
		}
	}
}

// boundary returns the end of the window starting at start whose hard limit
// is limit < len(text).
func (s *Splitter) boundary(text []rune, start, limit int) int {
	floor := start + s.overlap
	for _, sep := range s.separators {
		if len(sep) == 0 {
			return limit
		}
		if b := lastBoundary(text, sep, floor, limit); b > 0 {
			return b
		}
	}
	return limit
}

// lastBoundary finds the largest b in (floor, limit] such that sep ends at b.
// It returns -1 when there is none.
func lastBoundary(text, sep []rune, floor, limit int) int {
	for b := limit; b > floor; b-- {
		i := b - len(sep)
		if i < 0 {
			break
		}
		if slices.Equal(text[i:b], sep) {
			return b
		}
	}
	return -1
}
