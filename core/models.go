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

import (
	"encoding/binary"
	"fmt"
	"maps"

	"github.com/go-crypt/x/blake2b"
)

// Metadata keys set by loaders and the chunker.
const (
	MetaSource      = "source"
	MetaFormat      = "format"
	MetaEncoding    = "encoding"
	MetaPage        = "page"
	MetaTotalPages  = "total_pages"
	MetaRow         = "row"
	MetaStartOffset = "start_offset"
)

// ID is a unique identifier for chunks.
// It is derived from content, so identical input yields identical IDs across rebuilds.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is one unit of loaded content: a PDF page, a CSV row, or a whole
// text or XML file.
type Document struct {
	Content  string
	Metadata map[string]any
}

// Source returns the file path the document was loaded from.
func (d *Document) Source() string {
	s, _ := d.Metadata[MetaSource].(string)
	return s
}

// Chunk is a bounded window of a Document's content. StartOffset is measured
// in runes from the beginning of the parent content.
type Chunk struct {
	ID          ID
	Text        string
	StartOffset int
	Metadata    map[string]any
}

// NewChunk builds a chunk of doc starting at offset. The parent metadata is
// copied so chunks never share a map with their document.
func NewChunk(doc *Document, text string, offset int) Chunk {
	md := make(map[string]any, len(doc.Metadata)+1)
	maps.Copy(md, doc.Metadata)
	md[MetaStartOffset] = offset
	return Chunk{
		ID:          ChunkID(md, offset, text),
		Text:        text,
		StartOffset: offset,
		Metadata:    md,
	}
}

// ChunkID derives a stable ID from a chunk's provenance and text.
func ChunkID(md map[string]any, offset int, text string) ID {
	return IDFromContent(fmt.Sprintf("%v|%v|%v|%d|%s",
		md[MetaSource], md[MetaPage], md[MetaRow], offset, text))
}

// StoredChunk is a chunk paired with its embedding as persisted in an index.
// Seq records emission order within one rebuild.
type StoredChunk struct {
	Seq    uint64
	Chunk  Chunk
	Vector []float32
}
