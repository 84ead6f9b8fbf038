package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestDocument_Source(t *testing.T) {
	doc := Document{Metadata: map[string]any{MetaSource: "data/a.txt"}}
	if got := doc.Source(); got != "data/a.txt" {
		t.Errorf("Source() = %q, want %q", got, "data/a.txt")
	}

	empty := Document{}
	if got := empty.Source(); got != "" {
		t.Errorf("Source() on empty metadata = %q, want empty", got)
	}
}

func TestNewChunk(t *testing.T) {
	doc := &Document{
		Content:  "hello world",
		Metadata: map[string]any{MetaSource: "a.txt", MetaPage: 2},
	}

	chunk := NewChunk(doc, "world", 6)

	if chunk.StartOffset != 6 {
		t.Errorf("StartOffset = %d, want 6", chunk.StartOffset)
	}
	if chunk.Metadata[MetaStartOffset] != 6 {
		t.Errorf("start_offset metadata = %v, want 6", chunk.Metadata[MetaStartOffset])
	}
	if chunk.Metadata[MetaPage] != 2 {
		t.Errorf("page metadata not inherited: %v", chunk.Metadata[MetaPage])
	}
	if _, ok := doc.Metadata[MetaStartOffset]; ok {
		t.Errorf("NewChunk mutated the parent document metadata")
	}
	if chunk.ID == 0 {
		t.Errorf("NewChunk produced a zero ID")
	}
}

func TestChunkID_DistinguishesProvenance(t *testing.T) {
	a := ChunkID(map[string]any{MetaSource: "a.txt"}, 0, "same text")
	b := ChunkID(map[string]any{MetaSource: "b.txt"}, 0, "same text")
	c := ChunkID(map[string]any{MetaSource: "a.txt"}, 10, "same text")

	if a == b || a == c {
		t.Errorf("ChunkID collided across sources or offsets: %d %d %d", a, b, c)
	}
	if a != ChunkID(map[string]any{MetaSource: "a.txt"}, 0, "same text") {
		t.Errorf("ChunkID is not deterministic")
	}
}
