package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/docindex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(content string) core.Document {
	return core.Document{
		Content:  content,
		Metadata: map[string]any{core.MetaSource: "corpus/a.txt", core.MetaFormat: "text"},
	}
}

func offsets(chunks []core.Chunk) []int {
	out := make([]int, len(chunks))
	for i, c := range chunks {
		out[i] = c.StartOffset
	}
	return out
}

func lengths(chunks []core.Chunk) []int {
	out := make([]int, len(chunks))
	for i, c := range chunks {
		out[i] = utf8.RuneCountInString(c.Text)
	}
	return out
}

// reassemble undoes the overlap between consecutive chunks.
func reassemble(chunks []core.Chunk, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		r := []rune(c.Text)
		if i > 0 {
			r = r[overlap:]
		}
		b.WriteString(string(r))
	}
	return b.String()
}

func TestNew_Defaults(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	assert.Equal(t, DefaultChunkSize, s.ChunkSize())
	assert.Equal(t, DefaultOverlap, s.Overlap())
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -5, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithChunkSize(tt.size), WithOverlap(tt.overlap))
			assert.ErrorIs(t, err, ErrInvalidChunkConfig)
		})
	}

	_, err := New(WithSeparators())
	assert.ErrorIs(t, err, ErrNoSeparators)
}

func TestSplit_FixedWindowWithoutSeparators(t *testing.T) {
	chunks, err := Split([]core.Document{doc(strings.Repeat("a", 500))}, 300, 100)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 200, 400}, offsets(chunks))
	assert.Equal(t, []int{300, 300, 100}, lengths(chunks))
}

func TestSplit_EdgeCases(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	t.Run("empty document yields nothing", func(t *testing.T) {
		chunks, err := s.Split([]core.Document{doc("")})
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("short document yields one chunk", func(t *testing.T) {
		chunks, err := s.Split([]core.Document{doc("just a short note.")})
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "just a short note.", chunks[0].Text)
		assert.Equal(t, 0, chunks[0].StartOffset)
	})

	t.Run("document of exactly chunk size yields one chunk", func(t *testing.T) {
		chunks, err := s.Split([]core.Document{doc(strings.Repeat("x", DefaultChunkSize))})
		require.NoError(t, err)
		require.Len(t, chunks, 1)
	})

	t.Run("no documents", func(t *testing.T) {
		chunks, err := s.Split(nil)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}

func TestSplit_PrefersCoarseSeparators(t *testing.T) {
	s, err := New(WithChunkSize(20), WithOverlap(5))
	require.NoError(t, err)

	text := "aaaa bbbb\n\ncccc dddd eeee ffff"
	chunks, err := s.Split([]core.Document{doc(text)})
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	assert.Equal(t, "aaaa bbbb\n\n", chunks[0].Text)
	assert.Equal(t, []int{0, 6, 21}, offsets(chunks))
	assert.Equal(t, text, reassemble(chunks, 5))
}

func TestSplit_Invariants(t *testing.T) {
	para := "The quick brown fox jumps over the lazy dog. It was not amused.\n" +
		"A second line follows here. And then another sentence.\n\n"
	text := strings.Repeat(para, 12)

	for _, cfg := range []struct{ size, overlap int }{{300, 100}, {120, 30}, {50, 0}, {64, 63}} {
		s, err := New(WithChunkSize(cfg.size), WithOverlap(cfg.overlap))
		require.NoError(t, err)

		chunks, err := s.Split([]core.Document{doc(text)})
		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		assert.Equal(t, 0, chunks[0].StartOffset)
		for i, c := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), cfg.size)
			assert.Equal(t, c.StartOffset, c.Metadata[core.MetaStartOffset])
			require.NoError(t, core.ValidateChunk(&c))
			if i == 0 {
				continue
			}
			prev := []rune(chunks[i-1].Text)
			cur := []rune(c.Text)
			assert.Greater(t, c.StartOffset, chunks[i-1].StartOffset, "offsets must strictly increase")
			assert.Equal(t, chunks[i-1].StartOffset+len(prev)-cfg.overlap, c.StartOffset)
			assert.Equal(t, string(prev[len(prev)-cfg.overlap:]), string(cur[:cfg.overlap]))
		}
		assert.Equal(t, text, reassemble(chunks, cfg.overlap))
	}
}

func TestSplit_CountsRunes(t *testing.T) {
	chunks, err := Split([]core.Document{doc(strings.Repeat("é", 500))}, 300, 100)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 200, 400}, offsets(chunks))
	assert.Equal(t, []int{300, 300, 100}, lengths(chunks))
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("Determinism matters for reproducible indexes. ", 40)
	first, err := Split([]core.Document{doc(text)}, 300, 100)
	require.NoError(t, err)
	second, err := Split([]core.Document{doc(text)}, 300, 100)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSplit_KeepsDocumentOrderAndMetadata(t *testing.T) {
	docs := []core.Document{
		{Content: strings.Repeat("p1 ", 150), Metadata: map[string]any{core.MetaSource: "a.pdf", core.MetaPage: 1}},
		{Content: strings.Repeat("p2 ", 150), Metadata: map[string]any{core.MetaSource: "a.pdf", core.MetaPage: 2}},
	}
	chunks, err := Split(docs, 300, 100)
	require.NoError(t, err)

	lastPage := 0
	for _, c := range chunks {
		page := c.Metadata[core.MetaPage].(int)
		assert.GreaterOrEqual(t, page, lastPage)
		lastPage = page
		assert.Equal(t, "a.pdf", c.Metadata[core.MetaSource])
	}
	_, mutated := docs[0].Metadata[core.MetaStartOffset]
	assert.False(t, mutated)
}

func TestSplitText_MatchesSplit(t *testing.T) {
	s, err := New(WithChunkSize(40), WithOverlap(10))
	require.NoError(t, err)

	text := strings.Repeat("word ", 50)
	texts, err := s.SplitText(text)
	require.NoError(t, err)

	chunks := s.SplitDocument(&core.Document{Content: text, Metadata: map[string]any{core.MetaSource: "x"}})
	require.Len(t, texts, len(chunks))
	for i := range chunks {
		assert.Equal(t, chunks[i].Text, texts[i])
	}
}

func TestWithSeparators_AppendsCharacterFallback(t *testing.T) {
	s, err := New(WithChunkSize(10), WithOverlap(2), WithSeparators("|"))
	require.NoError(t, err)

	texts, err := s.SplitText(strings.Repeat("z", 25))
	require.NoError(t, err)
	assert.Equal(t, []string{strings.Repeat("z", 10), strings.Repeat("z", 10), strings.Repeat("z", 9)}, texts)
}
