package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSentenceSplitter(t *testing.T) {
	got := DefaultSentenceSplitter(`Shellbeehaken Ltd opens at 9. Is it open on Sunday? She said "no. never". Done!`)
	assert.Equal(t, []string{
		"Shellbeehaken Ltd opens at 9.",
		"Is it open on Sunday?",
		`She said "no. never".`,
		"Done!",
	}, got)
}

func TestTextChunker(t *testing.T) {
	text := "one two three. four five six. seven eight nine. ten eleven twelve."

	t.Run("Should group sentences with overlap", func(t *testing.T) {
		tc := NewTextChunker(WithChunkSize(6), WithChunkOverlap(3))
		chunks := tc.Chunk(text)
		require.Len(t, chunks, 3)
		assert.Equal(t, "one two three. four five six.", chunks[0].Text)
		assert.Equal(t, "four five six. seven eight nine.", chunks[1].Text)
		assert.Equal(t, "seven eight nine. ten eleven twelve.", chunks[2].Text)
		for _, c := range chunks {
			assert.Equal(t, 6, c.TokenSize)
		}
	})

	t.Run("Should keep everything in one chunk when it fits", func(t *testing.T) {
		chunks := NewTextChunker().Chunk(text)
		require.Len(t, chunks, 1)
		assert.Equal(t, 0, chunks[0].StartSentence)
		assert.Equal(t, 4, chunks[0].EndSentence)
	})

	t.Run("Should return nothing for blank text", func(t *testing.T) {
		assert.Empty(t, NewTextChunker().Chunk("   "))
	})
}

func TestEmbeddingMath(t *testing.T) {
	a := &Embedding{Embedding: []float64{1, 0}}
	b := &Embedding{Embedding: []float64{1, 1}}
	cos, err := a.Cosine(b)
	require.NoError(t, err)
	assert.InDelta(t, 0.7071, cos, 0.001)

	_, err = a.DotProduct(&Embedding{Embedding: []float64{1}})
	assert.ErrorIs(t, err, ErrVectorLengthMismatch)

	zero, err := a.Cosine(&Embedding{Embedding: []float64{0, 0}})
	require.NoError(t, err)
	assert.Zero(t, zero)

	assert.True(t, (&Embedding{}).IsEmpty())
	assert.Equal(t, []float32{1, 0}, a.Float32s())
}

func TestEmbeddingUUID(t *testing.T) {
	a := Embedding{Object: "hello", Meta: map[string]string{"source": "a.md", "chunk": "1"}}
	b := Embedding{Object: "hello", Meta: map[string]string{"chunk": "1", "source": "a.md"}}
	c := Embedding{Object: "hello", Meta: map[string]string{"source": "b.md", "chunk": "1"}}
	assert.Equal(t, a.UUID(), b.UUID())
	assert.NotEqual(t, a.UUID(), c.UUID())
}
