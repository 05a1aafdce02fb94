package embedder

import (
	"context"
	"errors"
	"math"

	"github.com/bububa/teachassist/components"
)

var (
	// ErrEmptyEmbedding is returned when the service answers without a vector
	ErrEmptyEmbedding = errors.New("empty embedding")
	// ErrVectorLengthMismatch is returned when comparing vectors of different dimensions
	ErrVectorLengthMismatch = errors.New("vector length mismatch")
)

// Embedder turns text into vectors through a hosted embedding service
type Embedder interface {
	Provider() Provider
	Model() string
	Embed(ctx context.Context, text string, embedding *Embedding, usage *components.LLMUsage) error
	BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]Embedding, error)
}

// EmbedChunks embeds every chunk in one batch and pairs each vector with its chunk
func EmbedChunks(ctx context.Context, embedder Embedder, chunks []Chunk, usage *components.LLMUsage) ([]EmbeddedChunk, error) {
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.Text)
	}
	ret, err := embedder.BatchEmbed(ctx, parts, usage)
	if err != nil {
		return nil, err
	}
	embeddedChunks := make([]EmbeddedChunk, 0, len(ret))
	for _, v := range ret {
		if v.Index < 0 || v.Index >= len(chunks) {
			continue
		}
		embeddedChunks = append(embeddedChunks, EmbeddedChunk{
			Embedding: v,
			Chunk:     &chunks[v.Index],
		})
	}
	return embeddedChunks, nil
}

// DotProduct calculates the dot product of the embedding vector with another embedding vector.
func (e *Embedding) DotProduct(other *Embedding) (float64, error) {
	if len(e.Embedding) != len(other.Embedding) {
		return 0, ErrVectorLengthMismatch
	}
	var dotProduct float64
	for i := range e.Embedding {
		dotProduct += e.Embedding[i] * other.Embedding[i]
	}
	return dotProduct, nil
}

// Cosine returns the cosine similarity in [-1, 1]; zero vectors score 0
func (e *Embedding) Cosine(other *Embedding) (float64, error) {
	dot, err := e.DotProduct(other)
	if err != nil {
		return 0, err
	}
	na, nb := e.Norm(), other.Norm()
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (na * nb), nil
}

// Norm returns the euclidean length of the vector
func (e *Embedding) Norm() float64 {
	var sum float64
	for _, v := range e.Embedding {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// IsEmpty reports whether the embedding carries no vector
func (e *Embedding) IsEmpty() bool {
	return e == nil || len(e.Embedding) == 0
}

// Float32s returns the vector as float32, the format most vector indexes expect
func (e *Embedding) Float32s() []float32 {
	ret := make([]float32, len(e.Embedding))
	for i, v := range e.Embedding {
		ret[i] = float32(v)
	}
	return ret
}

// FromFloat32s fills the vector from float32 values
func (e *Embedding) FromFloat32s(values []float32) {
	e.Embedding = make([]float64, len(values))
	for i, v := range values {
		e.Embedding[i] = float64(v)
	}
}
