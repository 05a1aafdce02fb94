package vectordb

import (
	"context"
	"errors"
)

type EngineType string

const (
	Memory   EngineType = "memory"
	Chromem  EngineType = "chromem"
	Milvus   EngineType = "milvus"
	Pinecone EngineType = "pinecone"
)

// ErrMissingCollection is returned when searching a collection that was never written
var ErrMissingCollection = errors.New("missing collection")

// Engine stores embedded passages and answers nearest neighbour queries.
// Search returns records by descending relevance score.
type Engine interface {
	Insert(ctx context.Context, collection string, records ...Record) error
	Search(ctx context.Context, vectors []float64, opts ...SearchOption) ([]Record, error)
}
