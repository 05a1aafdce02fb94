package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/bububa/teachassist/components/vectordb"
)

// Engine implements the vectordb Engine with in-memory storage and cosine similarity.
type Engine struct {
	// collections stores all vector collections in memory
	collections *sync.Map
	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

// Collection is a named set of records
type Collection struct {
	// records holds the actual records in the collection, keyed by ID order of first insert
	records []vectordb.Record
	index   map[string]int
	mu      sync.RWMutex
}

// Upsert adds records, replacing existing ones with the same ID
func (c *Collection) Upsert(records ...vectordb.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index == nil {
		c.index = make(map[string]int)
	}
	for _, record := range records {
		if idx, ok := c.index[record.ID]; ok {
			c.records[idx] = record
			continue
		}
		c.index[record.ID] = len(c.records)
		c.records = append(c.records, record)
	}
}

// Records returns a copy of the stored records
func (c *Collection) Records() []vectordb.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret := make([]vectordb.Record, len(c.records))
	copy(ret, c.records)
	return ret
}

// New creates a new in-memory vector database instance.
func New(opts ...vectordb.Option) *Engine {
	return &Engine{
		collections: new(sync.Map),
		Options:     vectordb.NewOptions(vectordb.Memory, opts...),
	}
}

// HasCollection checks if a collection with the given name exists
func (e *Engine) HasCollection(name string) bool {
	_, exists := e.collections.Load(name)
	return exists
}

// DropCollection removes a collection and all its data
func (e *Engine) DropCollection(name string) {
	e.collections.Delete(name)
}

func (e *Engine) collection(name string) *Collection {
	col, _ := e.collections.LoadOrStore(name, new(Collection))
	return col.(*Collection)
}

func (e *Engine) Insert(_ context.Context, collectionName string, records ...vectordb.Record) error {
	if collectionName == "" {
		collectionName = e.Collection
	}
	docs := make([]vectordb.Record, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			record.ID = record.Embedding.UUID()
		}
		docs = append(docs, record)
	}
	e.collection(collectionName).Upsert(docs...)
	return nil
}

func (e *Engine) Search(ctx context.Context, vectors []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	option := e.SearchOptions(opts...)
	v, ok := e.collections.Load(option.Collection)
	if !ok {
		return nil, vectordb.ErrMissingCollection
	}
	col := v.(*Collection)
	records := make([]vectordb.Record, 0, vectordb.DefaultTopK)
	for _, record := range col.Records() {
		if !recordMatchesFilters(&record, &option) {
			continue
		}
		if len(record.Embedding.Embedding) != len(vectors) {
			continue
		}
		query := record.Embedding
		query.Embedding = vectors
		score, err := record.Embedding.Cosine(&query)
		if err != nil {
			continue
		}
		record.Score = score
		records = append(records, record)
	}
	vectordb.SortByScore(records)
	topK := min(option.TopK, len(records))
	return records[:topK], nil
}

// recordMatchesFilters checks if a record matches metadata and content filters.
func recordMatchesFilters(record *vectordb.Record, opts *vectordb.SearchOptions) bool {
	// A record's metadata must have all the fields in the where clause.
	for k, v := range opts.Meta {
		if record.Embedding.Meta[k] != v {
			return false
		}
	}
	text := record.Text()
	if opts.Include != "" && !strings.Contains(text, opts.Include) {
		return false
	}
	if opts.Exclude != "" && strings.Contains(text, opts.Exclude) {
		return false
	}
	return true
}
