package chromem

import (
	"context"
	"runtime"

	"github.com/philippgille/chromem-go"

	"github.com/bububa/teachassist/components/vectordb"
)

// Engine stores passages in a chromem-go database, persistent when the DB was opened with NewPersistentDB
type Engine struct {
	db *chromem.DB
	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

func New(db *chromem.DB, opts ...vectordb.Option) *Engine {
	return &Engine{
		db:      db,
		Options: vectordb.NewOptions(vectordb.Chromem, opts...),
	}
}

// Open opens or creates a persistent database at path
func Open(path string, opts ...vectordb.Option) (*Engine, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, err
	}
	return New(db, opts...), nil
}

func collectionName(name string) string {
	if name == "" {
		return vectordb.DefaultCollection
	}
	return name
}

func (e *Engine) collection(name string) (*chromem.Collection, error) {
	return e.db.GetOrCreateCollection(collectionName(name), nil, nil)
}

func (e *Engine) Insert(ctx context.Context, name string, records ...vectordb.Record) error {
	if len(records) == 0 {
		return nil
	}
	if name == "" {
		name = e.Collection
	}
	col, err := e.collection(name)
	if err != nil {
		return err
	}
	docs := make([]chromem.Document, 0, len(records))
	for _, record := range records {
		var doc chromem.Document
		recordToDocument(&record, &doc)
		docs = append(docs, doc)
	}
	return col.AddDocuments(ctx, docs, runtime.NumCPU())
}

// Search performs vector similarity search on a collection.
func (e *Engine) Search(ctx context.Context, vectors []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	option := e.SearchOptions(opts...)
	col := e.db.GetCollection(collectionName(option.Collection), nil)
	if col == nil {
		return nil, vectordb.ErrMissingCollection
	}
	// chromem rejects nResults above the collection size
	topK := min(option.TopK, col.Count())
	if topK == 0 {
		return nil, nil
	}
	whereDocument := make(map[string]string, 2)
	if option.Include != "" {
		whereDocument["$contains"] = option.Include
	}
	if option.Exclude != "" {
		whereDocument["$not_contains"] = option.Exclude
	}
	results, err := col.QueryEmbedding(ctx, vectordb.Float32s(vectors), topK, option.Meta, whereDocument)
	if err != nil {
		return nil, err
	}
	records := make([]vectordb.Record, 0, len(results))
	for _, result := range results {
		var rec vectordb.Record
		resultToRecord(&result, &rec)
		records = append(records, rec)
	}
	vectordb.SortByScore(records)
	return records, nil
}

func resultToRecord(res *chromem.Result, record *vectordb.Record) {
	record.ID = res.ID
	record.Score = float64(res.Similarity)
	record.Embedding.Object = res.Content
	record.Embedding.Meta = res.Metadata
	record.Embedding.FromFloat32s(res.Embedding)
}

func recordToDocument(record *vectordb.Record, doc *chromem.Document) {
	if record.ID == "" {
		record.ID = record.Embedding.UUID()
	}
	doc.ID = record.ID
	doc.Content = record.Embedding.Object
	doc.Metadata = record.Embedding.Meta
	doc.Embedding = record.Embedding.Float32s()
}
