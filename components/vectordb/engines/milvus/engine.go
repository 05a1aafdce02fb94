package milvus

import (
	"context"
	"encoding/json"
	"fmt"

	milvusClient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/bububa/teachassist/components/vectordb"
)

const (
	idField        = "id"
	embeddingField = "embedding"
	contentField   = "content"
	metaField      = "meta"
)

// API is the part of the milvus client used by the engine
type API interface {
	HasCollection(ctx context.Context, collName string) (bool, error)
	CreateCollection(ctx context.Context, schema *entity.Schema, shardsNum int32, opts ...milvusClient.CreateCollectionOption) error
	CreateIndex(ctx context.Context, collName string, fieldName string, idx entity.Index, async bool, opts ...milvusClient.IndexOption) error
	LoadCollection(ctx context.Context, collName string, async bool, opts ...milvusClient.LoadCollectionOption) error
	Insert(ctx context.Context, collName string, partitionName string, columns ...entity.Column) (entity.Column, error)
	Flush(ctx context.Context, collName string, async bool, opts ...milvusClient.FlushOption) error
	Search(ctx context.Context, collName string, partitions []string,
		expr string, outputFields []string, vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int, sp entity.SearchParam, opts ...milvusClient.SearchQueryOptionFunc) ([]milvusClient.SearchResult, error)
}

type Engine struct {
	db API
	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

func New(db API, opts ...vectordb.Option) *Engine {
	return &Engine{
		db:      db,
		Options: vectordb.NewOptions(vectordb.Milvus, opts...),
	}
}

func (e *Engine) CreateCollection(ctx context.Context, name string, dim int64) error {
	schema := entity.NewSchema().WithName(name).WithAutoID(false).
		WithField(entity.NewField().WithName(idField).WithDataType(entity.FieldTypeVarChar).WithMaxLength(36).WithIsPrimaryKey(true).WithIsAutoID(false)).
		WithField(entity.NewField().WithName(embeddingField).WithDataType(entity.FieldTypeFloatVector).WithDim(dim)).
		WithField(entity.NewField().WithName(contentField).WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
		WithField(entity.NewField().WithName(metaField).WithDataType(entity.FieldTypeJSON))
	if err := e.db.CreateCollection(ctx, schema, 0); err != nil {
		return err
	}
	idxHnsw, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
	if err != nil {
		return err
	}
	return e.db.CreateIndex(ctx, name, embeddingField, idxHnsw, false, milvusClient.WithIndexName("embedding_idx"))
}

func (e *Engine) Insert(ctx context.Context, collectionName string, records ...vectordb.Record) error {
	if len(records) == 0 {
		return nil
	}
	if collectionName == "" {
		collectionName = e.Collection
	}
	ctx, cancel := e.Bound(ctx)
	defer cancel()
	dim := len(records[0].Embedding.Embedding)
	if exists, err := e.db.HasCollection(ctx, collectionName); err != nil {
		return err
	} else if !exists {
		if err := e.CreateCollection(ctx, collectionName, int64(dim)); err != nil {
			return err
		}
	}
	var (
		ids      = make([]string, 0, len(records))
		vectors  = make([][]float32, 0, len(records))
		contents = make([]string, 0, len(records))
		metas    = make([][]byte, 0, len(records))
	)
	for _, record := range records {
		if len(record.Embedding.Embedding) != dim {
			return fmt.Errorf("record %s: dimension %d, want %d", record.ID, len(record.Embedding.Embedding), dim)
		}
		if record.ID == "" {
			record.ID = record.Embedding.UUID()
		}
		meta := record.Embedding.Meta
		if meta == nil {
			meta = map[string]string{}
		}
		bs, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		ids = append(ids, record.ID)
		vectors = append(vectors, record.Embedding.Float32s())
		contents = append(contents, record.Embedding.Object)
		metas = append(metas, bs)
	}
	if _, err := e.db.Insert(ctx, collectionName, "",
		entity.NewColumnVarChar(idField, ids),
		entity.NewColumnFloatVector(embeddingField, dim, vectors),
		entity.NewColumnVarChar(contentField, contents),
		entity.NewColumnJSONBytes(metaField, metas),
	); err != nil {
		return err
	}
	return e.db.Flush(ctx, collectionName, false)
}

// Search performs vector similarity search on a collection.
func (e *Engine) Search(ctx context.Context, vectors []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	option := e.SearchOptions(opts...)
	ctx, cancel := e.Bound(ctx)
	defer cancel()
	if exists, err := e.db.HasCollection(ctx, option.Collection); err != nil {
		return nil, err
	} else if !exists {
		return nil, vectordb.ErrMissingCollection
	}
	if err := e.db.LoadCollection(ctx, option.Collection, false); err != nil {
		return nil, err
	}
	searchParams, err := entity.NewIndexHNSWSearchParam(max(option.TopK, 16))
	if err != nil {
		return nil, err
	}
	outputFields := e.Columns
	if len(outputFields) == 0 {
		outputFields = []string{idField, contentField, metaField}
	}
	results, err := e.db.Search(ctx, option.Collection, nil, "", outputFields,
		[]entity.Vector{entity.FloatVector(vectordb.Float32s(vectors))},
		embeddingField, entity.COSINE, option.TopK, searchParams)
	if err != nil {
		return nil, err
	}
	var records []vectordb.Record
	// one result set per query vector
	for _, result := range results {
		if result.Err != nil {
			return nil, result.Err
		}
		for idx := range result.ResultCount {
			var record vectordb.Record
			searchResultToRecord(&result, idx, &record)
			records = append(records, record)
		}
	}
	vectordb.SortByScore(records)
	return records, nil
}

func searchResultToRecord(result *milvusClient.SearchResult, idx int, record *vectordb.Record) {
	if idx < len(result.Scores) {
		record.Score = float64(result.Scores[idx])
	}
	if result.IDs != nil {
		record.ID, _ = result.IDs.GetAsString(idx)
	}
	if col := result.Fields.GetColumn(contentField); col != nil {
		record.Embedding.Object, _ = col.GetAsString(idx)
	}
	if col := result.Fields.GetColumn(metaField); col != nil {
		if v, err := col.Get(idx); err == nil {
			if bs, ok := v.([]byte); ok {
				_ = json.Unmarshal(bs, &record.Embedding.Meta)
			}
		}
	}
}
