package pinecone

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/bububa/teachassist/components/vectordb"
)

// upsertBatchSize is the largest batch pinecone accepts for dense vectors of common sizes
const upsertBatchSize = 100

// IndexConn is the part of pinecone.IndexConnection used by the engine
type IndexConn interface {
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
	UpsertVectors(ctx context.Context, in []*pinecone.Vector) (uint32, error)
}

// Connector opens an index connection bound to a namespace
type Connector func(namespace string) (IndexConn, error)

// Connect resolves the index host once and returns a Connector for it
func Connect(ctx context.Context, client *pinecone.Client, indexName string) (Connector, error) {
	idx, err := client.DescribeIndex(ctx, indexName)
	if err != nil {
		return nil, fmt.Errorf("describe pinecone index %s: %w", indexName, err)
	}
	return func(namespace string) (IndexConn, error) {
		return client.Index(pinecone.NewIndexConnParams{
			Host:      idx.Host,
			Namespace: namespace,
		})
	}, nil
}

// Engine searches a pinecone index; collections map to namespaces
type Engine struct {
	connect Connector
	conns   sync.Map
	mtx     sync.Mutex
	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

func New(connect Connector, opts ...vectordb.Option) *Engine {
	return &Engine{
		connect: connect,
		Options: vectordb.NewOptions(vectordb.Pinecone, append([]vectordb.Option{vectordb.WithCollection("")}, opts...)...),
	}
}

func (e *Engine) conn(namespace string) (IndexConn, error) {
	if v, ok := e.conns.Load(namespace); ok {
		return v.(IndexConn), nil
	}
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if v, ok := e.conns.Load(namespace); ok {
		return v.(IndexConn), nil
	}
	conn, err := e.connect(namespace)
	if err != nil {
		return nil, err
	}
	e.conns.Store(namespace, conn)
	return conn, nil
}

func (e *Engine) Insert(ctx context.Context, namespace string, records ...vectordb.Record) error {
	if len(records) == 0 {
		return nil
	}
	if namespace == "" {
		namespace = e.Collection
	}
	conn, err := e.conn(namespace)
	if err != nil {
		return err
	}
	ctx, cancel := e.Bound(ctx)
	defer cancel()
	vectors := make([]*pinecone.Vector, 0, len(records))
	for _, record := range records {
		vector, err := recordToVector(record)
		if err != nil {
			return err
		}
		vectors = append(vectors, vector)
	}
	for start := 0; start < len(vectors); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(vectors))
		if _, err := conn.UpsertVectors(ctx, vectors[start:end]); err != nil {
			return fmt.Errorf("pinecone upsert: %w", err)
		}
	}
	return nil
}

func (e *Engine) Search(ctx context.Context, vectors []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	option := e.SearchOptions(opts...)
	conn, err := e.conn(option.Collection)
	if err != nil {
		return nil, err
	}
	ctx, cancel := e.Bound(ctx)
	defer cancel()
	req := &pinecone.QueryByVectorValuesRequest{
		Vector:          vectordb.Float32s(vectors),
		TopK:            uint32(option.TopK),
		IncludeMetadata: true,
	}
	if len(option.Meta) > 0 {
		fields := make(map[string]any, len(option.Meta))
		for k, v := range option.Meta {
			fields[k] = v
		}
		filter, err := structpb.NewStruct(fields)
		if err != nil {
			return nil, err
		}
		req.MetadataFilter = filter
	}
	resp, err := conn.QueryByVectorValues(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("pinecone query: %w", err)
	}
	records := make([]vectordb.Record, 0, len(resp.Matches))
	for _, match := range resp.Matches {
		if match == nil || match.Vector == nil {
			continue
		}
		records = append(records, matchToRecord(match))
	}
	vectordb.SortByScore(records)
	return records, nil
}

// Close closes every opened index connection
func (e *Engine) Close() error {
	var ret error
	e.conns.Range(func(k, v any) bool {
		if closer, ok := v.(io.Closer); ok {
			if err := closer.Close(); err != nil && ret == nil {
				ret = err
			}
		}
		e.conns.Delete(k)
		return true
	})
	return ret
}

func recordToVector(record vectordb.Record) (*pinecone.Vector, error) {
	if record.ID == "" {
		record.ID = record.Embedding.UUID()
	}
	fields := make(map[string]any, len(record.Embedding.Meta)+1)
	for k, v := range record.Embedding.Meta {
		fields[k] = v
	}
	if _, ok := fields[vectordb.TextField]; !ok {
		fields[vectordb.TextField] = record.Embedding.Object
	}
	metadata, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	values := record.Embedding.Float32s()
	return &pinecone.Vector{
		Id:       record.ID,
		Values:   &values,
		Metadata: metadata,
	}, nil
}

func matchToRecord(match *pinecone.ScoredVector) vectordb.Record {
	record := vectordb.Record{
		ID:    match.Vector.Id,
		Score: float64(match.Score),
	}
	if match.Vector.Values != nil {
		record.Embedding.FromFloat32s(*match.Vector.Values)
	}
	if metadata := match.Vector.Metadata; metadata != nil {
		record.Embedding.Meta = make(map[string]string, len(metadata.GetFields()))
		for k, v := range metadata.GetFields() {
			if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
				record.Embedding.Meta[k] = s.StringValue
				continue
			}
			bs, err := v.MarshalJSON()
			if err == nil {
				record.Embedding.Meta[k] = string(bs)
			}
		}
		record.Embedding.Object = record.Embedding.Meta[vectordb.TextField]
	}
	return record
}
