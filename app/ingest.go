package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/document"
	"github.com/bububa/teachassist/components/embedder"
	"github.com/bububa/teachassist/components/vectordb"
	"github.com/bububa/teachassist/logger"
)

const DefaultIngestBatchSize = 32

// Source loads documents and expands directories or prefixes into documents
type Source interface {
	document.Loader
	document.Lister
}

// Ingester fills the vector index the knowledge responder searches
type Ingester struct {
	source     Source
	embedder   embedder.Embedder
	engine     vectordb.Engine
	chunker    embedder.Chunker
	collection string
	batchSize  int
}

type IngestOption func(*Ingester)

func WithChunker(chunker embedder.Chunker) IngestOption {
	return func(i *Ingester) {
		i.chunker = chunker
	}
}

// WithIngestCollection targets a collection other than the engine default
func WithIngestCollection(name string) IngestOption {
	return func(i *Ingester) {
		i.collection = name
	}
}

func WithBatchSize(n int) IngestOption {
	return func(i *Ingester) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

func NewIngester(source Source, emb embedder.Embedder, engine vectordb.Engine, opts ...IngestOption) *Ingester {
	ret := &Ingester{
		source:    source,
		embedder:  emb,
		engine:    engine,
		batchSize: DefaultIngestBatchSize,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.chunker == nil {
		ret.chunker = embedder.NewTextChunker()
	}
	return ret
}

// IngestReport summarizes an ingestion run
type IngestReport struct {
	Documents int
	Chunks    int
	// Skipped counts documents whose content is neither text nor html
	Skipped int
	Usage   components.LLMUsage
}

// Ingest chunks, embeds and stores every document reachable from uris.
// Documents with unsupported content are skipped. Any other failure stops the run,
// records inserted before it stay in the index.
func (i *Ingester) Ingest(ctx context.Context, uris ...string) (*IngestReport, error) {
	report := new(IngestReport)
	for _, uri := range uris {
		names, err := i.source.List(ctx, uri)
		if err != nil {
			return report, fmt.Errorf("list %s: %w", uri, err)
		}
		for _, name := range names {
			n, err := i.ingestDocument(ctx, name, &report.Usage)
			if errors.Is(err, document.ErrUnsupportedContent) {
				logger.FromContext(ctx).Warn("skipping document", "source", name, "error", err)
				report.Skipped++
				continue
			}
			if err != nil {
				return report, fmt.Errorf("ingest %s: %w", name, err)
			}
			report.Documents++
			report.Chunks += n
		}
	}
	return report, nil
}

func (i *Ingester) ingestDocument(ctx context.Context, uri string, usage *components.LLMUsage) (int, error) {
	log := logger.FromContext(ctx).With("source", uri)
	doc, err := i.source.Load(ctx, uri)
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(doc.Text())
	if text == "" {
		log.Warn("skipping empty document")
		return 0, nil
	}
	chunks := i.chunker.Chunk(text)
	for start := 0; start < len(chunks); start += i.batchSize {
		end := min(start+i.batchSize, len(chunks))
		embedded, err := embedder.EmbedChunks(ctx, i.embedder, chunks[start:end], usage)
		if err != nil {
			return 0, err
		}
		records := make([]vectordb.Record, 0, len(embedded))
		for idx, v := range embedded {
			emb := v.Embedding
			emb.Object = v.Chunk.Text
			emb.Meta = make(map[string]string, len(doc.Meta)+1)
			for k, val := range doc.Meta {
				emb.Meta[k] = val
			}
			emb.Meta["chunk"] = strconv.Itoa(start + idx)
			records = append(records, vectordb.NewRecord(emb))
		}
		if err := i.engine.Insert(ctx, i.collection, records...); err != nil {
			return 0, err
		}
	}
	log.Info("document ingested", "chunks", len(chunks))
	return len(chunks), nil
}
