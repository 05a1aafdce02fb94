package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/embedder"
	"github.com/bububa/teachassist/components/embedder/embeddertest"
	"github.com/bububa/teachassist/components/vectordb"
	"github.com/bububa/teachassist/components/vectordb/engines/memory"
	"github.com/bububa/teachassist/schema"
	"github.com/bububa/teachassist/tools"
)

var vocabulary = []string{"leave", "holiday", "office", "salary"}

func newEngine(t *testing.T, emb embedder.Embedder, passages ...string) *memory.Engine {
	t.Helper()
	engine := memory.New()
	ctx := context.Background()
	embeddings, err := emb.BatchEmbed(ctx, passages, nil)
	require.NoError(t, err)
	records := make([]vectordb.Record, 0, len(embeddings))
	for _, e := range embeddings {
		records = append(records, vectordb.NewRecord(e))
	}
	require.NoError(t, engine.Insert(ctx, "", records...))
	return engine
}

func TestRetrieverContext(t *testing.T) {
	emb := &embeddertest.Embedder{Vocabulary: vocabulary}
	engine := newEngine(t, emb,
		"Annual leave is 20 days per year.",
		"Leave requests need manager approval. Holiday leave follows the calendar.",
		"The office opens at 9am.",
	)
	retriever := NewRetriever(emb, engine)
	usage := new(components.LLMUsage)

	text, err := retriever.Context(context.Background(), "how much leave do I get", usage)
	require.NoError(t, err)
	assert.Equal(t, "Annual leave is 20 days per year.\n---\nLeave requests need manager approval. Holiday leave follows the calendar.", text)
	assert.Greater(t, usage.InputTokens, int64(0))

	_, err = retriever.Context(context.Background(), "what is the salary", usage)
	assert.ErrorIs(t, err, ErrNoInformation)
}

func TestRetrieverThreshold(t *testing.T) {
	emb := &embeddertest.Embedder{Func: func(text string) []float64 {
		switch text {
		case "query":
			return []float64{1, 0}
		case "close":
			return []float64{1, 0.1}
		}
		return []float64{0.1, 1}
	}}
	engine := newEngine(t, emb, "close", "far")

	text, err := NewRetriever(emb, engine).Context(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.Equal(t, "close", text)

	text, err = NewRetriever(emb, engine, WithMinScore(0)).Context(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.Equal(t, "close\n---\nfar", text)
}

func TestRetrieverTokenBudget(t *testing.T) {
	retriever := NewRetriever(nil, nil, WithMaxContextTokens(5))
	records := []vectordb.Record{
		{Score: 0.9, Embedding: embedder.Embedding{Object: "one two three"}},
		{Score: 0.8, Embedding: embedder.Embedding{Object: "   "}},
		{Score: 0.7, Embedding: embedder.Embedding{Object: "four five six"}},
		{Score: 0.6, Embedding: embedder.Embedding{Object: "seven"}},
	}
	assert.Equal(t, "one two three", retriever.Assemble(records))
}

func TestRetrieverLongPassage(t *testing.T) {
	ctx := context.Background()
	emb := &embeddertest.Embedder{Vocabulary: vocabulary}
	long := "Annual leave policy. " + strings.Repeat("Leave accrues monthly for every employee. ", 400)
	engine := newEngine(t, emb, long)

	retriever := NewRetriever(emb, engine, WithMaxContextTokens(100))
	records, err := retriever.Retrieve(ctx, "leave", nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	text, err := retriever.Context(ctx, "leave", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Annual leave policy. Leave accrues"))
	assert.Len(t, strings.Fields(text), 100)

	text, err = NewRetriever(emb, engine).Context(ctx, "leave", nil)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(text), DefaultMaxContextTokens)
}

type failingEngine struct{}

func (failingEngine) Insert(context.Context, string, ...vectordb.Record) error { return nil }

func (failingEngine) Search(context.Context, []float64, ...vectordb.SearchOption) ([]vectordb.Record, error) {
	return nil, errors.New("index unavailable")
}

func TestRetrieverFailures(t *testing.T) {
	ctx := context.Background()
	failing := &embeddertest.Embedder{Err: errors.New("throttled")}
	_, err := NewRetriever(failing, memory.New()).Retrieve(ctx, "q", nil)
	assert.ErrorIs(t, err, ErrEmbedding)

	empty := &embeddertest.Embedder{Func: func(string) []float64 { return nil }}
	_, err = NewRetriever(empty, failingEngine{}).Retrieve(ctx, "q", nil)
	assert.ErrorIs(t, err, embedder.ErrEmptyEmbedding)

	ok := &embeddertest.Embedder{Vocabulary: vocabulary}
	_, err = NewRetriever(ok, failingEngine{}).Retrieve(ctx, "leave", nil)
	assert.ErrorIs(t, err, ErrNoInformation)
}

func TestCapability(t *testing.T) {
	ctx := context.Background()
	emb := &embeddertest.Embedder{Vocabulary: vocabulary}
	engine := newEngine(t, emb, "Annual leave is 20 days per year.")

	capability := tools.AsCapability[Input, schema.String](New(NewRetriever(emb, engine)))
	assert.Equal(t, Name, capability.Name())

	ret, err := capability.Call(ctx, json.RawMessage(`{"query":"leave"}`))
	require.NoError(t, err)
	assert.Equal(t, "Retrieved information:\nAnnual leave is 20 days per year.", ret)

	ret, err = capability.Call(ctx, json.RawMessage(`{"query":"salary"}`))
	require.NoError(t, err)
	assert.Equal(t, NoInformation, ret)

	failing := &embeddertest.Embedder{Err: errors.New("throttled")}
	capability = tools.AsCapability[Input, schema.String](New(NewRetriever(failing, engine)))
	ret, err = capability.Call(ctx, json.RawMessage(`{"query":"leave"}`))
	require.NoError(t, err)
	assert.Equal(t, EmbeddingFailure, ret)
}
