package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/embedder"
	"github.com/bububa/teachassist/components/vectordb"
)

const (
	// DefaultMinScore drops neighbours scoring below it
	DefaultMinScore = 0.2
	// DefaultMaxContextTokens caps the assembled context
	DefaultMaxContextTokens = 2000
	// Separator delimits passages in the assembled context
	Separator = "\n---\n"
)

var (
	// ErrEmbedding is returned when the query could not be embedded
	ErrEmbedding = errors.New("embedding failure")
	// ErrNoInformation is returned when no passage survives search and filtering
	ErrNoInformation = errors.New("no information available")
)

// Retriever embeds a query, searches the vector index and assembles a context from the relevant passages
type Retriever struct {
	embedder   embedder.Embedder
	engine     vectordb.Engine
	collection string
	topK       int
	minScore   float64
	maxTokens  int
	counter    embedder.TokenCounter
}

type Option func(*Retriever)

func WithCollection(name string) Option {
	return func(r *Retriever) {
		r.collection = name
	}
}

func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithMinScore sets the relevance threshold, zero disables filtering
func WithMinScore(score float64) Option {
	return func(r *Retriever) {
		r.minScore = score
	}
}

func WithMaxContextTokens(n int) Option {
	return func(r *Retriever) {
		r.maxTokens = n
	}
}

func WithTokenCounter(counter embedder.TokenCounter) Option {
	return func(r *Retriever) {
		r.counter = counter
	}
}

func NewRetriever(emb embedder.Embedder, engine vectordb.Engine, opts ...Option) *Retriever {
	ret := &Retriever{
		embedder:  emb,
		engine:    engine,
		topK:      vectordb.DefaultTopK,
		minScore:  DefaultMinScore,
		maxTokens: DefaultMaxContextTokens,
		counter:   new(embedder.DefaultTokenCounter),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Retrieve returns the passages relevant to query by descending score
func (r *Retriever) Retrieve(ctx context.Context, query string, usage *components.LLMUsage) ([]vectordb.Record, error) {
	var embedding embedder.Embedding
	if err := r.embedder.Embed(ctx, query, &embedding, usage); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	if embedding.IsEmpty() {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, embedder.ErrEmptyEmbedding)
	}
	opts := []vectordb.SearchOption{vectordb.SearchWithTopK(r.topK)}
	if r.collection != "" {
		opts = append(opts, vectordb.SearchWithCollection(r.collection))
	}
	records, err := r.engine.Search(ctx, embedding.Embedding, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", ErrNoInformation, err)
	}
	records = vectordb.FilterByScore(records, r.minScore)
	if len(records) == 0 {
		return nil, ErrNoInformation
	}
	return records, nil
}

// Assemble joins passage texts in order, dropping passages past the token budget.
// The first passage is always kept, truncated to the budget when it exceeds it alone.
func (r *Retriever) Assemble(records []vectordb.Record) string {
	parts := make([]string, 0, len(records))
	var tokens int
	for _, record := range records {
		text := strings.TrimSpace(record.Text())
		if text == "" {
			continue
		}
		if r.maxTokens > 0 {
			n := r.counter.Count(text)
			if tokens+n > r.maxTokens {
				if len(parts) > 0 {
					break
				}
				text = r.truncate(text)
				n = r.counter.Count(text)
			}
			tokens += n
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, Separator)
}

// truncate keeps the longest word prefix of text that fits the token budget, never less than one word
func (r *Retriever) truncate(text string) string {
	words := strings.Fields(text)
	lo, hi := 1, len(words)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if r.counter.Count(strings.Join(words[:mid], " ")) <= r.maxTokens {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return strings.Join(words[:lo], " ")
}

// Context runs retrieval and assembly, returning ErrNoInformation when nothing usable is found
func (r *Retriever) Context(ctx context.Context, query string, usage *components.LLMUsage) (string, error) {
	records, err := r.Retrieve(ctx, query, usage)
	if err != nil {
		return "", err
	}
	ret := r.Assemble(records)
	if ret == "" {
		return "", ErrNoInformation
	}
	return ret, nil
}
