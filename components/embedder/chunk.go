package embedder

import (
	"bytes"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Embedding is the vector representation of a piece of text.
// Texts with similar meaning have embeddings that are close in the vector space.
type Embedding struct {
	// Object is the embedded text
	Object    string            `json:"object"`
	Embedding []float64         `json:"embedding"`
	Index     int               `json:"index"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// UUID returns a stable identifier derived from the text and its metadata,
// so re-ingesting the same passage overwrites the previous record.
func (e Embedding) UUID() string {
	sb := new(bytes.Buffer)
	sb.WriteString(e.Object)
	keys := make([]string, 0, len(e.Meta))
	for k := range e.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(k + ":" + e.Meta[k])
		sb.WriteByte('\n')
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, sb.Bytes()).String()
}

// EmbeddedChunk is a chunk of text along with its vector embedding
type EmbeddedChunk struct {
	Embedding
	// Chunk is the original chunk content that was embedded
	Chunk *Chunk `json:"text"`
}

// Chunk represents a piece of text with its position inside the source document
type Chunk struct {
	// Text contains the actual content of the chunk
	Text string
	// TokenSize represents the number of tokens in this chunk
	TokenSize int
	// StartSentence is the index of the first sentence in this chunk
	StartSentence int
	// EndSentence is the index of the last sentence in this chunk (exclusive)
	EndSentence int
}

// Chunker splits text into chunks
type Chunker interface {
	Chunk(text string) []Chunk
}

// DefaultSentenceSplitter splits on ., ! and ? keeping the punctuation
func DefaultSentenceSplitter(text string) []string {
	var (
		sentences []string
		current   strings.Builder
		inQuote   bool
	)
	for _, r := range text {
		current.WriteRune(r)
		switch r {
		case '"':
			inQuote = !inQuote
		case '.', '!', '?':
			if inQuote {
				continue
			}
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// TextChunker groups sentences into chunks of roughly ChunkSize tokens,
// repeating ChunkOverlap tokens of context between adjacent chunks.
type TextChunker struct {
	// ChunkSize is the target size of each chunk in tokens
	ChunkSize int
	// ChunkOverlap is the number of tokens that should overlap between adjacent chunks
	ChunkOverlap int
	// TokenCounter is used to count tokens in text segments
	TokenCounter TokenCounter
	// SentenceSplitter is a function that splits text into sentences
	SentenceSplitter func(string) []string
}

var _ Chunker = (*TextChunker)(nil)

// TextChunkerOption is a function type for configuring TextChunker instances.
type TextChunkerOption func(*TextChunker)

func WithChunkSize(size int) TextChunkerOption {
	return func(tc *TextChunker) {
		if size > 0 {
			tc.ChunkSize = size
		}
	}
}

func WithChunkOverlap(overlap int) TextChunkerOption {
	return func(tc *TextChunker) {
		if overlap >= 0 {
			tc.ChunkOverlap = overlap
		}
	}
}

func WithTokenCounter(counter TokenCounter) TextChunkerOption {
	return func(tc *TextChunker) {
		tc.TokenCounter = counter
	}
}

func WithSentenceSplitter(fn func(string) []string) TextChunkerOption {
	return func(tc *TextChunker) {
		tc.SentenceSplitter = fn
	}
}

// NewTextChunker creates a new TextChunker.
// Defaults: 200 tokens per chunk, 50 tokens overlap, word counting, DefaultSentenceSplitter.
func NewTextChunker(options ...TextChunkerOption) *TextChunker {
	tc := &TextChunker{
		ChunkSize:        200,
		ChunkOverlap:     50,
		TokenCounter:     &DefaultTokenCounter{},
		SentenceSplitter: DefaultSentenceSplitter,
	}
	for _, option := range options {
		option(tc)
	}
	if tc.ChunkOverlap >= tc.ChunkSize {
		tc.ChunkOverlap = tc.ChunkSize / 4
	}
	return tc
}

// Chunk splits the input text into chunks while preserving sentence boundaries
// and maintaining the configured overlap between chunks.
func (tc *TextChunker) Chunk(text string) []Chunk {
	sentences := tc.SentenceSplitter(text)
	counts := make([]int, len(sentences))
	for i, sentence := range sentences {
		counts[i] = tc.TokenCounter.Count(sentence)
	}
	var (
		chunks []Chunk
		start  int
		tokens int
	)
	flush := func(end int) {
		chunks = append(chunks, Chunk{
			Text:          strings.Join(sentences[start:end], " "),
			TokenSize:     tokens,
			StartSentence: start,
			EndSentence:   end,
		})
	}
	for i := range sentences {
		if tokens > 0 && tokens+counts[i] > tc.ChunkSize {
			flush(i)
			overlapStart := i - tc.overlapSentences(counts, i)
			// always make progress
			if overlapStart <= start {
				overlapStart = start + 1
			}
			start = overlapStart
			tokens = 0
			for j := start; j < i; j++ {
				tokens += counts[j]
			}
		}
		tokens += counts[i]
	}
	if tokens > 0 {
		flush(len(sentences))
	}
	return chunks
}

// overlapSentences counts how many sentences before end are needed to reach the overlap
func (tc *TextChunker) overlapSentences(counts []int, end int) int {
	overlapTokens := 0
	n := 0
	for i := end - 1; i >= 0 && overlapTokens < tc.ChunkOverlap; i-- {
		if overlapTokens+counts[i] > tc.ChunkOverlap && n > 0 {
			break
		}
		overlapTokens += counts[i]
		n++
	}
	return n
}
