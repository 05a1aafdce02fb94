package vectordb

import (
	"sort"

	"github.com/bububa/teachassist/components/embedder"
)

// TextField is the metadata key holding the passage text
const TextField = "text"

type SearchOptions struct {
	Collection string
	TopK       int
	Meta       map[string]string
	Include    string
	Exclude    string
}

type SearchOption func(*SearchOptions)

func SearchWithCollection(name string) SearchOption {
	return func(r *SearchOptions) {
		r.Collection = name
	}
}

func SearchWithTopK(topK int) SearchOption {
	return func(r *SearchOptions) {
		r.TopK = topK
	}
}

func SearchWithMeta(meta map[string]string) SearchOption {
	return func(r *SearchOptions) {
		r.Meta = meta
	}
}

func SearchWithInclude(v string) SearchOption {
	return func(r *SearchOptions) {
		r.Include = v
	}
}

func SearchWithExclude(v string) SearchOption {
	return func(r *SearchOptions) {
		r.Exclude = v
	}
}

// Record represents a single result from a vector similarity search.
type Record struct {
	// ID is the identifier for the result
	ID string
	// Score is the similarity score for the result, higher is closer
	Score float64
	// Embedding embeddings for doc
	Embedding embedder.Embedding
}

// NewRecord builds a record whose text is stored under TextField
func NewRecord(embedding embedder.Embedding) Record {
	meta := make(map[string]string, len(embedding.Meta)+1)
	for k, v := range embedding.Meta {
		meta[k] = v
	}
	meta[TextField] = embedding.Object
	embedding.Meta = meta
	return Record{
		ID:        embedding.UUID(),
		Embedding: embedding,
	}
}

// Text returns the passage text, preferring the text metadata field
func (r Record) Text() string {
	if v, ok := r.Embedding.Meta[TextField]; ok && v != "" {
		return v
	}
	return r.Embedding.Object
}

// SortByScore orders records by descending score, keeping the index order on ties
func SortByScore(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
}

// FilterByScore drops records scoring below minScore and returns the rest by descending score.
// A minScore of zero or less keeps every record.
func FilterByScore(records []Record, minScore float64) []Record {
	ret := make([]Record, 0, len(records))
	for _, r := range records {
		if minScore > 0 && r.Score < minScore {
			continue
		}
		ret = append(ret, r)
	}
	SortByScore(ret)
	return ret
}
