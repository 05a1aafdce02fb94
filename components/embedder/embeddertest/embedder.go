// Package embeddertest provides a deterministic embedder for tests
package embeddertest

import (
	"context"
	"strings"
	"sync"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/embedder"
)

// Embedder maps text to vectors with Func, or to a bag of keyword counts over Vocabulary.
// Err fails every call.
type Embedder struct {
	Vocabulary []string
	Func       func(text string) []float64
	Err        error
	mtx        sync.Mutex
	calls      []string
}

var _ embedder.Embedder = (*Embedder)(nil)

func (e *Embedder) Provider() embedder.Provider {
	return "Fake"
}

func (e *Embedder) Model() string {
	return "fake-embedding"
}

func (e *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.LLMUsage) error {
	e.mtx.Lock()
	e.calls = append(e.calls, text)
	e.mtx.Unlock()
	if e.Err != nil {
		return e.Err
	}
	embedding.Object = text
	embedding.Embedding = e.vector(text)
	if usage != nil {
		usage.Merge(&components.LLMUsage{InputTokens: int64(len(strings.Fields(text)))})
	}
	return nil
}

func (e *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	ret := make([]embedder.Embedding, len(parts))
	for idx, text := range parts {
		if err := e.Embed(ctx, text, &ret[idx], usage); err != nil {
			return nil, err
		}
		ret[idx].Index = idx
	}
	return ret, nil
}

// Calls returns every text embedded so far
func (e *Embedder) Calls() []string {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	ret := make([]string, len(e.calls))
	copy(ret, e.calls)
	return ret
}

func (e *Embedder) vector(text string) []float64 {
	if e.Func != nil {
		return e.Func(text)
	}
	lower := strings.ToLower(text)
	ret := make([]float64, len(e.Vocabulary))
	for idx, word := range e.Vocabulary {
		ret[idx] = float64(strings.Count(lower, strings.ToLower(word)))
	}
	return ret
}
