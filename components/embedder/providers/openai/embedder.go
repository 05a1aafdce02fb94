package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/embedder"
)

// EmbeddingsAPI is the part of the openai client used by the embedder
type EmbeddingsAPI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

type Embedder struct {
	client EmbeddingsAPI
	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func New(client EmbeddingsAPI, opts ...embedder.Option) *Embedder {
	i := &Embedder{
		client: client,
	}
	embedder.WithProvider(embedder.ProviderOpenAI)(&i.Options)
	embedder.WithModel(string(openai.SmallEmbedding3))(&i.Options)
	for _, opt := range opts {
		opt(&i.Options)
	}
	return i
}

func (p *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.LLMUsage) error {
	ret, err := p.BatchEmbed(ctx, []string{text}, usage)
	if err != nil {
		return err
	}
	if len(ret) == 0 || len(ret[0].Embedding) == 0 {
		return embedder.ErrEmptyEmbedding
	}
	*embedding = ret[0]
	return nil
}

func (p *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	ctx, cancel := p.Bound(ctx)
	defer cancel()
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: parts,
		Model: openai.EmbeddingModel(p.Model()),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if usage != nil {
		usage.Merge(&components.LLMUsage{InputTokens: int64(resp.Usage.PromptTokens)})
	}
	ret := make([]embedder.Embedding, 0, len(resp.Data))
	for _, v := range resp.Data {
		if v.Index < 0 || v.Index >= len(parts) {
			continue
		}
		embedding := embedder.Embedding{
			Object: parts[v.Index],
			Index:  v.Index,
		}
		embedding.FromFloat32s(v.Embedding)
		ret = append(ret, embedding)
	}
	return ret, nil
}
