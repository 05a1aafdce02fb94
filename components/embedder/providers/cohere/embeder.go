package cohere

import (
	"context"
	"fmt"

	cohere "github.com/cohere-ai/cohere-go/v2"
	"github.com/cohere-ai/cohere-go/v2/option"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/embedder"
)

// EmbedAPI is the part of the cohere client used by the embedder
type EmbedAPI interface {
	Embed(ctx context.Context, request *cohere.EmbedRequest, opts ...option.RequestOption) (*cohere.EmbedResponse, error)
}

type Embedder struct {
	client EmbedAPI
	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func New(client EmbedAPI, opts ...embedder.Option) *Embedder {
	i := &Embedder{
		client: client,
	}
	embedder.WithProvider(embedder.ProviderCohere)(&i.Options)
	embedder.WithModel("embed-english-v3.0")(&i.Options)
	for _, opt := range opts {
		opt(&i.Options)
	}
	return i
}

// Embed embeds a search query
func (p *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.LLMUsage) error {
	ret, err := p.embed(ctx, []string{text}, cohere.EmbedInputTypeSearchQuery, usage)
	if err != nil {
		return err
	}
	if len(ret) == 0 || len(ret[0].Embedding) == 0 {
		return embedder.ErrEmptyEmbedding
	}
	*embedding = ret[0]
	return nil
}

// BatchEmbed embeds documents for indexing
func (p *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	return p.embed(ctx, parts, cohere.EmbedInputTypeSearchDocument, usage)
}

func (p *Embedder) embed(ctx context.Context, parts []string, inputType cohere.EmbedInputType, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	ctx, cancel := p.Bound(ctx)
	defer cancel()
	model := p.Model()
	resp, err := p.client.Embed(ctx, &cohere.EmbedRequest{
		Texts:     parts,
		Model:     &model,
		InputType: inputType.Ptr(),
	})
	if err != nil {
		return nil, fmt.Errorf("cohere embed: %w", err)
	}
	respV := resp.GetEmbeddingsFloats()
	if respV == nil {
		return nil, embedder.ErrEmptyEmbedding
	}
	if usage != nil && respV.Meta != nil && respV.Meta.Tokens != nil {
		u := new(components.LLMUsage)
		if v := respV.Meta.Tokens.InputTokens; v != nil {
			u.InputTokens = int64(*v)
		}
		if v := respV.Meta.Tokens.OutputTokens; v != nil {
			u.OutputTokens = int64(*v)
		}
		usage.Merge(u)
	}
	ret := make([]embedder.Embedding, 0, len(respV.Embeddings))
	for idx, v := range respV.Embeddings {
		text := ""
		if idx < len(parts) {
			text = parts[idx]
		}
		ret = append(ret, embedder.Embedding{
			Object:    text,
			Embedding: v,
			Index:     idx,
		})
	}
	return ret, nil
}
