package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/embedder"
)

// DefaultModel is the Titan text embedding model
const DefaultModel = "amazon.titan-embed-text-v2:0"

// InvokeModelAPI is the part of the bedrock runtime client used by the embedder
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type titanRequest struct {
	InputText string `json:"inputText"`
}

type titanResponse struct {
	Embedding           []float64 `json:"embedding"`
	InputTextTokenCount int64     `json:"inputTextTokenCount"`
}

// Embedder calls Titan text embeddings through InvokeModel
type Embedder struct {
	client InvokeModelAPI
	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func New(client InvokeModelAPI, opts ...embedder.Option) *Embedder {
	i := &Embedder{
		client: client,
	}
	embedder.WithProvider(embedder.ProviderBedrock)(&i.Options)
	embedder.WithModel(DefaultModel)(&i.Options)
	for _, opt := range opts {
		opt(&i.Options)
	}
	return i
}

func (p *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.LLMUsage) error {
	ctx, cancel := p.Bound(ctx)
	defer cancel()
	body, err := json.Marshal(titanRequest{InputText: text})
	if err != nil {
		return err
	}
	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.Model()),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("bedrock invoke model: %w", err)
	}
	var resp titanResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return fmt.Errorf("decode titan embedding: %w", err)
	}
	if usage != nil {
		usage.Merge(&components.LLMUsage{InputTokens: resp.InputTextTokenCount})
	}
	if len(resp.Embedding) == 0 {
		return embedder.ErrEmptyEmbedding
	}
	embedding.Object = text
	embedding.Embedding = resp.Embedding
	embedding.Index = 0
	return nil
}

// BatchEmbed embeds parts one by one since Titan accepts a single input per call
func (p *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	ret := make([]embedder.Embedding, 0, len(parts))
	for idx, part := range parts {
		var embedding embedder.Embedding
		if err := p.Embed(ctx, part, &embedding, usage); err != nil {
			return nil, fmt.Errorf("embed part %d: %w", idx, err)
		}
		embedding.Index = idx
		ret = append(ret, embedding)
	}
	return ret, nil
}
