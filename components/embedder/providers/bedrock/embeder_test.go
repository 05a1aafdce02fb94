package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/embedder"
)

type fakeInvoke struct {
	body   string
	err    error
	inputs []string
	model  string
}

func (f *fakeInvoke) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	var req titanRequest
	if err := json.Unmarshal(params.Body, &req); err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, req.InputText)
	f.model = aws.ToString(params.ModelId)
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func TestEmbed(t *testing.T) {
	ctx := context.Background()

	t.Run("Should decode the titan vector", func(t *testing.T) {
		client := &fakeInvoke{body: `{"embedding":[0.1,0.2,0.3],"inputTextTokenCount":4}`}
		e := New(client)
		var embedding embedder.Embedding
		usage := new(components.LLMUsage)
		require.NoError(t, e.Embed(ctx, "opening hours", &embedding, usage))
		assert.Equal(t, []float64{0.1, 0.2, 0.3}, embedding.Embedding)
		assert.Equal(t, "opening hours", embedding.Object)
		assert.Equal(t, int64(4), usage.InputTokens)
		assert.Equal(t, DefaultModel, client.model)
		assert.Equal(t, embedder.ProviderBedrock, e.Provider())
	})

	t.Run("Should report empty vectors", func(t *testing.T) {
		e := New(&fakeInvoke{body: `{"embedding":[]}`})
		var embedding embedder.Embedding
		assert.ErrorIs(t, e.Embed(ctx, "x", &embedding, nil), embedder.ErrEmptyEmbedding)
	})

	t.Run("Should wrap client errors", func(t *testing.T) {
		boom := errors.New("access denied")
		e := New(&fakeInvoke{err: boom}, embedder.WithModel("amazon.titan-embed-text-v1"))
		var embedding embedder.Embedding
		assert.ErrorIs(t, e.Embed(ctx, "x", &embedding, nil), boom)
	})

	t.Run("Should batch embed in order", func(t *testing.T) {
		client := &fakeInvoke{body: `{"embedding":[1,0],"inputTextTokenCount":1}`}
		usage := new(components.LLMUsage)
		ret, err := New(client).BatchEmbed(ctx, []string{"a", "b"}, usage)
		require.NoError(t, err)
		require.Len(t, ret, 2)
		assert.Equal(t, 1, ret[1].Index)
		assert.Equal(t, "b", ret[1].Object)
		assert.Equal(t, []string{"a", "b"}, client.inputs)
		assert.Equal(t, int64(2), usage.InputTokens)
	})
}
