package bedrock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/components/gateway/gatewaytest"
)

type fakeConverse struct {
	outputs []*bedrockruntime.ConverseOutput
	err     error
	inputs  []*bedrockruntime.ConverseInput
}

func (f *fakeConverse) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	idx := len(f.inputs) - 1
	if idx >= len(f.outputs) {
		idx = len(f.outputs) - 1
	}
	return f.outputs[idx], nil
}

func textOutput(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		StopReason: types.StopReasonEndTurn,
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{
				Role:    types.ConversationRoleAssistant,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: text}},
			},
		},
		Usage: &types.TokenUsage{InputTokens: aws.Int32(10), OutputTokens: aws.Int32(5)},
	}
}

func toolOutput(name string, input map[string]any) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		StopReason: types.StopReasonToolUse,
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{
				Role: types.ConversationRoleAssistant,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberToolUse{
						Value: types.ToolUseBlock{
							ToolUseId: aws.String("tool-1"),
							Name:      aws.String(name),
							Input:     document.NewLazyDocument(input),
						},
					},
				},
			},
		},
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return the model text", func(t *testing.T) {
		client := &fakeConverse{outputs: []*bedrockruntime.ConverseOutput{textOutput(" hello ")}}
		g := New(client, gateway.WithModel("amazon.nova-lite-v1:0"), gateway.WithTemperature(0.7))
		resp := new(components.LLMResponse)
		text, err := g.Generate(ctx, gateway.NewRequest("be nice", "hi"), resp)
		require.NoError(t, err)
		assert.Equal(t, "hello", text)
		require.Len(t, client.inputs, 1)
		assert.Equal(t, "amazon.nova-lite-v1:0", aws.ToString(client.inputs[0].ModelId))
		assert.Nil(t, client.inputs[0].ToolConfig)
		assert.Equal(t, int64(15), resp.Usage.Total())
	})

	t.Run("Should run requested capabilities and feed results back", func(t *testing.T) {
		capability := &gatewaytest.Capability{CapabilityName: "calculator", Result: "4"}
		client := &fakeConverse{outputs: []*bedrockruntime.ConverseOutput{
			toolOutput("calculator", map[string]any{"expression": "2+2"}),
			textOutput("The answer is 4"),
		}}
		g := New(client)
		resp := new(components.LLMResponse)
		text, err := g.Generate(ctx, gateway.NewRequest("sys", "what is 2+2", capability), resp)
		require.NoError(t, err)
		assert.Equal(t, "The answer is 4", text)
		require.Len(t, client.inputs, 2)
		require.NotNil(t, client.inputs[0].ToolConfig)
		assert.Len(t, client.inputs[0].ToolConfig.Tools, 1)
		require.Len(t, capability.Args(), 1)
		assert.JSONEq(t, `{"expression":"2+2"}`, capability.Args()[0])
		require.Len(t, resp.ToolCalls, 1)
		assert.Equal(t, "calculator", resp.ToolCalls[0].Name)
	})

	t.Run("Should stop after max iterations", func(t *testing.T) {
		capability := &gatewaytest.Capability{CapabilityName: "calculator", Result: "4"}
		client := &fakeConverse{outputs: []*bedrockruntime.ConverseOutput{
			toolOutput("calculator", map[string]any{"expression": "2+2"}),
		}}
		g := New(client, gateway.WithMaxIterations(2))
		_, err := g.Generate(ctx, gateway.NewRequest("sys", "loop", capability), nil)
		assert.ErrorIs(t, err, gateway.ErrMaxIterations)
		assert.Len(t, client.inputs, 2)
	})

	t.Run("Should wrap client errors", func(t *testing.T) {
		boom := errors.New("throttled")
		g := New(&fakeConverse{err: boom})
		_, err := g.Generate(ctx, gateway.NewRequest("sys", "hi"), nil)
		assert.ErrorIs(t, err, boom)
	})
}
