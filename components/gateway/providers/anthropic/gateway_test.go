package anthropic

import (
	"context"
	"encoding/json"
	"testing"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/components/gateway/gatewaytest"
)

type fakeMessages struct {
	responses []anthropic.MessagesResponse
	requests  []anthropic.MessagesRequest
}

func (f *fakeMessages) CreateMessages(_ context.Context, req anthropic.MessagesRequest) (anthropic.MessagesResponse, error) {
	f.requests = append(f.requests, req)
	return f.responses[len(f.requests)-1], nil
}

func TestGenerate(t *testing.T) {
	capability := &gatewaytest.Capability{CapabilityName: "knowledge_retrieval", Result: "Retrieved information:\nopen 9-5"}
	client := &fakeMessages{responses: []anthropic.MessagesResponse{
		{
			StopReason: anthropic.MessagesStopReasonToolUse,
			Content: []anthropic.MessageContent{{
				Type: anthropic.MessagesContentTypeToolUse,
				MessageContentToolUse: &anthropic.MessageContentToolUse{
					ID:    "toolu_1",
					Name:  "knowledge_retrieval",
					Input: json.RawMessage(`{"query":"opening hours"}`),
				},
			}},
		},
		{
			StopReason: anthropic.MessagesStopReasonEndTurn,
			Content: []anthropic.MessageContent{
				anthropic.NewTextMessageContent("We are open "),
				anthropic.NewTextMessageContent("9-5."),
			},
		},
	}}
	g := New(client, gateway.WithModel("claude-3-5-haiku-latest"))
	resp := new(components.LLMResponse)
	text, err := g.Generate(context.Background(), gateway.NewRequest("You are Shellbot", "when are you open?", capability), resp)
	require.NoError(t, err)
	assert.Equal(t, "We are open 9-5.", text)
	require.Len(t, client.requests, 2)
	assert.Equal(t, "You are Shellbot", client.requests[0].System)
	assert.Len(t, client.requests[0].Tools, 1)
	assert.Len(t, client.requests[1].Messages, 3)
	assert.Equal(t, []string{`{"query":"opening hours"}`}, capability.Args())
	require.Len(t, resp.ToolCalls, 1)
}
