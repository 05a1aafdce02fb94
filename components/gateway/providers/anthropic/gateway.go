package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/schema"
)

// MessagesAPI is the part of the anthropic client used by the gateway
type MessagesAPI interface {
	CreateMessages(ctx context.Context, request anthropic.MessagesRequest) (anthropic.MessagesResponse, error)
}

// Gateway talks to the Anthropic messages API with tool use
type Gateway struct {
	client MessagesAPI
	gateway.Options
}

var _ gateway.Gateway = (*Gateway)(nil)

func New(client MessagesAPI, opts ...gateway.Option) *Gateway {
	return &Gateway{
		client:  client,
		Options: gateway.NewOptions(opts...),
	}
}

func (g *Gateway) Provider() gateway.Provider {
	return gateway.ProviderAnthropic
}

func (g *Gateway) Generate(ctx context.Context, req *gateway.Request, resp *components.LLMResponse) (string, error) {
	ctx, cancel := g.Bound(ctx)
	defer cancel()
	temperature := g.Temperature()
	chatReq := anthropic.MessagesRequest{
		Model:       anthropic.Model(g.Model()),
		System:      req.SystemPrompt,
		MaxTokens:   g.MaxTokens(),
		Temperature: &temperature,
	}
	var userMsg anthropic.Message
	components.NewMessage(components.UserRole, schema.String(req.UserMessage)).ToAnthropic(&userMsg)
	chatReq.Messages = []anthropic.Message{userMsg}
	for _, c := range req.Capabilities {
		chatReq.Tools = append(chatReq.Tools, anthropic.ToolDefinition{
			Name:        c.Name(),
			Description: c.Description(),
			InputSchema: c.Parameters(),
		})
	}
	if resp == nil {
		resp = new(components.LLMResponse)
	}
	for range g.MaxIterations() {
		res, err := g.client.CreateMessages(ctx, chatReq)
		if err != nil {
			return "", fmt.Errorf("anthropic messages: %w", err)
		}
		resp.FromAnthropic(&res)
		chatReq.Messages = append(chatReq.Messages, anthropic.Message{
			Role:    anthropic.RoleAssistant,
			Content: res.Content,
		})
		if res.StopReason != anthropic.MessagesStopReasonToolUse {
			return responseText(res.Content), nil
		}
		results := make([]anthropic.MessageContent, 0, len(res.Content))
		for _, content := range res.Content {
			if content.Type != anthropic.MessagesContentTypeToolUse || content.MessageContentToolUse == nil {
				continue
			}
			use := content.MessageContentToolUse
			result, isErr := gateway.Invoke(ctx, req.Capabilities, use.ID, use.Name, use.Input, resp)
			results = append(results, anthropic.NewToolResultMessageContent(use.ID, result, isErr))
		}
		if len(results) == 0 {
			return responseText(res.Content), nil
		}
		chatReq.Messages = append(chatReq.Messages, anthropic.Message{
			Role:    anthropic.RoleUser,
			Content: results,
		})
	}
	return "", gateway.ErrMaxIterations
}

func responseText(contents []anthropic.MessageContent) string {
	var sb strings.Builder
	for idx := range contents {
		if contents[idx].Type == anthropic.MessagesContentTypeText {
			sb.WriteString(contents[idx].GetText())
		}
	}
	return strings.TrimSpace(sb.String())
}
