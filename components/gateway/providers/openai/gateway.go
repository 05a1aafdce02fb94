package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/schema"
)

// ChatCompletionAPI is the part of the openai client used by the gateway
type ChatCompletionAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Gateway talks to OpenAI compatible chat completion endpoints with function calling
type Gateway struct {
	client ChatCompletionAPI
	gateway.Options
}

var _ gateway.Gateway = (*Gateway)(nil)

func New(client ChatCompletionAPI, opts ...gateway.Option) *Gateway {
	return &Gateway{
		client:  client,
		Options: gateway.NewOptions(opts...),
	}
}

func (g *Gateway) Provider() gateway.Provider {
	return gateway.ProviderOpenAI
}

func (g *Gateway) Generate(ctx context.Context, req *gateway.Request, resp *components.LLMResponse) (string, error) {
	ctx, cancel := g.Bound(ctx)
	defer cancel()
	chatReq := openai.ChatCompletionRequest{
		Model:               g.Model(),
		Temperature:         g.Temperature(),
		MaxCompletionTokens: g.MaxTokens(),
	}
	for _, msg := range []*components.Message{
		components.NewMessage(components.SystemRole, schema.String(req.SystemPrompt)),
		components.NewMessage(components.UserRole, schema.String(req.UserMessage)),
	} {
		if msg.Text() == "" {
			continue
		}
		var v openai.ChatCompletionMessage
		msg.ToOpenAI(&v)
		chatReq.Messages = append(chatReq.Messages, v)
	}
	for _, c := range req.Capabilities {
		chatReq.Tools = append(chatReq.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        c.Name(),
				Description: c.Description(),
				Parameters:  c.Parameters(),
			},
		})
	}
	if resp == nil {
		resp = new(components.LLMResponse)
	}
	for range g.MaxIterations() {
		res, err := g.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return "", fmt.Errorf("openai chat completion: %w", err)
		}
		resp.FromOpenAI(&res)
		if len(res.Choices) == 0 {
			return "", gateway.ErrEmptyResponse
		}
		msg := res.Choices[0].Message
		chatReq.Messages = append(chatReq.Messages, msg)
		if len(msg.ToolCalls) == 0 {
			return strings.TrimSpace(msg.Content), nil
		}
		for _, call := range msg.ToolCalls {
			content, _ := gateway.Invoke(ctx, req.Capabilities, call.ID, call.Function.Name, json.RawMessage(call.Function.Arguments), resp)
			chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    content,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}
	}
	return "", gateway.ErrMaxIterations
}
