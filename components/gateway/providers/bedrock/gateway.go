package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/schema"
)

// ConverseAPI is the part of the bedrock runtime client used by the gateway
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Gateway talks to Amazon Bedrock through the Converse API
type Gateway struct {
	client ConverseAPI
	gateway.Options
}

var _ gateway.Gateway = (*Gateway)(nil)

func New(client ConverseAPI, opts ...gateway.Option) *Gateway {
	return &Gateway{
		client:  client,
		Options: gateway.NewOptions(opts...),
	}
}

func (g *Gateway) Provider() gateway.Provider {
	return gateway.ProviderBedrock
}

func (g *Gateway) Generate(ctx context.Context, req *gateway.Request, resp *components.LLMResponse) (string, error) {
	ctx, cancel := g.Bound(ctx)
	defer cancel()
	temperature := g.Temperature()
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(g.Model()),
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(g.MaxTokens())),
			Temperature: &temperature,
		},
	}
	if req.SystemPrompt != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.SystemPrompt},
		}
	}
	if len(req.Capabilities) > 0 {
		input.ToolConfig = toolConfiguration(req.Capabilities)
	}
	var userMsg types.Message
	components.NewMessage(components.UserRole, schema.String(req.UserMessage)).ToBedrock(&userMsg)
	input.Messages = []types.Message{userMsg}
	if resp == nil {
		resp = new(components.LLMResponse)
	}
	for range g.MaxIterations() {
		out, err := g.client.Converse(ctx, input)
		if err != nil {
			return "", fmt.Errorf("bedrock converse: %w", err)
		}
		resp.FromBedrock(g.Model(), out)
		member, ok := out.Output.(*types.ConverseOutputMemberMessage)
		if !ok {
			return "", gateway.ErrEmptyResponse
		}
		input.Messages = append(input.Messages, member.Value)
		if out.StopReason != types.StopReasonToolUse {
			return messageText(member.Value), nil
		}
		results := make([]types.ContentBlock, 0, len(member.Value.Content))
		for _, block := range member.Value.Content {
			use, ok := block.(*types.ContentBlockMemberToolUse)
			if !ok {
				continue
			}
			args := toolArguments(use.Value.Input)
			content, isErr := gateway.Invoke(ctx, req.Capabilities, aws.ToString(use.Value.ToolUseId), aws.ToString(use.Value.Name), args, resp)
			if isErr {
				content = "Error: " + content
			}
			results = append(results, &types.ContentBlockMemberToolResult{
				Value: types.ToolResultBlock{
					ToolUseId: use.Value.ToolUseId,
					Content: []types.ToolResultContentBlock{
						&types.ToolResultContentBlockMemberText{Value: content},
					},
				},
			})
		}
		if len(results) == 0 {
			return messageText(member.Value), nil
		}
		input.Messages = append(input.Messages, types.Message{
			Role:    types.ConversationRoleUser,
			Content: results,
		})
	}
	return "", gateway.ErrMaxIterations
}

func toolConfiguration(capabilities []gateway.Capability) *types.ToolConfiguration {
	tools := make([]types.Tool, 0, len(capabilities))
	for _, c := range capabilities {
		tools = append(tools, &types.ToolMemberToolSpec{
			Value: types.ToolSpecification{
				Name:        aws.String(c.Name()),
				Description: aws.String(c.Description()),
				InputSchema: &types.ToolInputSchemaMemberJson{
					Value: document.NewLazyDocument(c.Parameters()),
				},
			},
		})
	}
	return &types.ToolConfiguration{Tools: tools}
}

func toolArguments(input document.Interface) json.RawMessage {
	if input == nil {
		return nil
	}
	bs, err := input.MarshalSmithyDocument()
	if err != nil {
		return nil
	}
	return bs
}

func messageText(msg types.Message) string {
	var sb strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	return strings.TrimSpace(sb.String())
}
