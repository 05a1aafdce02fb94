package instructor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/schema"
)

// ErrUnsupportedClient is returned when the wrapped instructor does not match any known provider
var ErrUnsupportedClient = errors.New("unsupported instructor client")

// OpenAIInstructor matches instructors.FromOpenAI
type OpenAIInstructor interface {
	Chat(ctx context.Context, request *openai.ChatCompletionRequest, responseType any, response *openai.ChatCompletionResponse) error
}

// AnthropicInstructor matches instructors.FromAnthropic
type AnthropicInstructor interface {
	Chat(ctx context.Context, request *anthropic.MessagesRequest, responseType any, response *anthropic.MessagesResponse) error
}

// CohereInstructor matches instructors.FromCohere
type CohereInstructor interface {
	Chat(ctx context.Context, request *cohere.ChatRequest, responseType any, response *cohere.NonStreamedChatResponse) error
}

// Step is the structured output the model produces on every round.
// Either Capability is set and the gateway calls it, or Answer holds the final reply.
type Step struct {
	Capability string         `json:"capability,omitempty" jsonschema:"title=capability,description=name of the capability to call next, empty when answering"`
	Arguments  map[string]any `json:"arguments,omitempty" jsonschema:"title=arguments,description=arguments of the capability call"`
	Answer     string         `json:"answer,omitempty" jsonschema:"title=answer,description=final reply to the user once no more capability calls are needed"`
}

func (s Step) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// Gateway drives providers without native tool calling through instructor structured output.
// The client must be built with instructor.WithMode(instructor.ModeJSON).
type Gateway struct {
	client any
	gateway.Options
}

var _ gateway.Gateway = (*Gateway)(nil)

// New accepts any instructor created by instructors.FromOpenAI, FromAnthropic or FromCohere
func New(client any, opts ...gateway.Option) *Gateway {
	return &Gateway{
		client:  client,
		Options: gateway.NewOptions(opts...),
	}
}

func (g *Gateway) Provider() gateway.Provider {
	return gateway.ProviderInstructor
}

func (g *Gateway) Generate(ctx context.Context, req *gateway.Request, resp *components.LLMResponse) (string, error) {
	ctx, cancel := g.Bound(ctx)
	defer cancel()
	if resp == nil {
		resp = new(components.LLMResponse)
	}
	memory := components.NewMemory(0)
	memory.NewTurn()
	memory.NewMessage(components.UserRole, schema.String(req.UserMessage))
	systemPrompt := catalog(req.SystemPrompt, req.Capabilities)
	for idx := range g.MaxIterations() {
		step := new(Step)
		if err := g.step(ctx, systemPrompt, memory.History(), step, resp); err != nil {
			return "", err
		}
		if step.Capability == "" {
			return strings.TrimSpace(step.Answer), nil
		}
		args, err := json.Marshal(step.Arguments)
		if err != nil {
			return "", err
		}
		result, isErr := gateway.Invoke(ctx, req.Capabilities, fmt.Sprintf("step-%d", idx), step.Capability, args, resp)
		memory.NewMessage(components.AssistantRole, step)
		if isErr {
			result = "Error: " + result
		}
		memory.NewMessage(components.UserRole, schema.String(fmt.Sprintf("Capability %s returned:\n%s", step.Capability, result)))
	}
	return "", gateway.ErrMaxIterations
}

// step builds a fresh request per round since instructors append the output schema to the system message in place
func (g *Gateway) step(ctx context.Context, systemPrompt string, history []components.Message, step *Step, resp *components.LLMResponse) error {
	model := g.Model()
	maxTokens := g.MaxTokens()
	temperature := g.Temperature()
	switch clt := g.client.(type) {
	case OpenAIInstructor:
		chatReq := openai.ChatCompletionRequest{
			Model:               model,
			Temperature:         temperature,
			MaxCompletionTokens: maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			},
		}
		for _, msg := range history {
			var v openai.ChatCompletionMessage
			msg.ToOpenAI(&v)
			chatReq.Messages = append(chatReq.Messages, v)
		}
		var res openai.ChatCompletionResponse
		if err := clt.Chat(ctx, &chatReq, step, &res); err != nil {
			return fmt.Errorf("instructor openai: %w", err)
		}
		resp.FromOpenAI(&res)
	case AnthropicInstructor:
		chatReq := anthropic.MessagesRequest{
			Model:       anthropic.Model(model),
			System:      systemPrompt,
			Temperature: &temperature,
			MaxTokens:   maxTokens,
		}
		for _, msg := range history {
			var v anthropic.Message
			msg.ToAnthropic(&v)
			chatReq.Messages = append(chatReq.Messages, v)
		}
		var res anthropic.MessagesResponse
		if err := clt.Chat(ctx, &chatReq, step, &res); err != nil {
			return fmt.Errorf("instructor anthropic: %w", err)
		}
		resp.FromAnthropic(&res)
	case CohereInstructor:
		if len(history) == 0 {
			return gateway.ErrEmptyResponse
		}
		last := len(history) - 1
		temperature64 := float64(temperature)
		chatReq := cohere.ChatRequest{
			Model:       &model,
			Preamble:    &systemPrompt,
			Temperature: &temperature64,
			MaxTokens:   &maxTokens,
			Message:     history[last].Text(),
		}
		for _, msg := range history[:last] {
			v := new(cohere.Message)
			msg.ToCohere(v)
			chatReq.ChatHistory = append(chatReq.ChatHistory, v)
		}
		var res cohere.NonStreamedChatResponse
		if err := clt.Chat(ctx, &chatReq, step, &res); err != nil {
			return fmt.Errorf("instructor cohere: %w", err)
		}
		resp.FromCohere(&res)
	default:
		return ErrUnsupportedClient
	}
	return nil
}

func catalog(systemPrompt string, capabilities []gateway.Capability) string {
	if len(capabilities) == 0 {
		return systemPrompt
	}
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n# CAPABILITIES\n")
	sb.WriteString("Set capability and arguments to call one of the following, or set answer when you are done.\n")
	for _, c := range capabilities {
		params, _ := json.Marshal(c.Parameters())
		sb.WriteString("- ")
		sb.WriteString(c.Name())
		sb.WriteString(": ")
		sb.WriteString(c.Description())
		sb.WriteString("\n  arguments schema: ")
		sb.Write(params)
		sb.WriteString("\n")
	}
	return sb.String()
}
