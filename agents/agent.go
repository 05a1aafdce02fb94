package agents

import (
	"context"
	"errors"
	"strings"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/components/systemprompt"
	"github.com/bububa/teachassist/components/systemprompt/simple"
	"github.com/bububa/teachassist/schema"
)

// ErrMissingGateway is returned when an agent runs without a gateway
var ErrMissingGateway = errors.New("agent has no gateway")

type (
	StartHook func(ctx context.Context, agent *Agent, input string)
	EndHook   func(ctx context.Context, agent *Agent, transcript *components.Memory, resp *components.LLMResponse)
	ErrorHook func(ctx context.Context, agent *Agent, input string, resp *components.LLMResponse, err error)
)

// Config represents general agents configuration.
// It is built once at process start and only read afterwards.
type Config struct {
	// gateway the language model gateway answering for the agent
	gateway gateway.Gateway
	// systemPromptGenerator Component for generating system prompts.
	systemPromptGenerator systemprompt.Generator
	// capabilities are granted to the model on every call
	capabilities []gateway.Capability
	// name is Agent name presentation
	name      string
	startHook StartHook
	endHook   EndHook
	errorHook ErrorHook
}

// Agent is a stateless responder: system prompt and capabilities over a Gateway.
// Every Run builds its own transcript so no turn leaks into the next.
type Agent struct {
	Config
}

// NewAgent initializes the Agent
func NewAgent(options ...Option) *Agent {
	ret := new(Agent)
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = simple.New("")
	}
	return ret
}

func (a *Agent) Name() string {
	return a.name
}

func (a *Agent) Gateway() gateway.Gateway {
	return a.gateway
}

// Capabilities returns the capabilities granted on every call
func (a *Agent) Capabilities() []gateway.Capability {
	ret := make([]gateway.Capability, len(a.capabilities))
	copy(ret, a.capabilities)
	return ret
}

// SystemPrompt returns the system prompt
func (a *Agent) SystemPrompt() string {
	return a.systemPromptGenerator.Generate()
}

// Run sends input to the gateway and returns the trimmed generated text.
// extra capabilities are granted for this call only.
func (a *Agent) Run(ctx context.Context, input string, resp *components.LLMResponse, extra ...gateway.Capability) (string, error) {
	if resp == nil {
		resp = new(components.LLMResponse)
	}
	if fn := a.startHook; fn != nil {
		fn(ctx, a, input)
	}
	if a.gateway == nil {
		a.onError(ctx, input, resp, ErrMissingGateway)
		return "", ErrMissingGateway
	}
	transcript := components.NewMemory(0)
	transcript.NewTurn()
	msg := transcript.NewMessage(components.UserRole, schema.String(input))
	capabilities := a.capabilities
	if len(extra) > 0 {
		capabilities = append(a.Capabilities(), extra...)
	}
	req := gateway.NewRequest(a.SystemPrompt(), msg.Text(), capabilities...)
	output, err := a.gateway.Generate(ctx, req, resp)
	if err != nil {
		a.onError(ctx, input, resp, err)
		return "", err
	}
	output = strings.TrimSpace(output)
	transcript.NewMessage(components.AssistantRole, schema.String(output))
	if fn := a.endHook; fn != nil {
		fn(ctx, a, transcript, resp)
	}
	return output, nil
}

func (a *Agent) onError(ctx context.Context, input string, resp *components.LLMResponse, err error) {
	if fn := a.errorHook; fn != nil {
		fn(ctx, a, input, resp, err)
	}
}
