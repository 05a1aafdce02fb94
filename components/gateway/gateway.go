package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bububa/teachassist/components"
)

type Provider = string

const (
	ProviderBedrock    Provider = "Bedrock"
	ProviderOpenAI     Provider = "OpenAI"
	ProviderAnthropic  Provider = "Anthropic"
	ProviderInstructor Provider = "Instructor"
)

var (
	// ErrMaxIterations is returned when the model keeps requesting capabilities past the bound
	ErrMaxIterations = errors.New("capability loop exceeded max iterations")
	// ErrUnknownCapability is reported back to the model when it asks for a capability it was not granted
	ErrUnknownCapability = errors.New("unknown capability")
	// ErrEmptyResponse is returned when the provider answers without any message
	ErrEmptyResponse = errors.New("empty response from model")
)

// Capability is a named function the model may invoke while generating
type Capability interface {
	Name() string
	Description() string
	// Parameters returns the JSON schema of the call arguments
	Parameters() map[string]any
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// Request is a single stateless generation
type Request struct {
	SystemPrompt string
	Capabilities []Capability
	UserMessage  string
}

func NewRequest(systemPrompt string, userMessage string, capabilities ...Capability) *Request {
	return &Request{
		SystemPrompt: systemPrompt,
		Capabilities: capabilities,
		UserMessage:  userMessage,
	}
}

// Gateway sends a prompt to a hosted text generation service and returns the final text.
// Capability calls requested by the model are executed inside Generate.
type Gateway interface {
	Provider() Provider
	Model() string
	Generate(ctx context.Context, req *Request, resp *components.LLMResponse) (string, error)
}

// Lookup finds a granted capability by name
func Lookup(capabilities []Capability, name string) (Capability, bool) {
	for _, c := range capabilities {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Invoke runs the named capability and records the call on resp.
// Failures are returned as content with isErr set so the model can recover.
func Invoke(ctx context.Context, capabilities []Capability, id string, name string, args json.RawMessage, resp *components.LLMResponse) (string, bool) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	call := components.ToolCall{
		ID:        id,
		Name:      name,
		Arguments: string(args),
	}
	capability, ok := Lookup(capabilities, name)
	if !ok {
		call.Result = fmt.Errorf("%w: %s", ErrUnknownCapability, name).Error()
		call.IsError = true
	} else if result, err := capability.Call(ctx, args); err != nil {
		call.Result = err.Error()
		call.IsError = true
	} else {
		call.Result = result
	}
	if resp != nil {
		resp.AddToolCall(call)
	}
	return call.Result, call.IsError
}
