package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway/gatewaytest"
	"github.com/bububa/teachassist/components/systemprompt"
	"github.com/bububa/teachassist/components/systemprompt/simple"
)

func TestAgentRun(t *testing.T) {
	gw := &gatewaytest.Gateway{Reply: "  hello there \n"}
	base := &gatewaytest.Capability{CapabilityName: "base"}
	extra := &gatewaytest.Capability{CapabilityName: "extra"}
	var (
		started    string
		transcript *components.Memory
	)
	agent := NewAgent(
		WithName("greeter"),
		WithGateway(gw),
		WithSystemPromptGenerator(simple.New("You greet people.")),
		WithCapabilities(base),
		WithStartHook(func(_ context.Context, _ *Agent, input string) { started = input }),
		WithEndHook(func(_ context.Context, _ *Agent, m *components.Memory, _ *components.LLMResponse) { transcript = m }),
	)
	out, err := agent.Run(context.Background(), "hi", nil, extra)
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
	assert.Equal(t, "hi", started)
	require.NotNil(t, transcript)
	assert.Equal(t, 2, transcript.MessageCount())
	last, ok := transcript.LastMessage(components.AssistantRole)
	require.True(t, ok)
	assert.Equal(t, "hello there", last.Text())
	assert.NotEmpty(t, last.TurnID())

	req := gw.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "You greet people.", req.SystemPrompt)
	assert.Equal(t, "hi", req.UserMessage)
	require.Len(t, req.Capabilities, 2)
	assert.Equal(t, "extra", req.Capabilities[1].Name())
	assert.Len(t, agent.Capabilities(), 1)
}

func TestAgentSystemPromptContext(t *testing.T) {
	agent := NewAgent(WithSystemPromptGenerator(simple.New("You greet people.",
		simple.WithContextProviders(systemprompt.NewStaticProvider("Audience", "Students")),
	)))
	assert.Equal(t, "You greet people.\n\n# EXTRA INFORMATION AND CONTEXT\n## Audience\nStudents", agent.SystemPrompt())
}

func TestAgentRunError(t *testing.T) {
	boom := errors.New("boom")
	var hooked error
	agent := NewAgent(
		WithGateway(&gatewaytest.Gateway{Err: boom}),
		WithErrorHook(func(_ context.Context, _ *Agent, _ string, _ *components.LLMResponse, err error) { hooked = err }),
	)
	_, err := agent.Run(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, hooked, boom)

	_, err = NewAgent().Run(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, ErrMissingGateway)
}
