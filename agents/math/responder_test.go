package math

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/components/gateway/gatewaytest"
	"github.com/bububa/teachassist/tools"
	"github.com/bububa/teachassist/tools/calculator"
)

func TestSolve(t *testing.T) {
	gw := &gatewaytest.Gateway{
		Calls: []gatewaytest.Call{{Capability: calculator.Name, Arguments: `{"expression":"12*7"}`}},
		ReplyFunc: func(_ *gateway.Request, results []string) (string, error) {
			return "Step 1: multiply. " + results[0], nil
		},
	}
	r := New(gw, tools.AsCapability[calculator.Input, calculator.Output](calculator.New()))
	usage := new(components.LLMUsage)
	out := r.Solve(context.Background(), "what is 12 times 7", usage)
	assert.Equal(t, `Step 1: multiply. {"result":84}`, out)

	req := gw.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, SystemPrompt, req.SystemPrompt)
	assert.Equal(t, "Please solve the following mathematical problem, showing all steps and explaining concepts clearly: what is 12 times 7", req.UserMessage)
	require.Len(t, req.Capabilities, 1)
	assert.Equal(t, calculator.Name, req.Capabilities[0].Name())
}

func TestSolveFallbacks(t *testing.T) {
	ctx := context.Background()
	r := New(&gatewaytest.Gateway{Reply: "   "}, nil)
	assert.Equal(t, Apology, r.Solve(ctx, "2+2", nil))

	r = New(&gatewaytest.Gateway{Err: errors.New("model throttled")}, nil)
	assert.Equal(t, "Error processing your mathematical query: model throttled", r.Answer(ctx, "2+2", nil))
}
