package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/tools"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	tool := New()
	tests := []struct {
		exp    string
		params map[string]any
		want   float64
	}{
		{exp: "2+2", want: 4},
		{exp: "sqrt(16) * 2", want: 8},
		{exp: "pow(2, 10)", want: 1024},
		{exp: "max(3, 9, 4) - min(7, 1)", want: 8},
		{exp: "x * y", params: map[string]any{"x": 3, "y": 5}, want: 15},
		{exp: "round(pi * 100)", want: 314},
	}
	for _, tt := range tests {
		t.Run(tt.exp, func(t *testing.T) {
			ret, err := tool.Run(ctx, NewInput(tt.exp, tt.params))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, ret.Result, 1e-9)
		})
	}
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	tool := New()
	_, err := tool.Run(ctx, NewInput("", nil))
	assert.ErrorIs(t, err, tools.ErrInvalidArguments)

	_, err = tool.Run(ctx, NewInput("2 +", nil))
	assert.Error(t, err)

	_, err = tool.Run(ctx, NewInput("sqrt(1, 2)", nil))
	assert.Error(t, err)
}

func TestCapability(t *testing.T) {
	var started, ended int
	capability := tools.AsCapability[Input, Output](New(
		tools.WithStartHook(func(context.Context, tools.ITool, any) { started++ }),
		tools.WithEndHook(func(context.Context, tools.ITool, any, any) { ended++ }),
	))
	assert.Equal(t, Name, capability.Name())
	props, ok := capability.Parameters()["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "expression")

	ret, err := capability.Call(context.Background(), json.RawMessage(`{"expression":"6*7"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":42}`, ret)
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, ended)

	_, err = capability.Call(context.Background(), json.RawMessage(`{"expression":`))
	assert.ErrorIs(t, err, tools.ErrInvalidArguments)
}

func ExampleTool() {
	ctx := context.Background()
	tool := New()
	ret, _ := tool.Run(ctx, NewInput("2+2", nil))
	fmt.Println(ret.Result)
	// Output:
	// 4
}
