package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/schema"
)

// ErrInvalidArguments is returned when capability arguments do not decode into the tool input
var ErrInvalidArguments = errors.New("invalid tool arguments")

type ITool interface {
	SetTitle(string)
	Title() string
	SetDescription(string)
	Description() string
	SetStartHook(fn StartHook)
	SetEndHook(fn EndHook)
	SetErrorHook(fn ErrorHook)
}

type Tool[I any, O schema.Schema] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// capability exposes a typed tool to a language model gateway
type capability[I any, O schema.Schema] struct {
	tool Tool[I, O]
	// hooks are read from the tool's embedded Config when available
	hooks *Config
}

var _ gateway.Capability = (*capability[struct{}, schema.String])(nil)

// AsCapability adapts a typed tool into a gateway capability named by the tool title.
// Arguments are decoded from JSON into I, the output is rendered with schema.Stringify.
func AsCapability[I any, O schema.Schema](tool Tool[I, O]) gateway.Capability {
	ret := &capability[I, O]{tool: tool}
	if h, ok := any(tool).(interface{ config() *Config }); ok {
		ret.hooks = h.config()
	}
	return ret
}

func (c *capability[I, O]) Name() string {
	return c.tool.Title()
}

func (c *capability[I, O]) Description() string {
	return c.tool.Description()
}

func (c *capability[I, O]) Parameters() map[string]any {
	return gateway.ParametersSchema(new(I))
}

func (c *capability[I, O]) Call(ctx context.Context, args json.RawMessage) (string, error) {
	input := new(I)
	if len(args) > 0 {
		if err := json.Unmarshal(args, input); err != nil {
			err = fmt.Errorf("%w: %w", ErrInvalidArguments, err)
			c.hooks.onError(ctx, c.tool, input, err)
			return "", err
		}
	}
	c.hooks.onStart(ctx, c.tool, input)
	out, err := c.tool.Run(ctx, input)
	if err != nil {
		c.hooks.onError(ctx, c.tool, input, err)
		return "", err
	}
	c.hooks.onEnd(ctx, c.tool, input, out)
	if out == nil {
		return "", nil
	}
	return schema.Stringify(*out), nil
}
