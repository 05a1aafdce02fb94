package tools

import "context"

type (
	StartHook func(ctx context.Context, tool ITool, input any)
	EndHook   func(ctx context.Context, tool ITool, input any, output any)
	ErrorHook func(ctx context.Context, tool ITool, input any, err error)
)

// Config holds the title, description and hooks shared by every tool
type Config struct {
	// title the default title of the tool, used as the capability name
	title string
	// description the default description of the tool
	description string
	startHook   StartHook
	endHook     EndHook
	errorHook   ErrorHook
}

func (c *Config) SetTitle(v string) {
	c.title = v
}

func (c Config) Title() string {
	return c.title
}

func (c *Config) SetDescription(v string) {
	c.description = v
}

func (c Config) Description() string {
	return c.description
}

func (c *Config) SetStartHook(fn StartHook) {
	c.startHook = fn
}

func (c *Config) SetEndHook(fn EndHook) {
	c.endHook = fn
}

func (c *Config) SetErrorHook(fn ErrorHook) {
	c.errorHook = fn
}

func (c *Config) config() *Config {
	return c
}

func (c *Config) onStart(ctx context.Context, tool ITool, input any) {
	if c != nil && c.startHook != nil {
		c.startHook(ctx, tool, input)
	}
}

func (c *Config) onEnd(ctx context.Context, tool ITool, input any, output any) {
	if c != nil && c.endHook != nil {
		c.endHook(ctx, tool, input, output)
	}
}

func (c *Config) onError(ctx context.Context, tool ITool, input any, err error) {
	if c != nil && c.errorHook != nil {
		c.errorHook(ctx, tool, input, err)
	}
}
