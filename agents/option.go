package agents

import (
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/components/systemprompt"
)

type Option func(c *Config)

func WithGateway(gw gateway.Gateway) Option {
	return func(c *Config) {
		c.gateway = gw
	}
}

func WithSystemPromptGenerator(g systemprompt.Generator) Option {
	return func(c *Config) {
		c.systemPromptGenerator = g
	}
}

func WithCapabilities(capabilities ...gateway.Capability) Option {
	return func(c *Config) {
		c.capabilities = append(c.capabilities, capabilities...)
	}
}

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}

func WithStartHook(fn StartHook) Option {
	return func(c *Config) {
		c.startHook = fn
	}
}

func WithEndHook(fn EndHook) Option {
	return func(c *Config) {
		c.endHook = fn
	}
}

func WithErrorHook(fn ErrorHook) Option {
	return func(c *Config) {
		c.errorHook = fn
	}
}

// WithHooks applies a bundle of hooks, usually produced by a logging adapter
func WithHooks(start StartHook, end EndHook, fail ErrorHook) Option {
	return func(c *Config) {
		c.startHook = start
		c.endHook = end
		c.errorHook = fail
	}
}
