package gateway

import (
	"context"
	"time"
)

const (
	DefaultMaxTokens     = 1024
	DefaultMaxIterations = 8
	DefaultTimeout       = 60 * time.Second
)

// Options holds the model parameters shared by every gateway provider
type Options struct {
	model         string
	temperature   float32
	maxTokens     int
	maxIterations int
	timeout       time.Duration
}

// Option is a function type for configuring gateway Options.
type Option func(*Options)

func WithModel(model string) Option {
	return func(o *Options) {
		o.model = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(o *Options) {
		o.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.maxTokens = maxTokens
	}
}

// WithMaxIterations bounds the number of model round trips per Generate call
func WithMaxIterations(n int) Option {
	return func(o *Options) {
		o.maxIterations = n
	}
}

// WithTimeout bounds the whole Generate call including capability round trips
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.timeout = timeout
	}
}

func NewOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) Model() string {
	return o.model
}

func (o Options) Temperature() float32 {
	return o.temperature
}

func (o Options) MaxTokens() int {
	if o.maxTokens <= 0 {
		return DefaultMaxTokens
	}
	return o.maxTokens
}

func (o Options) MaxIterations() int {
	if o.maxIterations <= 0 {
		return DefaultMaxIterations
	}
	return o.maxIterations
}

func (o Options) Timeout() time.Duration {
	if o.timeout <= 0 {
		return DefaultTimeout
	}
	return o.timeout
}

// Bound derives a context limited by the configured timeout
func (o Options) Bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.Timeout())
}
