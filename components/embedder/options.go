package embedder

import (
	"context"
	"time"
)

const DefaultTimeout = 15 * time.Second

// Options holds the configuration for creating an Embedder instance.
type Options struct {
	// provider specifies the embedding service to use (e.g., "Bedrock", "Cohere")
	provider Provider
	// model specifies the model to use
	model string
	// timeout bounds every call to the embedding service
	timeout time.Duration
}

// Option is a function type for configuring the embedder Options.
type Option func(*Options)

func WithProvider(provider Provider) Option {
	return func(o *Options) {
		o.provider = provider
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.model = model
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.timeout = timeout
	}
}

func (i Options) Provider() Provider {
	return i.provider
}

func (i Options) Model() string {
	return i.model
}

func (i Options) Timeout() time.Duration {
	if i.timeout <= 0 {
		return DefaultTimeout
	}
	return i.timeout
}

// Bound derives a context limited by the configured timeout
func (i Options) Bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, i.Timeout())
}
