package vectordb

import (
	"context"
	"time"
)

const (
	DefaultCollection = "knowledge"
	DefaultTopK       = 3
	DefaultTimeout    = 15 * time.Second
)

type Options struct {
	EngineType EngineType    // Database type (e.g., "pinecone", "memory")
	Collection string        // Default collection, namespace for pinecone
	TopK       int           // Maximum number of results to return
	Columns    []string      // Columns to retrieve from the database
	Dimension  int           // Vector dimension
	Timeout    time.Duration // Bound of every call to the index
}

// Option is a function type for configuring engine Options.
type Option func(*Options)

// WithEngine sets the database type.
func WithEngine(engine EngineType) Option {
	return func(c *Options) {
		c.EngineType = engine
	}
}

// WithCollection sets the collection used when a search does not name one.
// For pinecone the collection is the namespace, empty meaning the default namespace.
func WithCollection(name string) Option {
	return func(c *Options) {
		c.Collection = name
	}
}

// WithTopK sets the default maximum number of results to return.
func WithTopK(k int) Option {
	return func(c *Options) {
		c.TopK = k
	}
}

// WithColumns specifies which columns to retrieve from the database.
func WithColumns(columns ...string) Option {
	return func(c *Options) {
		c.Columns = columns
	}
}

// WithDimension sets the dimension of vectors to be stored.
// This must match the dimension of your embedding model:
// - amazon.titan-embed-text-v2:0: 1024
// - text-embedding-3-small: 1536
// - Cohere embed-english-v3.0: 1024
func WithDimension(dimension int) Option {
	return func(c *Options) {
		c.Dimension = dimension
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Options) {
		c.Timeout = timeout
	}
}

func NewOptions(engine EngineType, opts ...Option) Options {
	o := Options{
		EngineType: engine,
		Collection: DefaultCollection,
		TopK:       DefaultTopK,
		Timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SearchOptions resolves per call options against the engine defaults
func (o Options) SearchOptions(opts ...SearchOption) SearchOptions {
	ret := SearchOptions{
		Collection: o.Collection,
		TopK:       o.TopK,
	}
	for _, opt := range opts {
		opt(&ret)
	}
	if ret.TopK <= 0 {
		ret.TopK = DefaultTopK
	}
	return ret
}

// Bound derives a context limited by the configured timeout
func (o Options) Bound(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
