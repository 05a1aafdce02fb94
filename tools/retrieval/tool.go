package retrieval

import (
	"context"
	"errors"

	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/schema"
	"github.com/bububa/teachassist/tools"
)

const (
	Name = "retrieve_knowledge"

	EmbeddingFailure = "Sorry, I couldn't process your request due to embedding failure."
	NoInformation    = "I don't have that information available."
	RetrievalFailure = "Something went wrong while retrieving information."
)

type Input struct {
	Query string `json:"query" jsonschema:"title=query,description=Question or keywords to search the company knowledge base for."`
}

// Tool exposes a Retriever as a capability.
// Failures are reported as fixed sentences so the model can answer gracefully.
type Tool struct {
	tools.Config
	retriever *Retriever
	usage     *components.LLMUsage
}

var _ tools.Tool[Input, schema.String] = (*Tool)(nil)

type ToolOption func(*Tool)

// WithUsage merges embedding usage of every call into usage
func WithUsage(usage *components.LLMUsage) ToolOption {
	return func(t *Tool) {
		t.usage = usage
	}
}

func WithToolOptions(opts ...tools.Option) ToolOption {
	return func(t *Tool) {
		tools.Apply(&t.Config, opts...)
	}
}

func New(retriever *Retriever, opts ...ToolOption) *Tool {
	ret := &Tool{retriever: retriever}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.Title() == "" {
		ret.SetTitle(Name)
	}
	if ret.Description() == "" {
		ret.SetDescription("Retrieve relevant company information from the knowledge base.")
	}
	return ret
}

func (t *Tool) Run(ctx context.Context, input *Input) (*schema.String, error) {
	text, err := t.retriever.Context(ctx, input.Query, t.usage)
	switch {
	case err == nil:
		return schema.NewString("Retrieved information:\n" + text), nil
	case errors.Is(err, ErrEmbedding):
		return schema.NewString(EmbeddingFailure), nil
	case errors.Is(err, ErrNoInformation):
		return schema.NewString(NoInformation), nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	}
	return schema.NewString(RetrievalFailure), nil
}
