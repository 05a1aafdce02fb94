package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/bububa/teachassist/agents"
	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/components/systemprompt/simple"
	"github.com/bububa/teachassist/schema"
	"github.com/bububa/teachassist/tools"
	"github.com/bububa/teachassist/tools/retrieval"
)

const (
	Name        = "knowledgebase_assistant"
	Description = "Answer company-related questions based on internal knowledge from the knowledge base."

	SystemPrompt = `You are Shellbot, a helpful AI assistant for Shellbeehaken Ltd. You are NOT an Amazon AI assistant.

CRITICAL: Keep responses SHORT and DIRECT. Maximum 2-3 sentences.

**Only use the information provided by the knowledge retrieval tool. If not available, say "I don't have that information available."**

IDENTITY: Only when specifically asked "who are you" or similar identity questions, respond with: "I'm Shellbot, your helpful AI assistant for Shellbeehaken Ltd."

For all other questions: Answer directly without introducing yourself.
For greetings: respond warmly but briefly.
Avoid technical jargon, citations, or markdown.`

	promptTemplate = "Answer this company-related question using the knowledge retrieval tool: %s"

	EmbeddingFailure = retrieval.EmbeddingFailure
	NoInformation    = retrieval.NoInformation
	// GenerationFailure is returned when the model call fails
	GenerationFailure = "Something went wrong while answering your question."
)

// Responder answers company questions from passages found in the vector index
type Responder struct {
	agent     *agents.Agent
	retriever *retrieval.Retriever
	toolOpts  []tools.Option
}

var _ agents.Responder = (*Responder)(nil)

type Option func(*responderOptions)

type responderOptions struct {
	agentOpts []agents.Option
	toolOpts  []tools.Option
	fileRead  gateway.Capability
}

// WithFileRead grants a file read capability on every call
func WithFileRead(capability gateway.Capability) Option {
	return func(o *responderOptions) {
		o.fileRead = capability
	}
}

// WithAgentOptions configures the underlying agent, e.g. hooks
func WithAgentOptions(opts ...agents.Option) Option {
	return func(o *responderOptions) {
		o.agentOpts = append(o.agentOpts, opts...)
	}
}

// WithToolOptions configures the retrieval capability, e.g. hooks
func WithToolOptions(opts ...tools.Option) Option {
	return func(o *responderOptions) {
		o.toolOpts = append(o.toolOpts, opts...)
	}
}

func New(gw gateway.Gateway, retriever *retrieval.Retriever, opts ...Option) *Responder {
	var o responderOptions
	for _, opt := range opts {
		opt(&o)
	}
	agentOpts := []agents.Option{
		agents.WithName(Name),
		agents.WithGateway(gw),
		agents.WithSystemPromptGenerator(simple.New(SystemPrompt)),
	}
	if o.fileRead != nil {
		agentOpts = append(agentOpts, agents.WithCapabilities(o.fileRead))
	}
	return &Responder{
		agent:     agents.NewAgent(append(agentOpts, o.agentOpts...)...),
		retriever: retriever,
		toolOpts:  o.toolOpts,
	}
}

func (r *Responder) Name() string {
	return Name
}

func (r *Responder) Description() string {
	return Description
}

// Answer embeds the query, searches and filters passages, then lets the model
// answer from the assembled context. The retrieval capability stays granted so
// the model can search again with a reformulated question.
func (r *Responder) Answer(ctx context.Context, query string, usage *components.LLMUsage) string {
	text, err := r.retriever.Context(ctx, query, usage)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmbedding) {
			return EmbeddingFailure
		}
		return NoInformation
	}
	resp := new(components.LLMResponse)
	defer agents.MergeUsage(usage, resp)
	retrieve := tools.AsCapability[retrieval.Input, schema.String](
		retrieval.New(r.retriever, retrieval.WithUsage(usage), retrieval.WithToolOptions(r.toolOpts...)),
	)
	prompt := fmt.Sprintf(promptTemplate, query) + "\n\nRetrieved information:\n" + text
	out, err := r.agent.Run(ctx, prompt, resp, retrieve)
	if err != nil {
		return GenerationFailure
	}
	if out == "" {
		return NoInformation
	}
	return out
}
