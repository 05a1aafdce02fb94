package math

import (
	"context"
	"fmt"

	"github.com/bububa/teachassist/agents"
	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/components/systemprompt/simple"
)

const (
	Name        = "math_assistant"
	Description = "Process and respond to math-related queries using a specialized math agent."

	SystemPrompt = `You are math wizard, a specialized mathematics education assistant. Your capabilities include:

1. Mathematical Operations:
   - Arithmetic calculations
   - Algebraic problem-solving
   - Geometric analysis
   - Statistical computations

2. Teaching Tools:
   - Step-by-step problem solving
   - Visual explanation creation
   - Formula application guidance
   - Concept breakdown

3. Educational Approach:
   - Show detailed work
   - Explain mathematical reasoning
   - Provide alternative solutions
   - Link concepts to real-world applications

Focus on clarity and systematic problem-solving while ensuring students understand the underlying concepts.`

	promptTemplate = "Please solve the following mathematical problem, showing all steps and explaining concepts clearly: %s"
	// Apology is returned when the model produced no text
	Apology        = "I apologize, but I couldn't solve this mathematical problem. Please check if your query is clearly stated or try rephrasing it."
	errorTemplate  = "Error processing your mathematical query: %s"
)

// Responder solves math problems step by step with a calculator capability
type Responder struct {
	agent *agents.Agent
}

var _ agents.Responder = (*Responder)(nil)

// New returns a math responder; calculator is granted on every call
func New(gw gateway.Gateway, calculator gateway.Capability, opts ...agents.Option) *Responder {
	options := []agents.Option{
		agents.WithName(Name),
		agents.WithGateway(gw),
		agents.WithSystemPromptGenerator(simple.New(SystemPrompt)),
	}
	if calculator != nil {
		options = append(options, agents.WithCapabilities(calculator))
	}
	return &Responder{
		agent: agents.NewAgent(append(options, opts...)...),
	}
}

func (r *Responder) Name() string {
	return Name
}

func (r *Responder) Description() string {
	return Description
}

// Solve returns the worked solution, the apology for empty output or the error text
func (r *Responder) Solve(ctx context.Context, query string, usage *components.LLMUsage) string {
	resp := new(components.LLMResponse)
	defer agents.MergeUsage(usage, resp)
	out, err := r.agent.Run(ctx, fmt.Sprintf(promptTemplate, query), resp)
	if err != nil {
		return fmt.Sprintf(errorTemplate, err.Error())
	}
	if out == "" {
		return Apology
	}
	return out
}

func (r *Responder) Answer(ctx context.Context, query string, usage *components.LLMUsage) string {
	return r.Solve(ctx, query, usage)
}
