package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/bububa/teachassist/agents"
	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/logger"
)

const Name = "teacher-orchestrator"

var (
	// ErrResponderAlreadyUsed is reported to the model when it tries a second responder in one request
	ErrResponderAlreadyUsed = errors.New("a responder was already invoked for this request")
	// ErrMissingResponder is returned when the policy names a domain without a responder
	ErrMissingResponder = errors.New("no responder for policy domain")
)

// Input is the argument of every responder capability
type Input struct {
	Query string `json:"query" jsonschema:"title=query,description=The user question to forward to the assistant."`
}

// Outcome is the result of a single dispatch
type Outcome struct {
	Decision  Route
	Answer    string
	Responder string
	Usage     components.LLMUsage
	Elapsed   time.Duration
}

// Orchestrator lets the model classify a query and dispatch it to at most one responder.
// It holds no per request state and is safe for concurrent use.
type Orchestrator struct {
	agent      *agents.Agent
	policy     *Policy
	responders map[Route]agents.Responder
}

// New builds an orchestrator for policy. Every policy domain needs a responder,
// responders for other routes are never granted.
func New(gw gateway.Gateway, policy *Policy, responders map[Route]agents.Responder, opts ...agents.Option) (*Orchestrator, error) {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	granted := make(map[Route]agents.Responder, len(policy.Domains))
	for _, d := range policy.Domains {
		r, ok := responders[d.Route]
		if !ok || r == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingResponder, d.Route)
		}
		granted[d.Route] = r
	}
	options := []agents.Option{
		agents.WithName(Name),
		agents.WithGateway(gw),
		agents.WithSystemPromptGenerator(policy.Generator()),
	}
	return &Orchestrator{
		agent:      agents.NewAgent(append(options, opts...)...),
		policy:     policy,
		responders: granted,
	}, nil
}

func (o *Orchestrator) Policy() *Policy {
	return o.policy
}

// SystemPrompt returns the rendered policy
func (o *Orchestrator) SystemPrompt() string {
	return o.agent.SystemPrompt()
}

// Handle answers query with the invoked responder's text, or the decline sentence
// when no responder answered.
func (o *Orchestrator) Handle(ctx context.Context, query string) string {
	log := logger.FromContext(ctx).With("component", Name)
	outcome, err := o.Dispatch(ctx, query)
	if err != nil {
		log.Error("orchestrator failed, declining", "error", err)
		return o.policy.Decline
	}
	log.Info("orchestrator answered",
		"route", outcome.Decision,
		"responder", outcome.Responder,
		"elapsed", fmt.Sprintf("%.2fs", outcome.Elapsed.Seconds()),
		"input_tokens", outcome.Usage.InputTokens,
		"output_tokens", outcome.Usage.OutputTokens,
	)
	return outcome.Answer
}

// Dispatch runs one classification and returns the routing decision with the answer
func (o *Orchestrator) Dispatch(ctx context.Context, query string) (*Outcome, error) {
	start := time.Now()
	d := &dispatch{query: query}
	capabilities := make([]gateway.Capability, 0, len(o.policy.Domains))
	for _, domain := range o.policy.Domains {
		capabilities = append(capabilities, &responderCapability{
			dispatch:  d,
			domain:    domain,
			responder: o.responders[domain.Route],
		})
	}
	resp := new(components.LLMResponse)
	_, err := o.agent.Run(ctx, query, resp, capabilities...)
	outcome := &Outcome{
		Decision: RouteDecline,
		Answer:   o.policy.Decline,
		Elapsed:  time.Since(start),
	}
	outcome.Usage.Merge(resp.Usage)
	outcome.Usage.Merge(d.Usage())
	answered := d.answered.Load()
	if answered {
		outcome.Decision = Route(d.route.Load())
		outcome.Responder = d.responder.Load()
		outcome.Answer = d.answer.Load()
	}
	if err != nil {
		if !answered {
			return outcome, err
		}
		// the responder answered before the wrap up turn failed
		logger.FromContext(ctx).Warn("orchestrator failed after responder answered", "route", outcome.Decision, "error", err)
	}
	logger.FromContext(ctx).Debug("routing decision", "route", outcome.Decision, "responder", outcome.Responder)
	return outcome, nil
}

// dispatch is the per request state shared by the responder capabilities
type dispatch struct {
	query     string
	used      atomic.Bool
	route     atomic.String
	responder atomic.String
	answer    atomic.String
	answered  atomic.Bool
	mtx       sync.Mutex
	usage     components.LLMUsage
}

func (d *dispatch) addUsage(usage *components.LLMUsage) {
	d.mtx.Lock()
	d.usage.Merge(usage)
	d.mtx.Unlock()
}

// Usage returns a copy of the responder usage
func (d *dispatch) Usage() *components.LLMUsage {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	ret := d.usage
	return &ret
}

// responderCapability exposes a responder to the model
type responderCapability struct {
	dispatch  *dispatch
	domain    Domain
	responder agents.Responder
}

var _ gateway.Capability = (*responderCapability)(nil)

func (c *responderCapability) Name() string {
	return CapabilityName(c.domain.Route)
}

func (c *responderCapability) Description() string {
	return fmt.Sprintf("%s Handles: %s", c.responder.Description(), c.domain.Description)
}

func (c *responderCapability) Parameters() map[string]any {
	return gateway.ParametersSchema(new(Input))
}

func (c *responderCapability) Call(ctx context.Context, args json.RawMessage) (string, error) {
	if !c.dispatch.used.CompareAndSwap(false, true) {
		return "", ErrResponderAlreadyUsed
	}
	var input Input
	if len(args) > 0 {
		_ = json.Unmarshal(args, &input)
	}
	query := strings.TrimSpace(input.Query)
	if query == "" {
		query = c.dispatch.query
	}
	logger.FromContext(ctx).Info("routed to responder", "route", c.domain.Route, "responder", c.responder.Name())
	usage := new(components.LLMUsage)
	answer := c.responder.Answer(ctx, query, usage)
	c.dispatch.addUsage(usage)
	c.dispatch.route.Store(string(c.domain.Route))
	c.dispatch.responder.Store(c.responder.Name())
	c.dispatch.answer.Store(answer)
	c.dispatch.answered.Store(true)
	return answer, nil
}
