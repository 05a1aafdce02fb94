package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bububa/teachassist/agents"
	"github.com/bububa/teachassist/components"
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/components/systemprompt/simple"
	"github.com/bububa/teachassist/schema"
	"github.com/bububa/teachassist/tools"
	weathertool "github.com/bububa/teachassist/tools/weather"
)

const (
	Name        = "weather_assistant"
	Description = "Weather Assistant tool to process and respond to weather-related queries."
	DefaultCity = "Dhaka"

	SystemPrompt = `You are WeatherBot, a helpful and reliable weather assistant.

Your duties include:
1. Providing current weather conditions for a given city.
2. Presenting temperature, condition, humidity, wind speed, and visibility.
3. Explaining any technical terms to users if needed.
4. If data is unavailable, respond politely and suggest checking the city name.

Always be concise, clear, and friendly. Use emojis for clarity when appropriate.`

	promptTemplate = "Respond to this weather-related query with accurate data and friendly tone: %s"
	// NotUnderstood is returned when the model produced no text
	NotUnderstood = "❓ I couldn't understand your weather query. Please try again."
	errorTemplate = "❌ Error handling the query: %s"
)

// Responder answers weather queries either by a direct fetch or conversationally
type Responder struct {
	agent       *agents.Agent
	fetcher     *weathertool.Tool
	defaultCity string
}

var _ agents.Responder = (*Responder)(nil)

type Option func(*Responder)

func WithDefaultCity(city string) Option {
	return func(r *Responder) {
		if city != "" {
			r.defaultCity = city
		}
	}
}

// WithAgentOptions configures the underlying agent, e.g. hooks
func WithAgentOptions(opts ...agents.Option) Option {
	return func(r *Responder) {
		r.agent = agents.NewAgent(append(r.agentOptions(), opts...)...)
	}
}

// New returns a weather responder. The fetcher is granted per call with the
// fallback city, extra capabilities such as calculator and clock on every call.
func New(gw gateway.Gateway, fetcher *weathertool.Tool, capabilities []gateway.Capability, opts ...Option) *Responder {
	ret := &Responder{
		fetcher:     fetcher,
		defaultCity: DefaultCity,
	}
	ret.agent = agents.NewAgent(ret.agentOptions(agents.WithGateway(gw), agents.WithCapabilities(capabilities...))...)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (r *Responder) agentOptions(extra ...agents.Option) []agents.Option {
	opts := []agents.Option{
		agents.WithName(Name),
		agents.WithSystemPromptGenerator(simple.New(SystemPrompt)),
	}
	if r.agent != nil {
		opts = append(opts,
			agents.WithGateway(r.agent.Gateway()),
			agents.WithCapabilities(r.agent.Capabilities()...),
		)
	}
	return append(opts, extra...)
}

func (r *Responder) Name() string {
	return Name
}

func (r *Responder) Description() string {
	return Description
}

// DefaultCity returns the city used when a request names none
func (r *Responder) DefaultCity() string {
	return r.defaultCity
}

// Report fetches the formatted report for city without involving the model
func (r *Responder) Report(ctx context.Context, city string) string {
	if strings.TrimSpace(city) == "" {
		city = r.defaultCity
	}
	return r.fetcher.Fetch(ctx, city)
}

// AnswerIn answers conversationally, city is used when the query names none
func (r *Responder) AnswerIn(ctx context.Context, query string, city string, usage *components.LLMUsage) string {
	if strings.TrimSpace(city) == "" {
		city = r.defaultCity
	}
	resp := new(components.LLMResponse)
	defer agents.MergeUsage(usage, resp)
	fetch := &cityCapability{
		Capability: tools.AsCapability[weathertool.Input, schema.String](r.fetcher),
		city:       city,
	}
	out, err := r.agent.Run(ctx, fmt.Sprintf(promptTemplate, query), resp, fetch)
	if err != nil {
		return fmt.Sprintf(errorTemplate, err.Error())
	}
	if out == "" {
		return NotUnderstood
	}
	return out
}

func (r *Responder) Answer(ctx context.Context, query string, usage *components.LLMUsage) string {
	return r.AnswerIn(ctx, query, r.defaultCity, usage)
}

// IsConversational reports whether a query should be answered by the model instead of a direct fetch
func IsConversational(query string) bool {
	return strings.Contains(strings.ToLower(query), "weather")
}

// cityCapability fills in the fallback city when the model omits it
type cityCapability struct {
	gateway.Capability
	city string
}

func (c *cityCapability) Description() string {
	return fmt.Sprintf("%s Uses %s when no city is given.", c.Capability.Description(), c.city)
}

func (c *cityCapability) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var input weathertool.Input
	if len(args) > 0 {
		if err := json.Unmarshal(args, &input); err != nil {
			return "", fmt.Errorf("%w: %w", tools.ErrInvalidArguments, err)
		}
	}
	if strings.TrimSpace(input.City) == "" {
		input.City = c.city
	}
	bs, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return c.Capability.Call(ctx, bs)
}
