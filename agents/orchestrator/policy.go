package orchestrator

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/bububa/teachassist/components/systemprompt"
	"github.com/bububa/teachassist/components/systemprompt/cot"
)

// Route is the topic domain a query is dispatched to
type Route string

const (
	RouteWeather   Route = "weather"
	RouteKnowledge Route = "knowledge"
	RouteMath      Route = "math"
	RouteDecline   Route = "decline"
)

//go:embed policy.yaml
var defaultPolicy []byte

// Domain is a supported topic and the rule the model follows to route to it
type Domain struct {
	Route       Route  `yaml:"route" validate:"required,oneof=weather knowledge math"`
	Description string `yaml:"description" validate:"required"`
	Rule        string `yaml:"rule" validate:"required"`
}

// Section is extra reference material appended to the orchestrator prompt
type Section struct {
	Title string `yaml:"title" validate:"required"`
	Info  string `yaml:"info" validate:"required"`
}

// Policy configures the orchestrator: identity, supported domains and the decline sentence
type Policy struct {
	Name             string   `yaml:"name" validate:"required"`
	Identity         []string `yaml:"identity" validate:"required,min=1"`
	Responsibilities []string `yaml:"responsibilities"`
	Domains          []Domain `yaml:"domains" validate:"required,min=1,unique=Route,dive"`
	Decline          string    `yaml:"decline" validate:"required"`
	Context          []Section `yaml:"context" validate:"dive"`
}

// DefaultPolicy returns the built in weather and knowledge base policy
func DefaultPolicy() *Policy {
	p, err := ParsePolicy(defaultPolicy)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePolicy decodes and validates a YAML policy
func ParsePolicy(bs []byte) (*Policy, error) {
	p := new(Policy)
	if err := yaml.Unmarshal(bs, p); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadPolicy reads a policy file, an empty path returns the default policy
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	return ParsePolicy(bs)
}

func (p *Policy) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	return nil
}

// Domain returns the domain configured for route
func (p *Policy) Domain(route Route) (Domain, bool) {
	for _, d := range p.Domains {
		if d.Route == route {
			return d, true
		}
	}
	return Domain{}, false
}

// Generator renders the policy as the orchestrator system prompt
func (p *Policy) Generator() systemprompt.Generator {
	background := make([]string, 0, len(p.Identity))
	for _, v := range p.Identity {
		background = append(background, "- "+v)
	}
	steps := make([]string, 0, len(p.Responsibilities)+len(p.Domains))
	for _, v := range p.Responsibilities {
		steps = append(steps, "- "+v)
	}
	for _, d := range p.Domains {
		steps = append(steps, fmt.Sprintf("- %s Use the %s capability.", d.Rule, CapabilityName(d.Route)))
	}
	providers := make([]systemprompt.ContextProvider, 0, len(p.Context))
	for _, c := range p.Context {
		providers = append(providers, systemprompt.NewStaticProvider(c.Title, c.Info))
	}
	return cot.New(
		cot.WithContextProviders(providers...),
		cot.WithBackground(background...),
		cot.WithSteps(steps...),
		cot.WithOutputInstructs(
			"- When you invoke an assistant, its answer is returned to the user as is.",
			fmt.Sprintf("- If the user asks something unrelated, your ONLY reply must be: %q", p.Decline),
			"- Do not attempt to answer queries outside of the supported assistants.",
		),
	)
}

// CapabilityName is the capability the model calls to dispatch to route
func CapabilityName(route Route) string {
	switch route {
	case RouteKnowledge:
		return "knowledgebase_assistant"
	}
	return string(route) + "_assistant"
}
