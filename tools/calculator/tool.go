package calculator

import (
	"context"
	"fmt"

	"github.com/Knetic/govaluate"

	"github.com/bububa/teachassist/schema"
	"github.com/bububa/teachassist/tools"
)

const Name = "calculator"

// Input Tool for performing calculations. Supports basic arithmetic operations
// like addition, subtraction, multiplication, and division, as well as more
// complex operations like exponentiation and trigonometric functions.
type Input struct {
	// Expression Mathematical expression to evaluate. For example, '2 + 2'.
	Expression string `json:"expression" jsonschema:"title=expression,description=Mathematical expression to evaluate. For example '2 + 2' or 'sqrt(16) * pi'."`
	// Params represents expressions's parameters
	Params map[string]any `json:"params,omitempty" jsonschema:"title=params,description=Named numeric parameters referenced by the expression."`
}

func NewInput(exp string, params map[string]any) *Input {
	return &Input{
		Expression: exp,
		Params:     params,
	}
}

// Output Schema for the output of the calculator
type Output struct {
	schema.Base
	// Result Result of the calculation
	Result any `json:"result"`
}

func NewOutput(result any) *Output {
	return &Output{
		Result: result,
	}
}

type Tool struct {
	tools.Config
}

var _ tools.Tool[Input, Output] = (*Tool)(nil)

func New(opts ...tools.Option) *Tool {
	ret := new(Tool)
	tools.Apply(&ret.Config, opts...)
	if ret.Title() == "" {
		ret.SetTitle(Name)
	}
	if ret.Description() == "" {
		ret.SetDescription("Evaluates a mathematical expression. Supports + - * / % ** and functions such as sqrt, pow, abs, floor, ceil, round, sin, cos, tan, log, ln, min and max. Constants pi, e and phi are available.")
	}
	return ret
}

// Run evaluates the expression with the given parameters
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	if input.Expression == "" {
		return nil, fmt.Errorf("%w: empty expression", tools.ErrInvalidArguments)
	}
	exp, err := govaluate.NewEvaluableExpressionWithFunctions(input.Expression, Functions)
	if err != nil {
		return nil, err
	}
	params := make(map[string]any, len(input.Params)+len(constParams))
	for k, v := range input.Params {
		params[k] = v
	}
	for k, v := range constParams {
		if _, ok := params[k]; ok {
			continue
		}
		params[k] = v
	}
	result, err := exp.Evaluate(params)
	if err != nil {
		return nil, err
	}
	return NewOutput(result), nil
}
