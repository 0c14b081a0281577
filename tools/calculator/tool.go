package calculator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Knetic/govaluate"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/bububa/trip-planner/schema"
	"github.com/bububa/trip-planner/tools"
)

// Input Tool for performing calculations. Supports basic arithmetic operations
// like addition, subtraction, multiplication, and division, as well as
// abs, ceil, floor, round, sqrt, min and max.
type Input struct {
	schema.Base
	// Expression Mathematical expression to evaluate. For example, '2 + 2'.
	Expression string `json:"expression" validate:"required"`
	// Params represents expressions's parameters
	Params map[string]interface{} `json:"params,omitempty"`
}

func NewInput(exp string, params map[string]interface{}) *Input {
	return &Input{
		Expression: exp,
		Params:     params,
	}
}

// Output Schema for the output of the CalculatorTool
type Output struct {
	schema.Base
	// Result Result of the calculation
	Result interface{} `json:"result,omitempty"`
}

func NewOutput(result interface{}) *Output {
	return &Output{
		Result: result,
	}
}

// String formats the result for the model
func (o Output) String() string {
	if v, ok := o.Result.(float64); ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(o.Result)
}

type Tool struct {
	tools.Config
}

var (
	_ tools.Tool[Input, Output] = (*Tool)(nil)
	_ tools.Function            = (*Tool)(nil)
)

func New(opts ...tools.Option) *Tool {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("calculator")
	}
	if ret.Description() == "" {
		ret.SetDescription("Evaluate a mathematical expression, for example '(120 * 4) + 35'. Supports + - * / ** and abs, ceil, floor, round, sqrt, min, max. Constants pi and e are available.")
	}
	return ret
}

// Run Executes the CalculatorTool with the given parameters.
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	t.OnStart(ctx, t, input)
	exp, err := govaluate.NewEvaluableExpressionWithFunctions(input.Expression, Functions)
	if err != nil {
		t.OnError(ctx, t, input, err)
		return nil, err
	}
	params := make(map[string]interface{}, len(input.Params)+len(Constants))
	for k, v := range input.Params {
		params[k] = v
	}
	for k, v := range Constants {
		if _, ok := params[k]; ok {
			continue
		}
		params[k] = v
	}
	result, err := exp.Evaluate(params)
	if err != nil {
		t.OnError(ctx, t, input, err)
		return nil, err
	}
	out := NewOutput(result)
	t.OnEnd(ctx, t, input, out)
	return out, nil
}

// Definition implements tools.Function
func (t *Tool) Definition() openai.FunctionDefinition {
	return openai.FunctionDefinition{
		Name:        t.Title(),
		Description: t.Description(),
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"expression": {
					Type:        jsonschema.String,
					Description: "Mathematical expression to evaluate. For example, '2 + 2'.",
				},
			},
			Required: []string{"expression"},
		},
	}
}

// Call implements tools.Function
func (t *Tool) Call(ctx context.Context, arguments string) (string, error) {
	input := new(Input)
	if err := tools.DecodeArguments(arguments, input); err != nil {
		return "", err
	}
	out, err := t.Run(ctx, input)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
