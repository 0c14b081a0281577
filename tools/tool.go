package tools

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/trip-planner/schema"
)

type ITool interface {
	SetTitle(string)
	Title() string
	SetDescription(string)
	Description() string
}

type Tool[I schema.Schema, O schema.Schema] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// Function is a tool the model may call through function calling
type Function interface {
	ITool
	// Definition describes the function to the model
	Definition() openai.FunctionDefinition
	// Call runs the function with JSON encoded arguments and returns the reply for the model
	Call(ctx context.Context, arguments string) (string, error)
}

// ToOpenAI converts functions to chat completion tools
func ToOpenAI(fns []Function) []openai.Tool {
	if len(fns) == 0 {
		return nil
	}
	list := make([]openai.Tool, 0, len(fns))
	for _, fn := range fns {
		def := fn.Definition()
		list = append(list, openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: &def,
		})
	}
	return list
}
