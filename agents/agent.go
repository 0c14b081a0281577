package agents

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bububa/trip-planner/components"
	"github.com/bububa/trip-planner/components/systemprompt"
	"github.com/bububa/trip-planner/components/systemprompt/crispe"
	"github.com/bububa/trip-planner/schema"
	"github.com/bububa/trip-planner/tools"
)

const (
	DefaultMaxToolIterations = 5
	tracerName               = "github.com/bububa/trip-planner/agents"
)

// LLMClient is the chat completion API the agents talk to.
// *openai.Client satisfies it.
type LLMClient interface {
	CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type IAgent interface {
	Name() string
}

type ChainableAgent interface {
	IAgent
	RunForChain(context.Context, any, *components.LLMResponse) (any, error)
}

// TaskAgent is an agent a Crew can assign tasks to
type TaskAgent interface {
	ChainableAgent
	ResetMemory()
	RegisterSystemPromptContextProvider(provider systemprompt.ContextProvider)
	UnregisterSystemPromptContextProvider(titles ...string)
}

// Config represents general agents configuration
type Config struct {
	// client Client for interacting with the language model
	client LLMClient
	//	memory  Memory component for storing chat history.
	memory *components.Memory
	//	systemPromptGenerator Component for generating system prompts.
	systemPromptGenerator systemprompt.Generator
	// model llm model
	model string
	// temperature Temperature for response generation, typically ranging from 0 to 1.
	temperature float32
	// maxTokens Maximum number of tokens allowed in the response
	maxTokens int
	// maxToolIterations Maximum rounds of tool calls before the model must answer
	maxToolIterations int
	// functions tools the model may call
	functions []tools.Function
	// name is Agent name presentation
	name string
}

// Agent class for chat agents.
// This class provides the core functionality for handling chat interactions, including managing memory,
// generating system prompts, calling tools and obtaining responses from a language model.
type Agent[I schema.Schema, O schema.Schema] struct {
	Config
	startHook func(context.Context, *Agent[I, O], *I)
	endHook   func(context.Context, *Agent[I, O], *I, *O, *components.LLMResponse)
	errorHook func(context.Context, *Agent[I, O], *I, *components.LLMResponse, error)
}

var _ TaskAgent = (*Agent[schema.String, schema.String])(nil)

// NewAgent initializes the Agent
func NewAgent[I schema.Schema, O schema.Schema](options ...Option) *Agent[I, O] {
	ret := new(Agent[I, O])
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.memory == nil {
		ret.memory = components.NewMemory(0)
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = crispe.New()
	}
	if ret.maxToolIterations <= 0 {
		ret.maxToolIterations = DefaultMaxToolIterations
	}
	return ret
}

// ResetMemory clears the chat history
func (a *Agent[I, O]) ResetMemory() {
	a.memory.Reset()
}

func (a *Agent[I, O]) SetClient(clt LLMClient) {
	a.client = clt
}

func (a *Agent[I, O]) SetMemory(m *components.Memory) {
	a.memory = m
}

func (a *Agent[I, O]) Memory() *components.Memory {
	return a.memory
}

func (a *Agent[I, O]) SetSystemPromptGenerator(g systemprompt.Generator) {
	a.systemPromptGenerator = g
}

func (a *Agent[I, O]) SetModel(model string) {
	a.model = model
}

func (a *Agent[I, O]) SetTemperature(temperature float32) {
	a.temperature = temperature
}

func (a *Agent[I, O]) SetMaxTokens(maxTokens int) {
	a.maxTokens = maxTokens
}

func (a Agent[I, O]) Name() string {
	return a.name
}

func (a *Agent[I, O]) SetName(name string) {
	a.name = name
}

// Functions returns the tools exposed to the model
func (a *Agent[I, O]) Functions() []tools.Function {
	return a.functions
}

func (a *Agent[I, O]) SetStartHook(fn func(context.Context, *Agent[I, O], *I)) {
	a.startHook = fn
}

func (a *Agent[I, O]) SetEndHook(fn func(context.Context, *Agent[I, O], *I, *O, *components.LLMResponse)) {
	a.endHook = fn
}

func (a *Agent[I, O]) SetErrorHook(fn func(context.Context, *Agent[I, O], *I, *components.LLMResponse, error)) {
	a.errorHook = fn
}

func (a *Agent[I, O]) request(withTools bool) openai.ChatCompletionRequest {
	history := a.memory.History()
	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(history)+1),
	}
	sys := new(openai.ChatCompletionMessage)
	components.NewMessage(components.SystemRole, schema.String(a.systemPromptGenerator.Generate())).ToOpenAI(sys)
	req.Messages = append(req.Messages, *sys)
	for _, msg := range history {
		v := new(openai.ChatCompletionMessage)
		msg.ToOpenAI(v)
		req.Messages = append(req.Messages, *v)
	}
	if withTools {
		req.Tools = tools.ToOpenAI(a.functions)
	}
	return req
}

// response obtains a response from the language model, resolving tool calls
// until the model answers with content.
func (a *Agent[I, O]) response(ctx context.Context, apiResp *components.LLMResponse) (string, error) {
	if a.client == nil {
		return "", fmt.Errorf("%w: agent %q has no client", ErrUpstreamFailure, a.name)
	}
	for round := 0; ; round++ {
		res, err := a.complete(ctx, a.request(round < a.maxToolIterations))
		if err != nil {
			return "", err
		}
		apiResp.FromOpenAI(&res)
		if len(res.Choices) == 0 {
			return "", fmt.Errorf("%w: empty response from model %s", ErrUpstreamFailure, a.model)
		}
		msg := res.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}
		if round >= a.maxToolIterations {
			return "", fmt.Errorf("%w: tool call limit of %d rounds exceeded", ErrUpstreamFailure, a.maxToolIterations)
		}
		calls := components.ToolCallsFromOpenAI(msg.ToolCalls)
		a.memory.Add(components.NewToolCallsMessage(schema.String(msg.Content), calls))
		for _, call := range calls {
			a.memory.Add(components.NewToolMessage(a.callFunction(ctx, call)))
		}
	}
}

func (a *Agent[I, O]) complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "llm.chat")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", req.Model),
		attribute.Int("llm.messages", len(req.Messages)),
		attribute.Int("llm.tools", len(req.Tools)),
	)
	res, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
	}
	span.SetAttributes(
		attribute.Int("llm.usage.input_tokens", res.Usage.PromptTokens),
		attribute.Int("llm.usage.output_tokens", res.Usage.CompletionTokens),
	)
	return res, nil
}

// callFunction runs one tool call. Failures are reported back to the model.
func (a *Agent[I, O]) callFunction(ctx context.Context, call components.ToolCall) components.ToolCallback {
	cb := components.ToolCallback{ID: call.ID, Name: call.Name}
	for _, fn := range a.functions {
		if fn.Title() != call.Name {
			continue
		}
		content, err := fn.Call(ctx, call.Arguments)
		if err != nil {
			cb.Content = fmt.Sprintf("error: %v", err)
			cb.IsError = true
			return cb
		}
		cb.Content = content
		return cb
	}
	cb.Content = fmt.Sprintf("error: unknown tool %q", call.Name)
	cb.IsError = true
	return cb
}

// Run runs the chat agent with the given user input synchronously.
func (a *Agent[I, O]) Run(ctx context.Context, userInput *I, output *O, apiResp *components.LLMResponse) error {
	if apiResp == nil {
		apiResp = new(components.LLMResponse)
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "agent.run")
	defer span.End()
	span.SetAttributes(attribute.String("agent.name", a.name))
	if fn := a.startHook; fn != nil {
		fn(ctx, a, userInput)
	}
	if userInput != nil {
		a.memory.NewTurn()
		a.memory.NewMessage(components.UserRole, *userInput)
	}
	content, err := a.response(ctx, apiResp)
	if err == nil {
		err = schema.Decode([]byte(content), any(output))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if fn := a.errorHook; fn != nil {
			fn(ctx, a, userInput, apiResp, err)
		}
		return err
	}
	a.memory.NewMessage(components.AssistantRole, *output)
	if fn := a.endHook; fn != nil {
		fn(ctx, a, userInput, output, apiResp)
	}
	return nil
}

// RunForChain runs the chat agent with the given user input for a crew.
func (a *Agent[I, O]) RunForChain(ctx context.Context, userInput any, apiResp *components.LLMResponse) (any, error) {
	in, ok := userInput.(*I)
	if !ok {
		return nil, errors.New("invalid input schema")
	}
	out := new(O)
	if err := a.Run(ctx, in, out, apiResp); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Agent[I, O]) NewMessage(role components.MessageRole, content schema.Schema) *components.Message {
	return a.memory.NewMessage(role, content)
}

// SystemPromptContextProvider returns agent systemPromptGenerator's context provider
func (a *Agent[I, O]) SystemPromptContextProvider(title string) (systemprompt.ContextProvider, error) {
	return a.systemPromptGenerator.ContextProvider(title)
}

// RegisterSystemPromptContextProvider registers a new context provider
func (a *Agent[I, O]) RegisterSystemPromptContextProvider(provider systemprompt.ContextProvider) {
	a.systemPromptGenerator.AddContextProviders(provider)
}

// UnregisterSystemPromptContextProvider unregisters existing context providers.
func (a *Agent[I, O]) UnregisterSystemPromptContextProvider(titles ...string) {
	a.systemPromptGenerator.RemoveContextProviders(titles...)
}

// SystemPrompt returns the system prompt
func (a *Agent[I, O]) SystemPrompt() string {
	return a.systemPromptGenerator.Generate()
}
