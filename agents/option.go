package agents

import (
	"github.com/bububa/trip-planner/components"
	"github.com/bububa/trip-planner/components/systemprompt"
	"github.com/bububa/trip-planner/tools"
)

type Option func(a *Config)

func WithClient(clt LLMClient) Option {
	return func(c *Config) {
		c.client = clt
	}
}

func WithMemory(m *components.Memory) Option {
	return func(c *Config) {
		c.memory = m
	}
}

func WithSystemPromptGenerator(g systemprompt.Generator) Option {
	return func(c *Config) {
		c.systemPromptGenerator = g
	}
}

func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Config) {
		c.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Config) {
		c.maxTokens = maxTokens
	}
}

// WithMaxToolIterations bounds the number of tool call rounds in one run
func WithMaxToolIterations(n int) Option {
	return func(c *Config) {
		c.maxToolIterations = n
	}
}

// WithFunctions exposes tools to the model through function calling
func WithFunctions(fns ...tools.Function) Option {
	return func(c *Config) {
		c.functions = append(c.functions, fns...)
	}
}

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}
