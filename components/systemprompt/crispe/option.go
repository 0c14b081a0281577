package crispe

import "github.com/bububa/trip-planner/components/systemprompt"

type Option = func(g *Generator)

// WithCapacities appends "CAPACITY and ROLE" lines
func WithCapacities(lines ...string) Option {
	return func(g *Generator) { g.appendLines(capacity, lines) }
}

// WithBackground appends "INSIGHT and PURPOSE" lines
func WithBackground(lines ...string) Option {
	return func(g *Generator) { g.appendLines(insight, lines) }
}

// WithStatements appends "STATEMENT and TASK" lines
func WithStatements(lines ...string) Option {
	return func(g *Generator) { g.appendLines(statement, lines) }
}

// WithPersonalities appends output instructions
func WithPersonalities(lines ...string) Option {
	return func(g *Generator) { g.appendLines(personality, lines) }
}

// WithExperiments appends follow up question instructions
func WithExperiments(lines ...string) Option {
	return func(g *Generator) { g.appendLines(experiment, lines) }
}

func WithContextProviders(providers ...systemprompt.ContextProvider) Option {
	return func(g *Generator) {
		g.AddContextProviders(providers...)
	}
}
