package agents

import "context"

// FindingsTitle is the system prompt section web findings are rendered under
const FindingsTitle = "Web research findings"

// Researcher gathers web findings for a step's search queries
type Researcher interface {
	Research(ctx context.Context, queries []string) (*Findings, error)
}

// ResearcherFunc adapts a function to Researcher
type ResearcherFunc func(ctx context.Context, queries []string) (*Findings, error)

func (f ResearcherFunc) Research(ctx context.Context, queries []string) (*Findings, error) {
	return f(ctx, queries)
}

// Findings is web research rendered for a prompt.
// It is a systemprompt.ContextProvider.
type Findings struct {
	Content string
	Sources []string
}

func (f Findings) Title() string {
	return FindingsTitle
}

func (f Findings) Info() string {
	return f.Content
}
