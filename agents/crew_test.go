package agents

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/trip-planner/config"
)

type trip struct {
	Destination string
	Days        int
}

type countingResearcher struct {
	calls   [][]string
	err     error
	content string
}

func (r *countingResearcher) Research(_ context.Context, queries []string) (*Findings, error) {
	r.calls = append(r.calls, queries)
	if r.err != nil {
		return nil, r.err
	}
	return &Findings{Content: r.content, Sources: []string{"https://example.com/lisbon"}}, nil
}

func testTasks(research, plan *fakeClient) []Task {
	return []Task{
		{
			Name:           "research",
			Description:    "Research {{.Destination}} for a {{.Days}} day trip.",
			ExpectedOutput: "A research report.",
			Agent:          newTestAgent(research, WithName("Travel Research Specialist")),
			Queries:        []string{"{{.Destination}} attractions", "{{.Destination}}   weather"},
		},
		{
			Name:        "itinerary",
			Description: "Plan {{.Days}} days in {{.Destination}}.",
			Agent:       newTestAgent(plan, WithName("Travel Itinerary Planner")),
			Context:     []string{"research"},
		},
	}
}

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestCrewLLMOnly(t *testing.T) {
	research := &fakeClient{responses: []openai.ChatCompletionResponse{textResponse("Lisbon has trams.")}}
	plan := &fakeClient{responses: []openai.ChatCompletionResponse{textResponse("Day 1: tram 28")}}
	researcher := &countingResearcher{}
	crew, err := NewCrew(testTasks(research, plan), WithResearcher(researcher))
	require.NoError(t, err)
	assert.Equal(t, config.LLMOnly, crew.Mode())

	steps, err := crew.Run(context.Background(), trip{Destination: "Lisbon", Days: 3})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Empty(t, researcher.calls)
	for _, step := range steps {
		assert.Equal(t, StepLLMOnly, step.Status)
		assert.NoError(t, step.Reason)
	}
	assert.Equal(t, "Travel Research Specialist", steps[0].Agent)
	assert.Equal(t, "Lisbon has trams.", steps[0].Output)
	assert.Equal(t, "Day 1: tram 28", steps[1].Output)
	assert.Equal(t, int64(15), steps[1].Usage.Total())

	assert.Equal(t, "Research Lisbon for a 3 day trip.\n\nExpected output:\nA research report.", research.requests[0].Messages[1].Content)
	prompt := plan.systemPrompts()[0]
	assert.Contains(t, prompt, "## Output of the research task\nLisbon has trams.")
}

func TestCrewEnhancedGrounded(t *testing.T) {
	research := &fakeClient{}
	plan := &fakeClient{}
	researcher := &countingResearcher{content: "Tram 28 runs through Alfama."}
	crew, err := NewCrew(testTasks(research, plan), WithMode(config.Enhanced), WithResearcher(researcher))
	require.NoError(t, err)

	var hooked []string
	crew.stepHook = func(_ context.Context, r StepResult) { hooked = append(hooked, r.Task) }
	steps, err := crew.Run(context.Background(), trip{Destination: "Lisbon", Days: 3})
	require.NoError(t, err)
	require.Len(t, researcher.calls, 1)
	assert.Equal(t, []string{"Lisbon attractions", "Lisbon weather"}, researcher.calls[0])
	assert.Equal(t, StepGrounded, steps[0].Status)
	assert.Equal(t, []string{"https://example.com/lisbon"}, steps[0].Sources)
	assert.Equal(t, StepLLMOnly, steps[1].Status)
	assert.Contains(t, research.systemPrompts()[0], "## Web research findings\nTram 28 runs through Alfama.")
	assert.NotContains(t, plan.systemPrompts()[0], "Web research findings")
	assert.Equal(t, []string{"research", "itinerary"}, hooked)
}

func TestCrewEnhancedDegraded(t *testing.T) {
	research := &fakeClient{responses: []openai.ChatCompletionResponse{textResponse("From memory: Lisbon has trams.")}}
	plan := &fakeClient{}
	searchErr := errors.New("serper: unauthorized")
	researcher := &countingResearcher{err: searchErr}
	var logs bytes.Buffer
	crew, err := NewCrew(testTasks(research, plan),
		WithMode(config.Enhanced),
		WithResearcher(researcher),
		WithLogger(newBufferLogger(&logs)),
	)
	require.NoError(t, err)

	steps, err := crew.Run(context.Background(), trip{Destination: "Lisbon", Days: 3})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Len(t, researcher.calls, 1)

	step := steps[0]
	assert.Equal(t, StepDegraded, step.Status)
	assert.True(t, step.Degraded())
	assert.ErrorIs(t, step.Reason, ErrSearchUnavailable)
	assert.ErrorIs(t, step.Reason, searchErr)
	assert.Equal(t, "From memory: Lisbon has trams.", step.Output)
	assert.NotContains(t, research.systemPrompts()[0], "Web research findings")

	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "task=research")
	assert.Contains(t, logs.String(), "unauthorized")
}

func TestCrewUpstreamFailureAborts(t *testing.T) {
	research := &fakeClient{err: errors.New("connection reset")}
	plan := &fakeClient{}
	crew, err := NewCrew(testTasks(research, plan))
	require.NoError(t, err)

	steps, err := crew.Run(context.Background(), trip{Destination: "Lisbon", Days: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFailure)
	assert.Empty(t, steps)
	assert.Empty(t, plan.requests)
}

func TestCrewCancelled(t *testing.T) {
	plan := &fakeClient{}
	crew, err := NewCrew(testTasks(&fakeClient{}, plan))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	steps, err := crew.Run(ctx, trip{Destination: "Lisbon", Days: 3})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, steps)
	assert.Empty(t, plan.requests)
}

func TestCrewCancelledDuringResearch(t *testing.T) {
	research := &fakeClient{}
	plan := &fakeClient{}
	ctx, cancel := context.WithCancel(context.Background())
	researcher := ResearcherFunc(func(ctx context.Context, _ []string) (*Findings, error) {
		cancel()
		return nil, ctx.Err()
	})
	var logs bytes.Buffer
	crew, err := NewCrew(testTasks(research, plan),
		WithMode(config.Enhanced),
		WithResearcher(researcher),
		WithLogger(newBufferLogger(&logs)),
	)
	require.NoError(t, err)

	steps, err := crew.Run(ctx, trip{Destination: "Lisbon", Days: 3})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrSearchUnavailable)
	assert.Empty(t, steps)
	assert.Empty(t, research.requests)
	assert.Empty(t, plan.requests)
	assert.NotContains(t, logs.String(), "web search failed")
}

func TestNewCrewValidation(t *testing.T) {
	tasks := testTasks(&fakeClient{}, &fakeClient{})

	_, err := NewCrew(nil)
	assert.Error(t, err)

	_, err = NewCrew(tasks, WithMode(config.Enhanced))
	assert.Error(t, err)

	reversed := []Task{tasks[1], tasks[0]}
	_, err = NewCrew(reversed)
	assert.Error(t, err)

	dup := []Task{tasks[0], tasks[0]}
	_, err = NewCrew(dup)
	assert.Error(t, err)

	noAgent := tasks[0]
	noAgent.Agent = nil
	_, err = NewCrew([]Task{noAgent})
	assert.Error(t, err)
}

func TestTaskMissingKey(t *testing.T) {
	task := Task{Name: "x", Description: "Go to {{.Nowhere}}", Agent: newTestAgent(&fakeClient{})}
	_, err := task.Prompt(map[string]any{})
	assert.Error(t, err)
}

func TestCrewTaskResearcherOverride(t *testing.T) {
	tasks := testTasks(&fakeClient{}, &fakeClient{})
	own := &countingResearcher{content: "scraped"}
	tasks[0].Researcher = own
	crew, err := NewCrew(tasks, WithMode(config.Enhanced))
	require.NoError(t, err)
	steps, err := crew.Run(context.Background(), trip{Destination: "Porto", Days: 2})
	require.NoError(t, err)
	assert.Len(t, own.calls, 1)
	assert.Equal(t, StepGrounded, steps[0].Status)
}
