package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bububa/trip-planner/components"
	"github.com/bububa/trip-planner/components/systemprompt"
	"github.com/bububa/trip-planner/config"
	"github.com/bububa/trip-planner/schema"
)

type CrewOption func(*Crew)

// WithMode sets the operating mode, LLM only by default
func WithMode(mode config.OperatingMode) CrewOption {
	return func(c *Crew) {
		c.mode = mode
	}
}

// WithResearcher sets the researcher used in enhanced mode
func WithResearcher(r Researcher) CrewOption {
	return func(c *Crew) {
		c.researcher = r
	}
}

func WithLogger(l *slog.Logger) CrewOption {
	return func(c *Crew) {
		c.logger = l
	}
}

// WithStepHook is called after every finished step
func WithStepHook(fn func(context.Context, StepResult)) CrewOption {
	return func(c *Crew) {
		c.stepHook = fn
	}
}

// Crew runs tasks sequentially, feeding earlier outputs to later tasks
type Crew struct {
	tasks      []Task
	mode       config.OperatingMode
	researcher Researcher
	logger     *slog.Logger
	stepHook   func(context.Context, StepResult)
}

// NewCrew returns a new Crew. Context references must name earlier tasks.
func NewCrew(tasks []Task, opts ...CrewOption) (*Crew, error) {
	c := &Crew{tasks: tasks}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if len(tasks) == 0 {
		return nil, errors.New("crew has no tasks")
	}
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[t.Name]; ok {
			return nil, fmt.Errorf("duplicate task %s", t.Name)
		}
		for _, name := range t.Context {
			if _, ok := seen[name]; !ok {
				return nil, fmt.Errorf("task %s: context %s is not an earlier task", t.Name, name)
			}
		}
		seen[t.Name] = struct{}{}
	}
	if c.mode == config.Enhanced {
		for _, t := range tasks {
			if len(t.Queries) > 0 && c.researcherFor(t) == nil {
				return nil, fmt.Errorf("task %s: enhanced mode requires a researcher", t.Name)
			}
		}
	}
	return c, nil
}

// Mode returns the crew's operating mode
func (c *Crew) Mode() config.OperatingMode {
	return c.mode
}

// Tasks returns the tasks in execution order
func (c *Crew) Tasks() []Task {
	return c.tasks
}

// Run executes the tasks in order. An upstream failure or a cancelled context
// stops the run and returns the steps finished so far.
func (c *Crew) Run(ctx context.Context, data any) ([]StepResult, error) {
	results := make([]StepResult, 0, len(c.tasks))
	outputs := make(map[string]string, len(c.tasks))
	for _, task := range c.tasks {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		ret, err := c.runStep(ctx, task, data, outputs)
		if err != nil {
			return results, fmt.Errorf("task %s: %w", task.Name, err)
		}
		outputs[task.Name] = ret.Output
		results = append(results, ret)
		if fn := c.stepHook; fn != nil {
			fn(ctx, ret)
		}
	}
	return results, nil
}

func (c *Crew) runStep(ctx context.Context, task Task, data any, outputs map[string]string) (StepResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "crew.step")
	defer span.End()
	span.SetAttributes(attribute.String("task.name", task.Name), attribute.String("agent.name", task.Agent.Name()))
	start := time.Now()
	ret := StepResult{
		Task:  task.Name,
		Agent: task.Agent.Name(),
	}
	prompt, err := task.Prompt(data)
	if err != nil {
		return ret, err
	}

	agent := task.Agent
	agent.ResetMemory()
	titles := make([]string, 0, len(task.Context)+1)
	defer func() {
		agent.UnregisterSystemPromptContextProvider(titles...)
	}()
	for _, name := range task.Context {
		title := contextTitle(name)
		agent.RegisterSystemPromptContextProvider(systemprompt.NewStaticProvider(title, outputs[name]))
		titles = append(titles, title)
	}

	if c.mode == config.Enhanced && len(task.Queries) > 0 {
		queries, err := task.RenderQueries(data)
		if err != nil {
			return ret, err
		}
		if len(queries) > 0 {
			findings, err := c.researcherFor(task).Research(ctx, queries)
			if ctxErr := ctx.Err(); ctxErr != nil {
				span.RecordError(ctxErr)
				span.SetStatus(codes.Error, ctxErr.Error())
				return ret, ctxErr
			}
			if err == nil && findings == nil {
				err = errors.New("researcher returned no findings")
			}
			if err != nil {
				if !errors.Is(err, ErrSearchUnavailable) {
					err = fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
				}
				c.logger.WarnContext(ctx, "web search failed, continuing with model knowledge only",
					slog.String("task", task.Name),
					slog.String("agent", ret.Agent),
					slog.Any("error", err),
				)
				ret.Status = StepDegraded
				ret.Reason = err
				span.SetAttributes(attribute.String("step.degraded_reason", err.Error()))
			} else {
				ret.Status = StepGrounded
				ret.Sources = findings.Sources
				agent.RegisterSystemPromptContextProvider(findings)
				titles = append(titles, findings.Title())
			}
		}
	}
	span.SetAttributes(attribute.String("step.status", ret.Status.String()))

	apiResp := new(components.LLMResponse)
	out, err := agent.RunForChain(ctx, schema.NewString(prompt), apiResp)
	if apiResp.Usage != nil {
		ret.Usage = *apiResp.Usage
	}
	ret.Duration = time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ret, err
	}
	if s, ok := out.(schema.Schema); ok {
		ret.Output = schema.Stringify(s)
	}
	c.logger.InfoContext(ctx, "step finished",
		slog.String("task", task.Name),
		slog.String("status", ret.Status.String()),
		slog.Duration("duration", ret.Duration),
		slog.Int64("tokens", ret.Usage.Total()),
	)
	return ret, nil
}

func (c *Crew) researcherFor(task Task) Researcher {
	if task.Researcher != nil {
		return task.Researcher
	}
	return c.researcher
}

func contextTitle(task string) string {
	return fmt.Sprintf("Output of the %s task", task)
}
