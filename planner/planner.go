package planner

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bububa/trip-planner/agents"
	"github.com/bububa/trip-planner/config"
)

const tracerName = "github.com/bububa/trip-planner/planner"

type Option func(*Planner)

func WithModel(model string) Option {
	return func(p *Planner) {
		p.opts.model = model
	}
}

func WithTemperature(t float32) Option {
	return func(p *Planner) {
		p.opts.temperature = t
	}
}

func WithMaxTokens(n int) Option {
	return func(p *Planner) {
		p.opts.maxTokens = n
	}
}

func WithMaxToolIterations(n int) Option {
	return func(p *Planner) {
		p.opts.maxToolIterations = n
	}
}

func WithMode(mode config.OperatingMode) Option {
	return func(p *Planner) {
		p.mode = mode
	}
}

// WithResearchers sets the researchers of the research and local experience
// steps. A nil local researcher reuses research.
func WithResearchers(research, local agents.Researcher) Option {
	return func(p *Planner) {
		p.research = research
		p.local = local
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = l
	}
}

func WithClock(fn func() time.Time) Option {
	return func(p *Planner) {
		p.now = fn
	}
}

// WithStepHook is called after every finished step
func WithStepHook(fn func(context.Context, agents.StepResult)) Option {
	return func(p *Planner) {
		p.stepHook = fn
	}
}

// Planner plans trips with the research, local experience, budget and itinerary crew
type Planner struct {
	opts     agentOptions
	mode     config.OperatingMode
	research agents.Researcher
	local    agents.Researcher
	logger   *slog.Logger
	now      func() time.Time
	stepHook func(context.Context, agents.StepResult)
}

func New(client agents.LLMClient, opts ...Option) *Planner {
	p := &Planner{
		opts: agentOptions{
			client:            client,
			model:             "gpt-4o-mini",
			temperature:       0.7,
			maxTokens:         2000,
			maxToolIterations: agents.DefaultMaxToolIterations,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.local == nil {
		p.local = p.research
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Mode returns the operating mode
func (p *Planner) Mode() config.OperatingMode {
	return p.mode
}

// Plan runs the crew for trip
func (p *Planner) Plan(ctx context.Context, trip TripDetails) (*Plan, error) {
	trip.Normalize()
	if err := trip.Validate(); err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "planner.plan")
	defer span.End()
	plan := &Plan{
		ID:   uuid.NewString(),
		Trip: trip,
		Mode: p.mode,
	}
	span.SetAttributes(
		attribute.String("plan.id", plan.ID),
		attribute.String("plan.mode", p.mode.String()),
		attribute.String("trip.destination", trip.Destination),
		attribute.Int("trip.duration", trip.Duration),
	)
	logger := p.logger.With(slog.String("plan_id", plan.ID))
	crewOpts := []agents.CrewOption{
		agents.WithMode(p.mode),
		agents.WithLogger(logger),
	}
	if p.stepHook != nil {
		crewOpts = append(crewOpts, agents.WithStepHook(p.stepHook))
	}
	opts := p.opts
	opts.logger = logger
	crew, err := agents.NewCrew(newTasks(opts, p.research, p.local), crewOpts...)
	if err != nil {
		return nil, err
	}
	steps, err := crew.Run(ctx, trip)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	plan.Steps = steps
	plan.GeneratedAt = p.now()
	for _, s := range steps {
		usage := s.Usage
		plan.Usage.Merge(&usage)
	}
	if n := len(steps); n > 0 {
		plan.Itinerary = steps[n-1].Output
	}
	span.SetAttributes(attribute.Int("plan.degraded_steps", len(plan.DegradedSteps())))
	return plan, nil
}
