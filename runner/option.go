package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/bububa/trip-planner/agents"
	"github.com/bububa/trip-planner/artifact"
	"github.com/bububa/trip-planner/config"
	"github.com/bububa/trip-planner/planner"
	"github.com/bububa/trip-planner/tools/serper"
)

// LLMClientFactory builds the chat completion client. It is only called after
// the configuration loaded successfully.
type LLMClientFactory func(cfg *config.RunConfiguration, s *config.Settings) (agents.LLMClient, error)

// Researchers are the web researchers of an enhanced run
type Researchers struct {
	Research agents.Researcher
	// Local researches the local experience step, nil reuses Research
	Local agents.Researcher
	// Stats reports the search client's counters, nil when not available
	Stats func() serper.Stats
}

// ResearcherFactory builds the researchers of the research and local experience
// steps. It is only called in enhanced mode.
type ResearcherFactory func(cfg *config.RunConfiguration, s *config.Settings, logger *slog.Logger) (*Researchers, error)

// TripSource supplies the trip to plan
type TripSource func(ctx context.Context) (*planner.TripDetails, error)

type Option func(*Runner)

func WithSettings(s *config.Settings) Option {
	return func(r *Runner) {
		r.settings = s
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

func WithLLMClientFactory(fn LLMClientFactory) Option {
	return func(r *Runner) {
		r.newClient = fn
	}
}

func WithResearcherFactory(fn ResearcherFactory) Option {
	return func(r *Runner) {
		r.newResearchers = fn
	}
}

func WithTripSource(fn TripSource) Option {
	return func(r *Runner) {
		r.trip = fn
	}
}

// WithTrip plans a fixed trip
func WithTrip(trip planner.TripDetails) Option {
	return WithTripSource(func(context.Context) (*planner.TripDetails, error) {
		return &trip, nil
	})
}

// WithStore replaces the output directory store
func WithStore(s artifact.Store) Option {
	return func(r *Runner) {
		r.store = s
	}
}

// WithMirrors adds best effort artifact copies
func WithMirrors(stores ...artifact.Store) Option {
	return func(r *Runner) {
		r.mirrors = append(r.mirrors, stores...)
	}
}

func WithClock(fn func() time.Time) Option {
	return func(r *Runner) {
		r.now = fn
	}
}

// WithStepHook is called after every finished planning step
func WithStepHook(fn func(context.Context, agents.StepResult)) Option {
	return func(r *Runner) {
		r.stepHook = fn
	}
}

// WithModeHook is called once the operating mode is known, before any prompt or LLM call
func WithModeHook(fn func(context.Context, config.OperatingMode)) Option {
	return func(r *Runner) {
		r.modeHook = fn
	}
}

func WithServiceVersion(v string) Option {
	return func(r *Runner) {
		r.version = v
	}
}
