// Package runner wires configuration, the planning crew and the artifact writer
// into a single run.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bububa/trip-planner/agents"
	"github.com/bububa/trip-planner/artifact"
	"github.com/bububa/trip-planner/components"
	"github.com/bububa/trip-planner/config"
	"github.com/bububa/trip-planner/observability"
	"github.com/bububa/trip-planner/planner"
	"github.com/bububa/trip-planner/tools/serper"
	"github.com/bububa/trip-planner/tools/webscraper"
)

const shutdownTimeout = 5 * time.Second

// newTokenCounter loads the tiktoken encoding, which may download it
var newTokenCounter = components.NewTokenCounter

// ErrNoTrip is returned when no trip source is configured
var ErrNoTrip = errors.New("no trip details")

// Result is the outcome of a successful run
type Result struct {
	Mode     config.OperatingMode
	Plan     *planner.Plan
	Artifact *artifact.Artifact
	// Search holds the search counters of an enhanced run, nil otherwise
	Search *serper.Stats
}

// Runner holds the collaborators of one run
type Runner struct {
	settings       *config.Settings
	logger         *slog.Logger
	newClient      LLMClientFactory
	newResearchers ResearcherFactory
	trip           TripSource
	store          artifact.Store
	mirrors        []artifact.Store
	now            func() time.Time
	stepHook       func(context.Context, agents.StepResult)
	modeHook       func(context.Context, config.OperatingMode)
	version        string
}

// Run loads the configuration from env, selects the operating mode, plans the
// trip and writes the artifact. A missing LLM credential fails before any
// collaborator is built.
func Run(ctx context.Context, env config.Environ, opts ...Option) (*Result, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, err
	}
	mode := config.SelectMode(*cfg)

	r := new(Runner)
	for _, opt := range opts {
		opt(r)
	}
	if r.settings == nil {
		v, err := config.NewViper("")
		if err != nil {
			return nil, err
		}
		if r.settings, err = config.LoadSettings(v); err != nil {
			return nil, err
		}
	}
	if r.logger == nil {
		r.logger = observability.NewLogger(observability.LogConfig{Level: r.settings.LogLevel, Format: r.settings.LogFormat})
	}
	if r.newClient == nil {
		r.newClient = NewOpenAIClient
	}
	if r.newResearchers == nil {
		r.newResearchers = NewWebResearchers
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r.run(ctx, cfg, mode)
}

func (r *Runner) run(ctx context.Context, cfg *config.RunConfiguration, mode config.OperatingMode) (*Result, error) {
	logger := r.logger
	if fn := r.modeHook; fn != nil {
		fn(ctx, mode)
	}
	tp := r.startTracing(ctx, cfg)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()
	ctx, span := tp.StartSpan(ctx, "trip_planner.run", attribute.String("mode", mode.String()))
	defer span.End()

	ret, err := r.plan(ctx, cfg, mode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return ret, nil
}

func (r *Runner) plan(ctx context.Context, cfg *config.RunConfiguration, mode config.OperatingMode) (*Result, error) {
	logger := r.logger
	if r.trip == nil {
		return nil, ErrNoTrip
	}
	trip, err := r.trip(ctx)
	if err != nil {
		return nil, err
	}
	client, err := r.newClient(cfg, r.settings)
	if err != nil {
		return nil, err
	}
	plannerOpts := []planner.Option{
		planner.WithModel(r.settings.Model),
		planner.WithTemperature(r.settings.Temperature),
		planner.WithMaxTokens(r.settings.MaxTokens),
		planner.WithMaxToolIterations(r.settings.MaxToolIterations),
		planner.WithMode(mode),
		planner.WithLogger(logger),
		planner.WithClock(r.now),
	}
	if r.stepHook != nil {
		plannerOpts = append(plannerOpts, planner.WithStepHook(r.stepHook))
	}
	var searchStats func() serper.Stats
	if mode == config.Enhanced {
		researchers, err := r.newResearchers(cfg, r.settings, logger)
		if err != nil {
			return nil, err
		}
		if researchers == nil || researchers.Research == nil {
			return nil, errors.New("enhanced mode requires a researcher")
		}
		plannerOpts = append(plannerOpts, planner.WithResearchers(researchers.Research, researchers.Local))
		searchStats = researchers.Stats
	}
	logger.InfoContext(ctx, "planning trip",
		slog.String("mode", mode.String()),
		slog.String("destination", trip.Destination),
		slog.Int("duration", trip.Duration),
		slog.String("model", r.settings.Model),
	)
	plan, err := planner.New(client, plannerOpts...).Plan(ctx, *trip)
	stats := searchAttrs(ctx, searchStats)
	if err != nil {
		return nil, err
	}
	writer, err := r.writer(ctx)
	if err != nil {
		return nil, err
	}
	art, err := writer.Write(ctx, plan)
	if err != nil {
		return nil, err
	}
	attrs := []any{
		slog.String("plan_id", plan.ID),
		slog.String("location", art.Location),
		slog.Int("degraded_steps", len(plan.DegradedSteps())),
		slog.Int64("tokens", plan.Usage.Total()),
	}
	if stats != nil {
		attrs = append(attrs,
			slog.Int64("search_calls", stats.Calls),
			slog.Int64("search_failures", stats.Failures),
			slog.Int64("search_cache_hits", stats.CacheHits),
		)
	}
	logger.InfoContext(ctx, "trip plan saved", attrs...)
	return &Result{Mode: mode, Plan: plan, Artifact: art, Search: stats}, nil
}

// searchAttrs snapshots the search counters onto the run span
func searchAttrs(ctx context.Context, fn func() serper.Stats) *serper.Stats {
	if fn == nil {
		return nil
	}
	stats := fn()
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("search.calls", stats.Calls),
		attribute.Int64("search.failures", stats.Failures),
		attribute.Int64("search.cache_hits", stats.CacheHits),
	)
	return &stats
}

// startTracing never fails the run, bad telemetry settings disable tracing
func (r *Runner) startTracing(ctx context.Context, cfg *config.RunConfiguration) *observability.TracerProvider {
	tel, err := cfg.Telemetry()
	if err != nil {
		r.logger.Warn("telemetry disabled", slog.Any("error", err))
		tel = config.Telemetry{}
	}
	tp, err := observability.NewTracerProvider(ctx, observability.TracingConfig{
		Telemetry:      tel,
		ServiceName:    r.settings.ServiceName,
		ServiceVersion: r.version,
		Logger:         r.logger,
	})
	if err != nil {
		r.logger.Warn("telemetry disabled", slog.Any("error", err))
		tp, _ = observability.NewTracerProvider(ctx, observability.TracingConfig{ServiceName: r.settings.ServiceName})
	} else if tp.Enabled() {
		r.logger.Debug("telemetry enabled", slog.String("endpoint", tel.Endpoint), slog.String("source", tel.Source))
	}
	return tp
}

func (r *Runner) writer(ctx context.Context) (*artifact.Writer, error) {
	store := r.store
	if store == nil {
		fs, err := artifact.NewFileStore(r.settings.OutputDir)
		if err != nil {
			return nil, err
		}
		store = fs
	}
	mirrors := r.mirrors
	if bucket := r.settings.S3Bucket; bucket != "" {
		clt, err := artifact.NewS3Client(ctx)
		if err != nil {
			r.logger.Warn("s3 mirror disabled", slog.String("bucket", bucket), slog.Any("error", err))
		} else {
			mirrors = append(mirrors, artifact.NewS3Store(clt, bucket, r.settings.S3Prefix))
		}
	}
	return artifact.NewWriter(store, artifact.WithMirrors(mirrors...), artifact.WithLogger(r.logger)), nil
}

// NewOpenAIClient is the default LLMClientFactory
func NewOpenAIClient(cfg *config.RunConfiguration, s *config.Settings) (agents.LLMClient, error) {
	clientCfg := openai.DefaultConfig(cfg.LLMCredential())
	if s.OpenAIBaseURL != "" {
		clientCfg.BaseURL = s.OpenAIBaseURL
	}
	return openai.NewClientWithConfig(clientCfg), nil
}

// NewWebResearchers is the default ResearcherFactory. Both researchers share
// one search client and its cache; only the research step scrapes pages.
func NewWebResearchers(cfg *config.RunConfiguration, s *config.Settings, logger *slog.Logger) (*Researchers, error) {
	search := serper.New(cfg.SearchCredential(),
		serper.WithEndpoint(s.Search.Endpoint),
		serper.WithMaxResults(s.Search.MaxResults),
		serper.WithCountry(s.Search.Country),
		serper.WithLanguage(s.Search.Language),
		serper.WithCacheSize(s.Search.CacheSize),
		serper.WithHttpClient(&http.Client{Timeout: s.Search.Timeout}),
	)
	counter := newTokenCounter()
	opts := []planner.ResearcherOption{
		planner.WithTokenCounter(counter),
		planner.WithFindingsMaxTokens(s.ResearchMaxTokens),
		planner.WithScrapeMaxTokens(s.Scrape.MaxTokens),
		planner.WithResearchLogger(logger),
	}
	ret := &Researchers{
		Local: planner.NewWebResearcher(search, opts...),
		Stats: search.Stats,
	}
	ret.Research = ret.Local
	if s.Scrape.Enabled {
		scraper := webscraper.New(webscraper.WithTimeout(s.Scrape.Timeout))
		ret.Research = planner.NewWebResearcher(search, append(opts, planner.WithScraper(scraper))...)
	}
	return ret, nil
}
