package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bububa/trip-planner/agents"
	"github.com/bububa/trip-planner/config"
	"github.com/bububa/trip-planner/observability"
	"github.com/bububa/trip-planner/planner"
	"github.com/bububa/trip-planner/runner"
)

// Version is set at build time
var Version = "dev"

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

type cli struct {
	configFile string
	tripFile   string
	envFile    string
	noRender   bool
}

func newRootCommand() *cobra.Command {
	c := new(cli)
	cmd := &cobra.Command{
		Use:   "trip-planner",
		Short: "Plan a trip with a crew of AI travel agents",
		Long: `trip-planner researches a destination, curates local experiences, analyses the
budget and writes a day-by-day itinerary to trip_plan_<destination>_<timestamp>.txt.

Set OPENAI_API_KEY to run. Set SERPER_API_KEY to ground research in live web search.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&c.configFile, "config", "c", "", "settings file (yaml, json or toml)")
	flags.StringVarP(&c.tripFile, "trip", "t", "", "trip details yaml file, prompts interactively when empty")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.BoolVar(&c.noRender, "no-render", false, "print the itinerary as plain markdown")
	flags.StringP("output-dir", "o", "", "directory the trip plan is written to")
	flags.StringP("model", "m", "", "chat model")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	return cmd
}

var flagKeys = map[string]string{
	"output-dir": config.KeyOutputDir,
	"model":      config.KeyModel,
	"log-level":  config.KeyLogLevel,
}

func (c *cli) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", c.envFile, err)
	}
	v, err := config.NewViper(c.configFile)
	if err != nil {
		return err
	}
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	settings, err := config.LoadSettings(v)
	if err != nil {
		return err
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:  settings.LogLevel,
		Format: settings.LogFormat,
		Output: cmd.ErrOrStderr(),
	})

	fmt.Fprintln(out, bold("Welcome to the AI Trip Planner!"))
	ret, err := runner.Run(ctx, config.OSEnviron(),
		runner.WithSettings(settings),
		runner.WithLogger(logger),
		runner.WithServiceVersion(Version),
		runner.WithTripSource(c.tripSource(cmd)),
		runner.WithModeHook(func(_ context.Context, mode config.OperatingMode) {
			if mode == config.LLMOnly {
				fmt.Fprintln(out, yellow("SERPER_API_KEY not set, running with LLM knowledge only."))
				fmt.Fprintln(out, gray("  Get a free key at https://serper.dev/ for web search grounded research."))
				return
			}
			fmt.Fprintln(out, green("Web search enabled."))
		}),
		runner.WithStepHook(func(_ context.Context, step agents.StepResult) {
			status := green(step.Status.String())
			if step.Degraded() {
				status = yellow(step.Status.String())
			}
			fmt.Fprintf(out, "%s %s %s %s\n", cyan("✓"), bold(step.Agent), status, gray(step.Duration.Round(time.Millisecond).String()))
		}),
	)
	if err != nil {
		if errors.Is(err, config.ErrMissingCredential) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Please set your OpenAI API key:\n  export OPENAI_API_KEY='your-api-key-here'")
		}
		return err
	}

	fmt.Fprintln(out)
	if c.noRender {
		fmt.Fprintln(out, ret.Plan.Itinerary)
	} else {
		fmt.Fprintln(out, renderMarkdown(ret.Plan.Itinerary, terminalWidth()))
	}
	if degraded := ret.Plan.DegradedSteps(); len(degraded) > 0 {
		names := make([]string, 0, len(degraded))
		for _, s := range degraded {
			names = append(names, s.Agent)
		}
		fmt.Fprintln(out, yellow("Web search failed for: "+strings.Join(names, ", ")+". Those sections rely on model knowledge."))
	}
	fmt.Fprintln(out, green("Trip planning completed!"))
	fmt.Fprintf(out, "Full itinerary saved to: %s\n", bold(ret.Artifact.Location))
	for _, m := range ret.Artifact.Mirrors {
		fmt.Fprintf(out, "Copy saved to: %s\n", m)
	}
	fmt.Fprintf(out, "Enjoy your trip to %s!\n", ret.Plan.Trip.Destination)
	return nil
}

func (c *cli) tripSource(cmd *cobra.Command) runner.TripSource {
	return func(context.Context) (*planner.TripDetails, error) {
		if c.tripFile != "" {
			return planner.LoadTripDetails(c.tripFile)
		}
		trip, err := promptTripDetails()
		if err != nil {
			return nil, err
		}
		printTrip(cmd, trip)
		return trip, nil
	}
}

func printTrip(cmd *cobra.Command, trip *planner.TripDetails) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nStarting trip planning for %s...\n", bold(trip.Destination))
	fmt.Fprintf(out, "Duration: %d days\n", trip.Duration)
	fmt.Fprintf(out, "Travelers: %d people\n", trip.Travelers)
	fmt.Fprintf(out, "Budget: %s\n", trip.Budget)
	fmt.Fprintf(out, "Interests: %s\n", trip.InterestList())
	fmt.Fprintln(out, strings.Repeat("=", 60))
}

func terminalWidth() int {
	if cols, ok := os.LookupEnv("COLUMNS"); ok {
		var w int
		if _, err := fmt.Sscanf(cols, "%d", &w); err == nil && w > 20 {
			return w
		}
	}
	return 100
}
