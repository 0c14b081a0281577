package planner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bububa/trip-planner/agents"
	"github.com/bububa/trip-planner/components"
	"github.com/bububa/trip-planner/components/systemprompt/crispe"
	"github.com/bububa/trip-planner/schema"
	"github.com/bububa/trip-planner/tools"
	"github.com/bububa/trip-planner/tools/calculator"
)

// Task names in execution order
const (
	ResearchTask  = "research"
	LocalTask     = "local_experiences"
	BudgetTask    = "budget"
	ItineraryTask = "itinerary"
)

// Profile describes one agent of the crew
type Profile struct {
	Role      string
	Goal      string
	Backstory []string
}

var (
	ResearcherProfile = Profile{
		Role: "Travel Research Specialist",
		Goal: "Research destinations, attractions, and travel logistics to provide comprehensive information",
		Backstory: []string{
			"- You are an experienced travel researcher with extensive knowledge of global destinations.",
			"- You excel at finding the best attractions, local customs, weather patterns, and travel requirements for any destination.",
			"- Your research is thorough, accurate, and focuses on providing practical information that helps create amazing travel experiences.",
		},
	}
	PlannerProfile = Profile{
		Role: "Travel Itinerary Planner",
		Goal: "Create detailed, practical, and enjoyable travel itineraries based on research and preferences",
		Backstory: []string{
			"- You are a master travel planner who creates perfectly balanced itineraries.",
			"- You understand how to optimize travel time, account for transportation, and balance activities with relaxation.",
			"- Your itineraries are detailed, realistic, and designed to maximize enjoyment while minimizing stress and logistics issues.",
		},
	}
	BudgetAnalystProfile = Profile{
		Role: "Travel Budget Analyst",
		Goal: "Analyze costs and provide detailed budget breakdowns for travel plans",
		Backstory: []string{
			"- You are a financial expert specializing in travel costs.",
			"- You have comprehensive knowledge of accommodation prices, meal costs, activity fees, and transportation expenses across different destinations and travel styles.",
			"- You provide accurate cost estimates and money-saving tips without compromising the travel experience.",
			"- Use the calculator tool for every sum, per-day split and percentage instead of doing arithmetic in your head.",
		},
	}
	LocalExpertProfile = Profile{
		Role: "Local Experience Curator",
		Goal: "Recommend authentic local experiences, hidden gems, and cultural insights",
		Backstory: []string{
			"- You are a cultural expert and local experience curator who knows the hidden gems and authentic experiences that make travel memorable.",
			"- You understand local customs, recommend off-the-beaten-path attractions, and suggest ways to connect with local culture and communities.",
		},
	}
)

func (p Profile) generator() *crispe.Generator {
	return crispe.New(
		crispe.WithCapacities("- You are a " + p.Role + "."),
		crispe.WithBackground(p.Backstory...),
		crispe.WithStatements("- Your goal: " + p.Goal + "."),
		crispe.WithPersonalities(
			"- Answer in markdown with clear headings and bullet points.",
			"- Be specific and practical. Say so when you are unsure about current prices, opening hours or requirements.",
		),
	)
}

const researchDescription = `
Research comprehensive information about {{.Destination}} for a {{.Duration}}-day trip.

Trip Details:
- Destination: {{.Destination}}
- Duration: {{.Duration}} days
- Travelers: {{.Travelers}} people
- Budget Range: {{.Budget}}
- Travel Dates: {{.TravelDates}}
- Interests: {{.InterestList}}
- Travel Style: {{.TravelStyle}}

Research Requirements:
1. Best time to visit and weather conditions
2. Top attractions and must-see places
3. Transportation options (airports, local transport)
4. Accommodation areas and recommendations
5. Local customs and cultural considerations
6. Safety information and travel requirements
7. Currency and payment methods
8. Language considerations

Provide detailed, practical information that will help create an amazing itinerary.
`

const localDescription = `
Based on the research findings, identify authentic local experiences and hidden gems in {{.Destination}}.

Focus on:
1. Unique local experiences that match interests: {{.InterestList}}
2. Hidden gems and off-the-beaten-path attractions
3. Local food experiences and must-try dishes
4. Cultural activities and festivals (if any during travel dates: {{.TravelDates}})
5. Ways to connect with local communities
6. Authentic shopping opportunities
7. Local customs and etiquette tips

Prioritize experiences that align with the {{.TravelStyle}} travel style.
`

const budgetDescription = `
Create a detailed budget breakdown for the {{.Duration}}-day trip to {{.Destination}}.

Budget Parameters:
- Total Budget: {{.Budget}}
- Number of Travelers: {{.Travelers}}
- Travel Style: {{.TravelStyle}}

Provide cost estimates for:
1. Flights/Transportation to destination
2. Accommodation (per night and total)
3. Local transportation
4. Meals (breakfast, lunch, dinner)
5. Activities and attractions
6. Shopping and souvenirs
7. Emergency fund (10-15% of budget)

Include:
- Daily budget breakdown
- Money-saving tips
- Alternative options for different budget levels
- Payment method recommendations
`

const itineraryDescription = `
Create a detailed day-by-day itinerary for the {{.Duration}}-day trip to {{.Destination}}.

Use information from research, local experiences, and budget analysis to create:

1. Day-by-day schedule with:
   - Morning, afternoon, and evening activities
   - Recommended timing for each activity
   - Transportation between locations
   - Meal recommendations

2. Practical details:
   - Walking distances and travel times
   - Booking requirements for attractions
   - Alternative activities for bad weather
   - Rest periods and flexibility

3. Travel logistics:
   - Airport transfers
   - Hotel check-in/check-out optimization
   - Luggage storage options
   - Emergency contacts and information

Balance must-see attractions with local experiences while staying within budget.
Consider the travel style: {{.TravelStyle}} and interests: {{.InterestList}}.
`

// agentOptions are shared by every agent of one plan
type agentOptions struct {
	client            agents.LLMClient
	model             string
	temperature       float32
	maxTokens         int
	maxToolIterations int
	logger            *slog.Logger
}

type crewAgent = agents.Agent[schema.String, schema.String]

func (o agentOptions) newAgent(p Profile, fns ...tools.Function) *crewAgent {
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("agent", p.Role))
	a := agents.NewAgent[schema.String, schema.String](
		agents.WithClient(o.client),
		agents.WithName(p.Role),
		agents.WithModel(o.model),
		agents.WithTemperature(o.temperature),
		agents.WithMaxTokens(o.maxTokens),
		agents.WithMaxToolIterations(o.maxToolIterations),
		agents.WithSystemPromptGenerator(p.generator()),
		agents.WithFunctions(fns...),
	)
	a.SetEndHook(func(ctx context.Context, _ *crewAgent, _ *schema.String, _ *schema.String, resp *components.LLMResponse) {
		var tokens int64
		if resp.Usage != nil {
			tokens = resp.Usage.Total()
		}
		logger.DebugContext(ctx, "agent answered", slog.Int64("tokens", tokens))
	})
	a.SetErrorHook(func(ctx context.Context, _ *crewAgent, _ *schema.String, _ *components.LLMResponse, err error) {
		logger.DebugContext(ctx, "agent failed", slog.Any("error", err))
	})
	return a
}

// budgetCalculator returns the budget analyst's calculator, logging every call
func (o agentOptions) budgetCalculator() *calculator.Tool {
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	return calculator.New(
		tools.WithStartHook(func(ctx context.Context, tool tools.ITool, input any) {
			attrs := []any{slog.String("tool", tool.Title())}
			if in, ok := input.(*calculator.Input); ok {
				attrs = append(attrs, slog.String("expression", in.Expression))
			}
			logger.DebugContext(ctx, "tool called", attrs...)
		}),
		tools.WithEndHook(func(ctx context.Context, tool tools.ITool, _ any, output any) {
			logger.DebugContext(ctx, "tool finished", slog.String("tool", tool.Title()), slog.String("result", fmt.Sprint(output)))
		}),
		tools.WithErrorHook(func(ctx context.Context, tool tools.ITool, _ any, err error) {
			logger.DebugContext(ctx, "tool failed", slog.String("tool", tool.Title()), slog.Any("error", err))
		}),
	)
}

// newTasks builds the four planning tasks with fresh agents.
// research and local may be nil in LLM only mode.
func newTasks(o agentOptions, research, local agents.Researcher) []agents.Task {
	return []agents.Task{
		{
			Name:           ResearchTask,
			Description:    researchDescription,
			ExpectedOutput: "A comprehensive research report with practical travel information",
			Agent:          o.newAgent(ResearcherProfile),
			Queries: []string{
				"{{.Destination}} top attractions travel guide",
				"{{.Destination}} weather best time to visit {{.Dates}}",
				"{{.Destination}} public transport airport transfer accommodation areas",
			},
			Researcher: research,
		},
		{
			Name:           LocalTask,
			Description:    localDescription,
			ExpectedOutput: "Curated list of authentic local experiences and cultural insights",
			Agent:          o.newAgent(LocalExpertProfile),
			Context:        []string{ResearchTask},
			Queries: []string{
				"{{.Destination}} hidden gems local experiences {{.InterestList}}",
				"{{.Destination}} local food must try dishes",
			},
			Researcher: local,
		},
		{
			Name:           BudgetTask,
			Description:    budgetDescription,
			ExpectedOutput: "Detailed budget analysis with daily breakdown and money-saving tips",
			Agent:          o.newAgent(BudgetAnalystProfile, o.budgetCalculator()),
			Context:        []string{ResearchTask, LocalTask},
		},
		{
			Name:           ItineraryTask,
			Description:    itineraryDescription,
			ExpectedOutput: "Complete day-by-day itinerary with practical details and logistics",
			Agent:          o.newAgent(PlannerProfile),
			Context:        []string{ResearchTask, LocalTask, BudgetTask},
		},
	}
}
