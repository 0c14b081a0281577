package planner

import (
	"time"

	"github.com/bububa/trip-planner/agents"
	"github.com/bububa/trip-planner/components"
	"github.com/bububa/trip-planner/config"
)

// Plan is the outcome of a planning run
type Plan struct {
	ID          string
	Trip        TripDetails
	Mode        config.OperatingMode
	GeneratedAt time.Time
	Steps       []agents.StepResult
	// Itinerary is the output of the last step
	Itinerary string
	Usage     components.LLMUsage
}

// Step returns the result of the named task
func (p Plan) Step(task string) (agents.StepResult, bool) {
	for _, s := range p.Steps {
		if s.Task == task {
			return s, true
		}
	}
	return agents.StepResult{}, false
}

// DegradedSteps returns the steps that ran without their web research
func (p Plan) DegradedSteps() []agents.StepResult {
	var ret []agents.StepResult
	for _, s := range p.Steps {
		if s.Degraded() {
			ret = append(ret, s)
		}
	}
	return ret
}
