package agents

import (
	"time"

	"github.com/bububa/trip-planner/components"
)

// StepStatus tells how a step used web research
type StepStatus int

const (
	// StepLLMOnly the step never asked for web research
	StepLLMOnly StepStatus = iota
	// StepGrounded web research succeeded and was given to the agent
	StepGrounded
	// StepDegraded web research failed and the agent answered on its own knowledge
	StepDegraded
)

func (s StepStatus) String() string {
	switch s {
	case StepGrounded:
		return "grounded"
	case StepDegraded:
		return "degraded"
	default:
		return "llm-only"
	}
}

// StepResult is the outcome of one task
type StepResult struct {
	Task   string
	Agent  string
	Output string
	Status StepStatus
	// Reason is set when Status is StepDegraded and matches ErrSearchUnavailable
	Reason   error
	Sources  []string
	Usage    components.LLMUsage
	Duration time.Duration
}

// Degraded reports whether the step fell back to the model's own knowledge
func (r StepResult) Degraded() bool {
	return r.Status == StepDegraded
}
