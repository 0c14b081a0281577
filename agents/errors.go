package agents

import "errors"

var (
	// ErrSearchUnavailable marks a step whose web research failed. The step
	// still runs on the model's own knowledge.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrUpstreamFailure wraps language model failures. It aborts the run.
	ErrUpstreamFailure = errors.New("upstream failure")
)
