// Package crispe renders CRISPE style system prompts: Capacity and Role, Insight,
// Statement, Personality and Experiment.
package crispe

import (
	"github.com/bububa/trip-planner/components/systemprompt"
)

const defaultBackground = "- This is a conversation with a helpful and friendly AI assistant."

// section indexes, in render order
const (
	capacity = iota
	insight
	statement
	personality
	experiment
	sectionCount
)

var sectionTitles = [sectionCount]string{
	capacity:    "CAPACITY and ROLE",
	insight:     "INSIGHT and PURPOSE",
	statement:   "STATEMENT and TASK",
	personality: "PERSONALITY and OUTPUT INSTRUCTIONS",
	experiment:  "INSTRUCTIONS for FOLLOWUP QUESTIONS",
}

// Generator is CRISPE system prompt generator
type Generator struct {
	systemprompt.BaseGenerator
	sections [sectionCount][]string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator. An agent without background
// lines gets a generic assistant background.
func New(options ...Option) *Generator {
	ret := new(Generator)
	for _, opt := range options {
		opt(ret)
	}
	if len(ret.sections[insight]) == 0 {
		ret.sections[insight] = []string{defaultBackground}
	}
	return ret
}

func (g *Generator) appendLines(idx int, lines []string) {
	g.sections[idx] = append(g.sections[idx], lines...)
}

func (g *Generator) Generate() string {
	var parts []string
	for idx, lines := range g.sections {
		if len(lines) == 0 {
			continue
		}
		parts = append(parts, "# "+sectionTitles[idx])
		parts = append(parts, lines...)
		parts = append(parts, "")
	}
	if ctx := g.ContextSection(); len(ctx) > 0 {
		parts = append(parts, ctx...)
		parts = append(parts, "- Always use the available additional information and context to enhance the response.")
	}
	return systemprompt.Join(parts)
}
