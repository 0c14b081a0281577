package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	assert.Error(t, required("destination")("  "))
	assert.NoError(t, required("destination")("Rome"))

	days := intRange("days", 1, 365)
	assert.NoError(t, days("7"))
	assert.NoError(t, days(" 365 "))
	assert.Error(t, days("0"))
	assert.Error(t, days("seven"))
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"config", "trip", "env-file", "no-render", "output-dir", "model", "log-level"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	for flag := range flagKeys {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}
}

func TestRenderMarkdownFallsBack(t *testing.T) {
	out := renderMarkdown("# Day 1\n- Colosseum", 80)
	assert.Contains(t, out, "Colosseum")
}
