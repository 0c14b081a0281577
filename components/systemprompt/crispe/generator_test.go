package crispe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/trip-planner/components/systemprompt"
)

func TestGenerate(t *testing.T) {
	g := New(
		WithCapacities("- You are a Travel Budget Analyst."),
		WithBackground("- You are a financial expert specializing in travel costs."),
		WithStatements("- Analyze costs and provide detailed budget breakdowns."),
	)
	want := "# CAPACITY and ROLE\n" +
		"- You are a Travel Budget Analyst.\n\n" +
		"# INSIGHT and PURPOSE\n" +
		"- You are a financial expert specializing in travel costs.\n\n" +
		"# STATEMENT and TASK\n" +
		"- Analyze costs and provide detailed budget breakdowns."
	assert.Equal(t, want, g.Generate())
}

func TestContextProviders(t *testing.T) {
	g := New()
	g.AddContextProviders(
		systemprompt.NewStaticProvider("Research", "Lisbon is hilly."),
		systemprompt.NewStaticProvider("Research", "duplicate title is ignored"),
		systemprompt.NewStaticProvider("Empty", ""),
	)
	prompt := g.Generate()
	assert.Contains(t, prompt, "# EXTRA INFORMATION AND CONTEXT\n## Research\nLisbon is hilly.")
	assert.NotContains(t, prompt, "duplicate title")
	assert.NotContains(t, prompt, "## Empty")

	p, err := g.ContextProvider("Research")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon is hilly.", p.Info())

	g.RemoveContextProviders("Research", "Empty")
	_, err = g.ContextProvider("Research")
	assert.Error(t, err)
	assert.NotContains(t, g.Generate(), "EXTRA INFORMATION")
}

func TestGenerateDefaultBackground(t *testing.T) {
	g := New(WithPersonalities("- Use markdown.", "- Be concise."))
	want := "# INSIGHT and PURPOSE\n" +
		defaultBackground + "\n\n" +
		"# PERSONALITY and OUTPUT INSTRUCTIONS\n" +
		"- Use markdown.\n" +
		"- Be concise."
	assert.Equal(t, want, g.Generate())
}
