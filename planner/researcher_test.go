package planner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/trip-planner/agents"
	"github.com/bububa/trip-planner/components"
	"github.com/bububa/trip-planner/tools/serper"
	"github.com/bububa/trip-planner/tools/webscraper"
)

type fakeSearcher struct {
	out *serper.Output
	err error
	got []string
}

func (f *fakeSearcher) Run(_ context.Context, in *serper.Input) (*serper.Output, error) {
	f.got = in.Queries
	return f.out, f.err
}

type fakeScraper struct {
	out *webscraper.Output
	err error
	got string
}

func (f *fakeScraper) Run(_ context.Context, in *webscraper.Input) (*webscraper.Output, error) {
	f.got = in.URL
	return f.out, f.err
}

func searchOutput() *serper.Output {
	return &serper.Output{
		Answers: []string{"Lisbon: capital of Portugal"},
		Results: []serper.SearchResultItem{
			{Title: "Visit Lisbon", Link: "https://visitlisbon.example", Snippet: "Official guide", Date: "2026"},
			{Title: "Alfama", Link: "https://alfama.example"},
		},
	}
}

func TestResearch(t *testing.T) {
	search := &fakeSearcher{out: searchOutput()}
	scraper := &fakeScraper{out: &webscraper.Output{Content: "Tram 28 climbs through Alfama."}}
	r := NewWebResearcher(search, WithScraper(scraper), WithTokenCounter(components.WordCounter{}))

	findings, err := r.Research(context.Background(), []string{"lisbon guide"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lisbon guide"}, search.got)
	assert.Equal(t, "https://visitlisbon.example", scraper.got)
	assert.Equal(t, []string{"https://visitlisbon.example", "https://alfama.example"}, findings.Sources)
	assert.Equal(t, agents.FindingsTitle, findings.Title())
	content := findings.Info()
	assert.Contains(t, content, "- Lisbon: capital of Portugal")
	assert.Contains(t, content, "1. [Visit Lisbon](https://visitlisbon.example) (2026): Official guide")
	assert.Contains(t, content, "2. [Alfama](https://alfama.example)")
	assert.Contains(t, content, "### Page excerpt: Visit Lisbon\nTram 28 climbs through Alfama.")
}

func TestResearchSearchFailure(t *testing.T) {
	cause := &serper.SearchError{Query: "q", StatusCode: 429, Err: serper.ErrRateLimited}
	r := NewWebResearcher(&fakeSearcher{err: cause}, WithTokenCounter(components.WordCounter{}))
	_, err := r.Research(context.Background(), []string{"q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, agents.ErrSearchUnavailable)
	assert.ErrorIs(t, err, serper.ErrRateLimited)
}

func TestResearchScrapeFailureIsNotFatal(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	scraper := &fakeScraper{err: errors.New("connection refused")}
	r := NewWebResearcher(&fakeSearcher{out: searchOutput()},
		WithScraper(scraper),
		WithTokenCounter(components.WordCounter{}),
		WithResearchLogger(logger),
	)
	findings, err := r.Research(context.Background(), []string{"q"})
	require.NoError(t, err)
	assert.NotContains(t, findings.Content, "Page excerpt")
	assert.Contains(t, logs.String(), "level=DEBUG")
	assert.Contains(t, logs.String(), "connection refused")
}

func TestResearchTruncates(t *testing.T) {
	scraper := &fakeScraper{out: &webscraper.Output{Content: strings.Repeat("word ", 500)}}
	r := NewWebResearcher(&fakeSearcher{out: searchOutput()},
		WithScraper(scraper),
		WithTokenCounter(components.WordCounter{}),
		WithScrapeMaxTokens(10),
		WithFindingsMaxTokens(40),
	)
	findings, err := r.Research(context.Background(), []string{"q"})
	require.NoError(t, err)
	assert.LessOrEqual(t, components.WordCounter{}.Count(findings.Content), 40)
}

func TestResearchNoResults(t *testing.T) {
	scraper := &fakeScraper{}
	r := NewWebResearcher(&fakeSearcher{out: &serper.Output{}}, WithScraper(scraper), WithTokenCounter(components.WordCounter{}))
	findings, err := r.Research(context.Background(), []string{"q"})
	require.NoError(t, err)
	assert.Equal(t, "No web results found.", findings.Content)
	assert.Empty(t, findings.Sources)
	assert.Empty(t, scraper.got)
}
