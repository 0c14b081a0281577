package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bububa/trip-planner/agents"
	"github.com/bububa/trip-planner/components"
	"github.com/bububa/trip-planner/tools/serper"
	"github.com/bububa/trip-planner/tools/webscraper"
)

// Searcher runs web searches, *serper.Search satisfies it
type Searcher interface {
	Run(context.Context, *serper.Input) (*serper.Output, error)
}

// Scraper fetches web pages, *webscraper.Webscraper satisfies it
type Scraper interface {
	Run(context.Context, *webscraper.Input) (*webscraper.Output, error)
}

type ResearcherOption func(*WebResearcher)

// WithScraper scrapes the top search result into the findings
func WithScraper(s Scraper) ResearcherOption {
	return func(r *WebResearcher) {
		r.scraper = s
	}
}

// WithTokenCounter sets the counter used to enforce token budgets
func WithTokenCounter(c components.TokenCounter) ResearcherOption {
	return func(r *WebResearcher) {
		r.counter = c
	}
}

// WithFindingsMaxTokens caps the whole findings text
func WithFindingsMaxTokens(n int) ResearcherOption {
	return func(r *WebResearcher) {
		r.maxTokens = n
	}
}

// WithScrapeMaxTokens caps the scraped page excerpt
func WithScrapeMaxTokens(n int) ResearcherOption {
	return func(r *WebResearcher) {
		r.scrapeMaxTokens = n
	}
}

func WithResearchLogger(l *slog.Logger) ResearcherOption {
	return func(r *WebResearcher) {
		r.logger = l
	}
}

// WebResearcher answers a step's queries with web search results
type WebResearcher struct {
	search          Searcher
	scraper         Scraper
	counter         components.TokenCounter
	maxTokens       int
	scrapeMaxTokens int
	logger          *slog.Logger
}

var _ agents.Researcher = (*WebResearcher)(nil)

func NewWebResearcher(search Searcher, opts ...ResearcherOption) *WebResearcher {
	r := &WebResearcher{
		search:          search,
		maxTokens:       3000,
		scrapeMaxTokens: 1500,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.counter == nil {
		r.counter = components.NewTokenCounter()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Research runs every query. Any search failure fails the whole research
// with agents.ErrSearchUnavailable; a scrape failure only drops the page.
func (r *WebResearcher) Research(ctx context.Context, queries []string) (*agents.Findings, error) {
	out, err := r.search.Run(ctx, serper.NewInput(queries...))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", agents.ErrSearchUnavailable, err)
	}
	var (
		buf     strings.Builder
		sources = make([]string, 0, len(out.Results))
	)
	if len(out.Answers) > 0 {
		buf.WriteString("### Quick answers\n")
		for _, answer := range out.Answers {
			fmt.Fprintf(&buf, "- %s\n", answer)
		}
		buf.WriteString("\n")
	}
	if len(out.Results) == 0 {
		buf.WriteString("No web results found.\n")
	} else {
		buf.WriteString("### Search results\n")
		for idx, item := range out.Results {
			fmt.Fprintf(&buf, "%d. [%s](%s)", idx+1, item.Title, item.Link)
			if item.Date != "" {
				fmt.Fprintf(&buf, " (%s)", item.Date)
			}
			if item.Snippet != "" {
				fmt.Fprintf(&buf, ": %s", item.Snippet)
			}
			buf.WriteString("\n")
			sources = append(sources, item.Link)
		}
	}
	if r.scraper != nil && len(out.Results) > 0 {
		top := out.Results[0]
		if page, err := r.scraper.Run(ctx, webscraper.NewInput(top.Link)); err != nil {
			r.logger.DebugContext(ctx, "scrape failed", slog.String("url", top.Link), slog.Any("error", err))
		} else if content := strings.TrimSpace(page.Content); content != "" {
			fmt.Fprintf(&buf, "\n### Page excerpt: %s\n%s\n", top.Title, r.counter.Truncate(content, r.scrapeMaxTokens))
		}
	}
	return &agents.Findings{
		Content: r.counter.Truncate(strings.TrimSpace(buf.String()), r.maxTokens),
		Sources: sources,
	}, nil
}
