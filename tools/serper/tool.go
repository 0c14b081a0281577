// Package serper is a web search tool backed by the Serper Google Search API.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/bububa/trip-planner/schema"
	"github.com/bububa/trip-planner/tools"
)

const (
	DefaultEndpoint = "https://google.serper.dev/search"
	tracerName      = "github.com/bububa/trip-planner/tools/serper"
)

// Input Schema for input to a tool for searching for information, news, references, and other content using Serper.
type Input struct {
	schema.Base
	// Queries list of search queries.
	Queries []string `json:"queries" validate:"required,min=1,dive,required"`
}

func NewInput(queries ...string) *Input {
	return &Input{
		Queries: queries,
	}
}

// SearchResultItem represents a single search result item
type SearchResultItem struct {
	// Title The title of the search result
	Title string `json:"title"`
	// Link The URL of the search result
	Link string `json:"link"`
	// Snippet The content snippet of the search result
	Snippet string `json:"snippet,omitempty"`
	// Date published date when the engine knows it
	Date     string `json:"date,omitempty"`
	Position int    `json:"position,omitempty"`
	// Query The query used to obtain this search result
	Query string `json:"query,omitempty"`
}

type answerBox struct {
	Title   string `json:"title,omitempty"`
	Answer  string `json:"answer,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

type knowledgeGraph struct {
	Title       string `json:"title,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// SearchResponse represents the response body of the Serper API
type SearchResponse struct {
	AnswerBox      *answerBox         `json:"answerBox,omitempty"`
	KnowledgeGraph *knowledgeGraph    `json:"knowledgeGraph,omitempty"`
	Organic        []SearchResultItem `json:"organic"`
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
	GL  string `json:"gl,omitempty"`
	HL  string `json:"hl,omitempty"`
}

// queryResult is what is cached per query
type queryResult struct {
	answers []string
	items   []SearchResultItem
}

// Output represents the output of the Serper search tool.
type Output struct {
	schema.Base
	// Answers direct answers and knowledge graph descriptions
	Answers []string `json:"answers,omitempty"`
	// Results List of search result items in query order
	Results []SearchResultItem `json:"results,omitempty"`
}

func (s Output) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// Stats are the client's lifetime counters
type Stats struct {
	Calls     int64
	Failures  int64
	CacheHits int64
}

type Config struct {
	tools.Config
	apiKey     string
	endpoint   string
	country    string
	language   string
	maxResults int
	cacheSize  int
	httpClient *http.Client
}

// Search is a tool for performing web searches with Serper.
type Search struct {
	Config
	validate  *validator.Validate
	cache     *lru.Cache[string, queryResult]
	calls     atomic.Int64
	failures  atomic.Int64
	cacheHits atomic.Int64
}

var _ tools.Tool[Input, Output] = (*Search)(nil)

func New(apiKey string, opts ...Option) *Search {
	ret := &Search{validate: validator.New(validator.WithRequiredStructEnabled())}
	ret.apiKey = apiKey
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("SerperSearchTool")
	}
	if ret.endpoint == "" {
		ret.endpoint = DefaultEndpoint
	}
	if ret.maxResults <= 0 {
		ret.maxResults = 5
	}
	if ret.cacheSize <= 0 {
		ret.cacheSize = 128
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	// lru.New only errors on non-positive size which is guarded above.
	ret.cache, _ = lru.New[string, queryResult](ret.cacheSize)
	return ret
}

// Stats returns call counters
func (t *Search) Stats() Stats {
	return Stats{
		Calls:     t.calls.Load(),
		Failures:  t.failures.Load(),
		CacheHits: t.cacheHits.Load(),
	}
}

// Run runs all queries concurrently. The first failing query cancels the others
// and its error is returned.
func (t *Search) Run(ctx context.Context, input *Input) (*Output, error) {
	t.OnStart(ctx, t, input)
	if err := t.validate.StructCtx(ctx, input); err != nil {
		err = fmt.Errorf("invalid search input: %w", err)
		t.OnError(ctx, t, input, err)
		return nil, err
	}
	results := make([]queryResult, len(input.Queries))
	g, gctx := errgroup.WithContext(ctx)
	for idx, query := range input.Queries {
		g.Go(func() error {
			ret, err := t.query(gctx, query)
			if err != nil {
				return err
			}
			results[idx] = ret
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.OnError(ctx, t, input, err)
		return nil, err
	}
	out := new(Output)
	seen := make(map[string]struct{})
	for _, ret := range results {
		out.Answers = append(out.Answers, ret.answers...)
		for _, item := range ret.items {
			if _, ok := seen[item.Link]; ok {
				continue
			}
			seen[item.Link] = struct{}{}
			out.Results = append(out.Results, item)
		}
	}
	t.OnEnd(ctx, t, input, out)
	return out, nil
}

func (t *Search) cacheKey(query string) string {
	return strings.Join([]string{strings.ToLower(strings.TrimSpace(query)), t.country, t.language, fmt.Sprint(t.maxResults)}, "\x00")
}

func (t *Search) query(ctx context.Context, query string) (queryResult, error) {
	key := t.cacheKey(query)
	if ret, ok := t.cache.Get(key); ok {
		t.cacheHits.Inc()
		return ret, nil
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "serper.search")
	defer span.End()
	span.SetAttributes(attribute.String("search.query", query))
	t.calls.Inc()
	ret, err := t.fetchSearchResults(ctx, query)
	if err != nil {
		t.failures.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ret, err
	}
	span.SetAttributes(attribute.Int("search.results", len(ret.items)))
	t.cache.Add(key, ret)
	return ret, nil
}

// fetchSearchResults queries the Serper API and returns the parsed search response
func (t *Search) fetchSearchResults(ctx context.Context, query string) (queryResult, error) {
	var ret queryResult
	body, err := json.Marshal(searchRequest{Q: query, Num: t.maxResults, GL: t.country, HL: t.language})
	if err != nil {
		return ret, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return ret, &SearchError{Query: query, Err: fmt.Errorf("%w: %w", ErrNetwork, err)}
	}
	httpReq.Header.Set("X-API-KEY", t.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return ret, &SearchError{Query: query, Err: fmt.Errorf("%w: %w", ErrNetwork, err)}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return ret, statusError(query, httpResp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&searchResponse); err != nil {
		return ret, &SearchError{Query: query, StatusCode: httpResp.StatusCode, Err: fmt.Errorf("%w: decode response: %w", ErrUpstream, err)}
	}
	if box := searchResponse.AnswerBox; box != nil {
		if answer := firstNonEmpty(box.Answer, box.Snippet); answer != "" {
			ret.answers = append(ret.answers, answer)
		}
	}
	if kg := searchResponse.KnowledgeGraph; kg != nil && kg.Description != "" {
		ret.answers = append(ret.answers, fmt.Sprintf("%s: %s", kg.Title, kg.Description))
	}
	for _, item := range searchResponse.Organic {
		if item.Link == "" || item.Title == "" {
			continue
		}
		item.Query = query
		ret.items = append(ret.items, item)
		if len(ret.items) >= t.maxResults {
			break
		}
	}
	return ret, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// IsAuthError reports whether err was caused by a rejected API key
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
