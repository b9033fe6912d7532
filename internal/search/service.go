package search

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ben-bakker/searchai/internal/metrics"
	"github.com/ben-bakker/searchai/internal/types"
)

const defaultUpstreamTimeout = 30 * time.Second

// partialAnswerMessage is returned to clients in place of an answer when
// partial responses are enabled. Provider details stay in the logs.
const partialAnswerMessage = "Failed to generate answer"

var searchTracer = otel.Tracer("searchai/search")

// SearchProvider performs one web search and returns the provider's raw records.
// Implementations must fail when the provider payload has no results field.
type SearchProvider interface {
	Search(ctx context.Context, query string, opts types.SearchOptions) ([]types.RawResult, error)
}

// AnswerGenerator synthesizes an answer for query from normalized results.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, query string, results []types.SearchResult) (*types.AIAnswer, error)
}

// ServiceConfig wires the collaborators of a Service
type ServiceConfig struct {
	Provider SearchProvider
	// Answerer may be nil, in which case answer requests fail as upstream errors.
	Answerer AnswerGenerator
	// UpstreamTimeout bounds each outbound call separately.
	UpstreamTimeout time.Duration
	// PartialAnswerOnFailure returns search results with an answer error
	// instead of failing the request when answer generation fails.
	PartialAnswerOnFailure bool
	Logger                 *log.Logger
}

// Service validates queries, calls the search provider, normalizes the
// results and optionally asks the answer provider for a summary. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	provider        SearchProvider
	answerer        AnswerGenerator
	upstreamTimeout time.Duration
	partialAnswers  bool
	logger          *log.Logger
}

// NewService creates a new search service
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("search provider cannot be nil")
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = defaultUpstreamTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}

	return &Service{
		provider:        cfg.Provider,
		answerer:        cfg.Answerer,
		upstreamTimeout: cfg.UpstreamTimeout,
		partialAnswers:  cfg.PartialAnswerOnFailure,
		logger:          cfg.Logger,
	}, nil
}

// Search runs one search request. Errors satisfy IsInvalidInput or IsUpstream.
func (s *Service) Search(ctx context.Context, query string, override *types.SearchOptionsOverride) (*types.SearchResponse, error) {
	start := time.Now()
	opts := override.Merge()
	query = strings.TrimSpace(query)

	ctx, span := searchTracer.Start(ctx, "search.Search", trace.WithAttributes(
		attribute.String("search.query_fingerprint", queryFingerprint(query)),
		attribute.Int("search.max_results", opts.MaxResults),
		attribute.String("search.depth", opts.SearchDepth),
		attribute.Bool("search.generate_answer", opts.GenerateAnswer),
	))
	defer span.End()

	resp, outcome, err := s.run(ctx, query, opts)

	results := 0
	if resp != nil {
		results = len(resp.Results)
	}
	metrics.RecordSearch(ctx, outcome, opts.GenerateAnswer, results, time.Since(start))
	span.SetAttributes(attribute.String("search.outcome", string(outcome)))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(outcome))
		return nil, err
	}

	span.SetAttributes(attribute.Int("search.results.returned", results))
	return resp, nil
}

func (s *Service) run(ctx context.Context, query string, opts types.SearchOptions) (*types.SearchResponse, metrics.Outcome, error) {
	if query == "" {
		return nil, metrics.OutcomeInvalidInput, invalidInput("search.validate", "query is empty")
	}

	s.logger.Printf("Searching: max_results=%d depth=%s generate_answer=%v", opts.MaxResults, opts.SearchDepth, opts.GenerateAnswer)

	raw, err := s.callProvider(ctx, query, opts)
	if err != nil {
		s.logger.Printf("Search provider failed: %v", err)
		return nil, metrics.OutcomeUpstreamError, upstream("search.provider", err)
	}

	results, stats := NormalizeWithStats(raw)
	metrics.RecordDropped(ctx, "duplicate", stats.Duplicates)
	metrics.RecordDropped(ctx, "missing_url", stats.MissingURL)
	if stats.MissingURL > 0 {
		s.logger.Printf("Dropped %d provider records without url", stats.MissingURL)
	}
	s.logger.Printf("Processed results count: %d (raw %d, duplicates %d)", stats.Kept, stats.Input, stats.Duplicates)

	resp := &types.SearchResponse{Results: results}
	if !opts.GenerateAnswer {
		return resp, metrics.OutcomeSuccess, nil
	}

	answer, err := s.callAnswerer(ctx, query, results)
	if err != nil {
		s.logger.Printf("Answer generation failed: %v", err)
		if s.partialAnswers {
			resp.AIAnswerError = partialAnswerMessage
			return resp, metrics.OutcomePartial, nil
		}
		return nil, metrics.OutcomeUpstreamError, upstream("answer.generate", err)
	}

	answer.Sources = SourcesOf(results)
	resp.AIAnswer = answer
	return resp, metrics.OutcomeSuccess, nil
}

func (s *Service) callProvider(ctx context.Context, query string, opts types.SearchOptions) ([]types.RawResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()

	ctx, span := searchTracer.Start(ctx, "search.provider")
	defer span.End()

	start := time.Now()
	raw, err := s.provider.Search(ctx, query, opts)
	metrics.RecordUpstreamCall(ctx, metrics.ProviderSearch, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search_provider_failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("search.results.raw", len(raw)))
	return raw, nil
}

func (s *Service) callAnswerer(ctx context.Context, query string, results []types.SearchResult) (*types.AIAnswer, error) {
	if s.answerer == nil {
		return nil, errors.New("answer generation is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()

	ctx, span := searchTracer.Start(ctx, "search.answer", trace.WithAttributes(
		attribute.Int("answer.sources", len(results)),
	))
	defer span.End()

	start := time.Now()
	answer, err := s.answerer.GenerateAnswer(ctx, query, results)
	if err == nil && answer == nil {
		err = errors.New("answer provider returned no answer")
	}
	metrics.RecordUpstreamCall(ctx, metrics.ProviderAnswer, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "answer_generation_failed")
		return nil, err
	}

	span.SetAttributes(attribute.String("answer.model", answer.Model))
	return answer, nil
}

// SourcesOf projects results to the {title, url} pairs cited by an answer.
func SourcesOf(results []types.SearchResult) []types.Source {
	sources := make([]types.Source, len(results))
	for i, r := range results {
		sources[i] = types.Source{Title: r.Title, URL: r.URL}
	}
	return sources
}

func queryFingerprint(query string) string {
	if query == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(query))
	// First 8 bytes keep fingerprints short.
	return fmt.Sprintf("%x", sum[:8])
}
