package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome classifies how a search request ended
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomePartial       Outcome = "partial"
	OutcomeInvalidInput  Outcome = "invalid_input"
	OutcomeUpstreamError Outcome = "upstream_error"
)

// Upstream providers
const (
	ProviderSearch = "search"
	ProviderAnswer = "answer"
)

var (
	metricsOnce sync.Once

	searchCounter     metric.Int64Counter
	searchLatency     metric.Float64Histogram
	resultsHistogram  metric.Int64Histogram
	upstreamCounter   metric.Int64Counter
	upstreamLatency   metric.Float64Histogram
	duplicatesCounter metric.Int64Counter
)

func initMetrics() {
	metricsOnce.Do(func() {
		meter := otel.Meter("searchai/metrics")

		var err error
		searchCounter, err = meter.Int64Counter(
			"searchai.search.requests.total",
			metric.WithDescription("Total search requests by outcome"),
		)
		if err != nil {
			log.Printf("metrics: failed to create search counter: %v", err)
		}

		searchLatency, err = meter.Float64Histogram(
			"searchai.search.duration",
			metric.WithDescription("End-to-end search duration (ms)"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			log.Printf("metrics: failed to create search latency histogram: %v", err)
		}

		resultsHistogram, err = meter.Int64Histogram(
			"searchai.search.results",
			metric.WithDescription("Normalized results returned per search"),
			metric.WithUnit("{results}"),
		)
		if err != nil {
			log.Printf("metrics: failed to create results histogram: %v", err)
		}

		upstreamCounter, err = meter.Int64Counter(
			"searchai.upstream.calls.total",
			metric.WithDescription("Outbound provider calls by provider and status"),
		)
		if err != nil {
			log.Printf("metrics: failed to create upstream counter: %v", err)
		}

		upstreamLatency, err = meter.Float64Histogram(
			"searchai.upstream.duration",
			metric.WithDescription("Outbound provider call duration (ms)"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			log.Printf("metrics: failed to create upstream latency histogram: %v", err)
		}

		duplicatesCounter, err = meter.Int64Counter(
			"searchai.normalizer.dropped.total",
			metric.WithDescription("Provider records dropped during normalization"),
		)
		if err != nil {
			log.Printf("metrics: failed to create dropped counter: %v", err)
		}
	})
}

// RecordSearch records one finished search request.
func RecordSearch(ctx context.Context, outcome Outcome, answerRequested bool, results int, duration time.Duration) {
	initMetrics()
	attrs := metric.WithAttributes(
		attribute.String("outcome", string(outcome)),
		attribute.Bool("answer_requested", answerRequested),
	)
	if searchCounter != nil {
		searchCounter.Add(ctx, 1, attrs)
	}
	if searchLatency != nil {
		searchLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
	if resultsHistogram != nil && outcome != OutcomeInvalidInput && outcome != OutcomeUpstreamError {
		resultsHistogram.Record(ctx, int64(results))
	}
}

// RecordUpstreamCall records one outbound provider call.
func RecordUpstreamCall(ctx context.Context, provider string, duration time.Duration, err error) {
	initMetrics()
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	)
	if upstreamCounter != nil {
		upstreamCounter.Add(ctx, 1, attrs)
	}
	if upstreamLatency != nil {
		upstreamLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

// RecordDropped records provider records removed by the normalizer.
func RecordDropped(ctx context.Context, reason string, count int) {
	if count <= 0 {
		return
	}
	initMetrics()
	if duplicatesCounter != nil {
		duplicatesCounter.Add(ctx, int64(count), metric.WithAttributes(attribute.String("reason", reason)))
	}
}

// ResetForTesting drops registered instruments so the next call binds to the
// current global meter provider. This should only be used in tests.
func ResetForTesting() {
	metricsOnce = sync.Once{}
	searchCounter = nil
	searchLatency = nil
	resultsHistogram = nil
	upstreamCounter = nil
	upstreamLatency = nil
	duplicatesCounter = nil
}
