package observe

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Refresh outcomes recorded by RecordRefresh.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
	RefreshSkipped = "skipped"
)

// Metrics records request pipeline metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest records one logical request with its final status.
	// status is zero when no response was received.
	RecordRequest(ctx context.Context, meta RequestMeta, status int, duration time.Duration, err error)

	// RecordCacheLookup records a response cache lookup.
	RecordCacheLookup(ctx context.Context, meta RequestMeta, hit bool)

	// RecordRetry records one retry of a failed dispatch.
	RecordRetry(ctx context.Context, meta RequestMeta, attempt int)

	// RecordRefresh records a token refresh outcome.
	RecordRefresh(ctx context.Context, outcome string)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	cacheLookups metric.Int64Counter
	retryCount   metric.Int64Counter
	refreshCount metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	if meter == nil {
		return NopMetrics(), nil
	}

	totalCount, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Total number of logical requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"http.client.request.errors",
		metric.WithDescription("Total number of failed logical requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"http.client.request.duration_ms",
		metric.WithDescription("Logical request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"http.client.cache.lookups",
		metric.WithDescription("Response cache lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"http.client.retry.total",
		metric.WithDescription("Retried dispatches"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	refreshCount, err := meter.Int64Counter(
		"http.client.token.refresh.total",
		metric.WithDescription("Access token refresh attempts"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		cacheLookups: cacheLookups,
		retryCount:   retryCount,
		refreshCount: refreshCount,
	}, nil
}

func methodAttr(meta RequestMeta) attribute.KeyValue {
	return attribute.String("http.request.method", strings.ToUpper(meta.Method))
}

// RecordRequest records metrics for a logical request.
func (m *metricsImpl) RecordRequest(ctx context.Context, meta RequestMeta, status int, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		methodAttr(meta),
		attribute.String("url.path", meta.Path),
	}
	if status > 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", status))
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheLookup(ctx context.Context, meta RequestMeta, hit bool) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("url.path", meta.Path),
		attribute.Bool("cache.hit", hit),
	))
}

func (m *metricsImpl) RecordRetry(ctx context.Context, meta RequestMeta, attempt int) {
	m.retryCount.Add(ctx, 1, metric.WithAttributes(
		methodAttr(meta),
		attribute.String("url.path", meta.Path),
	))
}

func (m *metricsImpl) RecordRefresh(ctx context.Context, outcome string) {
	m.refreshCount.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) RecordRequest(context.Context, RequestMeta, int, time.Duration, error) {}
func (noopMetrics) RecordCacheLookup(context.Context, RequestMeta, bool)                  {}
func (noopMetrics) RecordRetry(context.Context, RequestMeta, int)                         {}
func (noopMetrics) RecordRefresh(context.Context, string)                                 {}
