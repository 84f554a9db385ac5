package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumValue totals every data point of an int64 sum metric.
func sumValue(rm metricdata.ResourceMetrics, name string) int64 {
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		return 0
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RequestCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	meta := RequestMeta{Method: "GET", Path: "/items/"}

	m.RecordRequest(ctx, meta, 200, 5*time.Millisecond, nil)
	m.RecordRequest(ctx, meta, 200, 5*time.Millisecond, nil)
	m.RecordRequest(ctx, meta, 500, 5*time.Millisecond, errors.New("boom"))

	rm := collect(t, reader)
	if got := sumValue(rm, "http.client.request.total"); got != 3 {
		t.Errorf("request.total = %d, want 3", got)
	}
	if got := sumValue(rm, "http.client.request.errors"); got != 1 {
		t.Errorf("request.errors = %d, want 1", got)
	}

	hist := findMetric(rm, "http.client.request.duration_ms")
	if hist == nil {
		t.Fatal("http.client.request.duration_ms not found")
	}
	data, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected duration data type %T", hist.Data)
	}
	var count uint64
	for _, dp := range data.DataPoints {
		count += dp.Count
	}
	if count != 3 {
		t.Errorf("duration count = %d, want 3", count)
	}
}

func TestMetrics_CacheLookups(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	meta := RequestMeta{Method: "GET", Path: "/items/"}

	m.RecordCacheLookup(ctx, meta, false)
	m.RecordCacheLookup(ctx, meta, true)
	m.RecordCacheLookup(ctx, meta, true)

	rm := collect(t, reader)
	sum := findMetric(rm, "http.client.cache.lookups").Data.(metricdata.Sum[int64])

	hits := map[bool]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value("cache.hit")
		hits[v.AsBool()] += dp.Value
	}
	if hits[true] != 2 || hits[false] != 1 {
		t.Errorf("hits=%d misses=%d, want 2/1", hits[true], hits[false])
	}
}

func TestMetrics_RetryAndRefresh(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordRetry(ctx, RequestMeta{Method: "GET", Path: "/a"}, 1)
	m.RecordRetry(ctx, RequestMeta{Method: "GET", Path: "/a"}, 2)
	m.RecordRefresh(ctx, RefreshSuccess)
	m.RecordRefresh(ctx, RefreshFailure)

	rm := collect(t, reader)
	if got := sumValue(rm, "http.client.retry.total"); got != 2 {
		t.Errorf("retry.total = %d, want 2", got)
	}

	sum := findMetric(rm, "http.client.token.refresh.total").Data.(metricdata.Sum[int64])
	outcomes := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value("outcome")
		outcomes[v.AsString()] += dp.Value
	}
	if outcomes[RefreshSuccess] != 1 || outcomes[RefreshFailure] != 1 {
		t.Errorf("refresh outcomes = %v", outcomes)
	}
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordRequest(ctx, RequestMeta{Method: "GET", Path: "/c"}, 200, time.Millisecond, nil)
		}()
	}
	wg.Wait()

	if got := sumValue(collect(t, reader), "http.client.request.total"); got != 50 {
		t.Errorf("request.total = %d, want 50", got)
	}
}

func TestNewMetrics_NilMeter(t *testing.T) {
	m, err := NewMetrics(nil)
	if err != nil {
		t.Fatalf("NewMetrics(nil) error = %v", err)
	}
	m.RecordRefresh(context.Background(), RefreshSkipped)
}
