package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestClientMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewClientMetrics(reg, "")
	metrics.ObserveRequest("GET /api/cart", 200, 120*time.Millisecond)
	metrics.ObserveRequest("GET /api/cart", 401, 10*time.Millisecond)
	metrics.ObserveRequest("GET /api/cart", 0, time.Millisecond)
	metrics.IncAuthExpired()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	for _, status := range []string{"200", "401", "error"} {
		got, err := fetchCounterValue(mfs, "storefront_requests_total", map[string]string{"endpoint": "GET /api/cart", "status": status})
		if err != nil {
			t.Fatalf("fetch requests status=%s: %v", status, err)
		}
		if got != 1 {
			t.Fatalf("expected 1 request with status %s, got %f", status, got)
		}
	}

	if got, err := fetchHistogramCount(mfs, "storefront_request_duration_seconds", map[string]string{"endpoint": "GET /api/cart"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got != 3 {
		t.Fatalf("expected 3 duration samples, got %d", got)
	}

	if got, err := fetchCounterValue(mfs, "storefront_auth_expired_total", nil); err != nil {
		t.Fatalf("fetch auth expired: %v", err)
	} else if got != 1 {
		t.Fatalf("expected auth expired=1, got %f", got)
	}
}

func TestClientMetricsNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewClientMetrics(reg, "coffeemarket").ObserveRequest("", 204, time.Millisecond)
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if _, err := fetchCounterValue(mfs, "coffeemarket_storefront_requests_total", map[string]string{"endpoint": "unknown", "status": "204"}); err != nil {
		t.Fatalf("namespaced counter missing: %v", err)
	}
}

func TestClientMetricsNilSafe(t *testing.T) {
	var nilMetrics *ClientMetrics
	nilMetrics.ObserveRequest("x", 200, time.Second)
	nilMetrics.IncAuthExpired()

	unregistered := NewClientMetrics(nil, "")
	unregistered.ObserveRequest("x", 200, time.Second)
	unregistered.IncAuthExpired()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramCount(mfs []*dto.MetricFamily, name string, labels map[string]string) (uint64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleCount(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok {
			if v != pair.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
