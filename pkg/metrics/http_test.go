package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveRecordsRequest(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("GET", "/api/v1/products", 200, 120*time.Millisecond)
	m.Observe("GET", "/api/v1/products", 200, 80*time.Millisecond)
	m.Observe("POST", "/api/v1/orders/checkout", 201, 300*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	counter, ok := byName["http_requests_total"]
	if !ok {
		t.Fatal("http_requests_total not registered")
	}
	var productHits float64
	for _, metric := range counter.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "route" && label.GetValue() == "/api/v1/products" {
				productHits = metric.GetCounter().GetValue()
			}
		}
	}
	if productHits != 2 {
		t.Fatalf("expected 2 product list requests, got %v", productHits)
	}

	if _, ok := byName["http_request_duration_seconds"]; !ok {
		t.Fatal("http_request_duration_seconds not registered")
	}
}

func TestObserveOnNilReceiverIsNoop(t *testing.T) {
	t.Parallel()

	var m *HTTPMetrics
	m.Observe("GET", "/", 200, time.Millisecond)

	empty := NewHTTPMetrics(nil)
	empty.Observe("", "", 0, 0)
}
