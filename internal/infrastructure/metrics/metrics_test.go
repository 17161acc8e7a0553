package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.LedgerOperations == nil || m.HTTPRequests == nil || m.SettlementOutcomes == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.LedgerOperations.WithLabelValues("EARN").Inc()
	m.TransferCompensations.Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}

	if got := testutil.ToFloat64(m.LedgerOperations.WithLabelValues("EARN")); got != 1 {
		t.Fatalf("expected 1 earn operation, got %v", got)
	}
}

func TestNewWithSeparateRegistries(t *testing.T) {
	first := New(prometheus.NewRegistry())
	second := New(prometheus.NewRegistry())

	first.TransfersCompleted.Inc()
	if got := testutil.ToFloat64(second.TransfersCompleted); got != 0 {
		t.Fatalf("registries must not share counters, got %v", got)
	}
}
