package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveOpcodeIncrementsLabeledCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistry(reg)

	m.ObserveOpcode(0x01)
	m.ObserveOpcode(0x01)
	m.ObserveOpcode(0x02)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var found *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "universe_dispatched_opcodes_total" {
			found = f
		}
	}
	if found == nil {
		t.Fatalf("expected universe_dispatched_opcodes_total to be registered")
	}

	var total float64
	for _, m := range found.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	if total != 3 {
		t.Fatalf("expected 3 total observations, got %v", total)
	}
}

func TestActiveConnectionsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistry(reg)

	m.ActiveConnections.Inc()
	m.ActiveConnections.Inc()
	m.ActiveConnections.Dec()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "universe_connections_active" {
			continue
		}
		if got := f.GetMetric()[0].GetGauge().GetValue(); got != 1 {
			t.Fatalf("expected gauge value 1, got %v", got)
		}
		return
	}
	t.Fatalf("expected universe_connections_active to be registered")
}
