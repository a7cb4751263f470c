package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ScheduleCreated()
	m.ScheduleCreated()
	m.Completion(ResultApplied)
	m.Completion(ResultNoop)
	m.Completion(ResultApplied)
	m.SetOrphaned(3)

	if got := testutil.ToFloat64(m.schedulesCreated); got != 2 {
		t.Errorf("Expected 2 created, got %v", got)
	}
	if got := testutil.ToFloat64(m.completions.WithLabelValues(ResultApplied)); got != 2 {
		t.Errorf("Expected 2 applied completions, got %v", got)
	}
	if got := testutil.ToFloat64(m.orphaned); got != 3 {
		t.Errorf("Expected orphaned gauge 3, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ScheduleCreated()
	m.ScheduleRemoved()
	m.Completion(ResultApplied)
	m.SetOrphaned(1)
}
