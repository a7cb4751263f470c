// Package metrics holds the prometheus collectors of the schedule engine.
// A nil *Metrics is valid and records nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Completion results
const (
	ResultApplied          = "applied"
	ResultNoop             = "noop"
	ResultReopened         = "reopened"
	ResultDecisionRequired = "decision_required"
	ResultOrphaned         = "orphaned"
)

type Metrics struct {
	schedulesCreated prometheus.Counter
	schedulesRemoved prometheus.Counter
	completions      *prometheus.CounterVec
	orphaned         prometheus.Gauge
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		schedulesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "watchweek",
			Name:      "schedules_created_total",
			Help:      "Schedule items created.",
		}),
		schedulesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "watchweek",
			Name:      "schedules_removed_total",
			Help:      "Schedule remove requests, including no-op repeats.",
		}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watchweek",
			Name:      "completions_total",
			Help:      "Complete calls by result.",
		}, []string{"result"}),
		orphaned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "watchweek",
			Name:      "orphaned_schedules",
			Help:      "Schedule items whose title progress no longer exists, as of the last sweep.",
		}),
	}
	reg.MustRegister(m.schedulesCreated, m.schedulesRemoved, m.completions, m.orphaned)
	return m
}

func (m *Metrics) ScheduleCreated() {
	if m != nil {
		m.schedulesCreated.Inc()
	}
}

func (m *Metrics) ScheduleRemoved() {
	if m != nil {
		m.schedulesRemoved.Inc()
	}
}

func (m *Metrics) Completion(result string) {
	if m != nil {
		m.completions.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) SetOrphaned(n int) {
	if m != nil {
		m.orphaned.Set(float64(n))
	}
}
