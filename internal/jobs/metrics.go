package jobs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics счётчики запусков задач.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diary_sync_job_runs_total",
			Help: "Number of finished job runs by family and outcome.",
		}, []string{"family", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "diary_sync_job_duration_seconds",
			Help:    "Job run duration.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15, 30, 60, 120},
		}, []string{"family"}),
	}
	reg.MustRegister(m.runs, m.duration)
	return m
}

func (m *Metrics) observe(family string, outcome Outcome, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(family, outcome.String()).Inc()
	m.duration.WithLabelValues(family).Observe(d.Seconds())
}
