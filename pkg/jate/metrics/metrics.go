// Package metrics defines the Prometheus collectors for extraction and
// benchmark runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes used as the status label.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds all Prometheus collectors for extraction runs.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	CandidatesScored *prometheus.CounterVec
	TermsRanked      *prometheus.GaugeVec
	Evaluation       *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jate_runs_total",
				Help: "Total extraction runs by algorithm and status.",
			},
			[]string{"algorithm", "status"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jate_run_duration_seconds",
				Help:    "Extraction run latency in seconds.",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"algorithm"},
		),
		CandidatesScored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jate_candidates_scored_total",
				Help: "Total candidate terms scored by algorithm.",
			},
			[]string{"algorithm"},
		),
		TermsRanked: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "jate_terms_ranked",
				Help: "Length of the last ranked list after the cut-off, by algorithm.",
			},
			[]string{"algorithm"},
		),
		Evaluation: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "jate_evaluation",
				Help: "Last evaluation result by algorithm and metric (precision@K, recall).",
			},
			[]string{"algorithm", "metric"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.RunsTotal,
			m.RunDuration,
			m.CandidatesScored,
			m.TermsRanked,
			m.Evaluation,
		)
	}
	return m
}

// ObserveRun records one finished extraction run. Safe on a nil receiver.
func (m *Metrics) ObserveRun(algorithm string, took time.Duration, scored, ranked int, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.RunsTotal.WithLabelValues(algorithm, status).Inc()
	m.RunDuration.WithLabelValues(algorithm).Observe(took.Seconds())
	if err == nil {
		m.CandidatesScored.WithLabelValues(algorithm).Add(float64(scored))
		m.TermsRanked.WithLabelValues(algorithm).Set(float64(ranked))
	}
}

// ObserveEvaluation records the metrics of one evaluation report. Safe on a
// nil receiver.
func (m *Metrics) ObserveEvaluation(algorithm string, values map[string]float64) {
	if m == nil {
		return
	}
	for metric, v := range values {
		m.Evaluation.WithLabelValues(algorithm, metric).Set(v)
	}
}

// WriteTextfile writes everything gathered by g to path in the text
// exposition format, for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
