// Package metrics holds the Prometheus instruments for engine activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a set of instruments on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	AttemptsRecorded *prometheus.CounterVec
	MasteryScore     *prometheus.HistogramVec
	BricksMastered   *prometheus.CounterVec
	ProposalsCreated *prometheus.CounterVec
	ItemsCompleted   prometheus.Counter
	EdgesRejected    prometheus.Counter
	QueueSize        prometheus.Gauge
	OverdueItems     prometheus.Gauge
}

// New creates and registers all instruments.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		AttemptsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyloop_attempts_recorded_total",
				Help: "Total number of exercise attempts recorded",
			},
			[]string{"mode", "status"},
		),
		MasteryScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studyloop_mastery_score",
				Help:    "Mastery scores computed after attempts",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
			[]string{"brick_kind"},
		),
		BricksMastered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyloop_bricks_mastered_total",
				Help: "Total number of bricks that reached mastery for the first time",
			},
			[]string{"brick_kind"},
		),
		ProposalsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyloop_review_proposals_total",
				Help: "Total number of review items scheduled",
			},
			[]string{"reason"},
		),
		ItemsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyloop_review_items_completed_total",
			Help: "Total number of review items completed by an attempt",
		}),
		EdgesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyloop_prerequisite_edges_rejected_total",
			Help: "Total number of prerequisite edges refused because they would form a cycle",
		}),
		QueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "studyloop_review_queue_size",
			Help: "Number of items in the last review queue served",
		}),
		OverdueItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "studyloop_review_items_overdue",
			Help: "Number of overdue pending items at the last queue request",
		}),
	}
	m.Registry.MustRegister(
		m.AttemptsRecorded,
		m.MasteryScore,
		m.BricksMastered,
		m.ProposalsCreated,
		m.ItemsCompleted,
		m.EdgesRejected,
		m.QueueSize,
		m.OverdueItems,
	)
	return m
}

func (m *Metrics) ObserveAttempt(mode, status string) {
	if m == nil {
		return
	}
	m.AttemptsRecorded.WithLabelValues(mode, status).Inc()
}

func (m *Metrics) ObserveMastery(brickKind string, score int, newlyMastered bool) {
	if m == nil {
		return
	}
	m.MasteryScore.WithLabelValues(brickKind).Observe(float64(score))
	if newlyMastered {
		m.BricksMastered.WithLabelValues(brickKind).Inc()
	}
}

func (m *Metrics) ObserveProposal(reason string) {
	if m == nil {
		return
	}
	m.ProposalsCreated.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveCompletion() {
	if m == nil {
		return
	}
	m.ItemsCompleted.Inc()
}

func (m *Metrics) ObserveRejectedEdge() {
	if m == nil {
		return
	}
	m.EdgesRejected.Inc()
}

func (m *Metrics) ObserveQueue(size, overdue int) {
	if m == nil {
		return
	}
	m.QueueSize.Set(float64(size))
	m.OverdueItems.Set(float64(overdue))
}

// WriteTextfile writes the current values in the text exposition format,
// for pickup by a node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
