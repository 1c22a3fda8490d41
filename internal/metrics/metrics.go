// Package metrics exposes game counters for Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"appeal-engine/internal/event"
	"appeal-engine/internal/model"
)

const namespace = "appeal"

// Metrics holds the collectors of one session. Each instance owns its
// registry so tests and parallel sessions do not collide.
type Metrics struct {
	Registry *prometheus.Registry

	judgments    *prometheus.CounterVec
	daysFinished prometheus.Counter
	feedMessages *prometheus.CounterVec
	streak       prometheus.Gauge
	dayScore     prometheus.Histogram
}

// New creates and registers the collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		judgments: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "judgments_total",
				Help:      "Appeals resolved, by correctness.",
			},
			[]string{"correct"},
		),
		daysFinished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_finished_total",
			Help:      "Days whose records were exhausted.",
		}),
		feedMessages: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feed_messages_total",
				Help:      "Direct messages delivered, by source.",
			},
			[]string{"kind"},
		),
		streak: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "streak",
			Help:      "Current run of correct judgments.",
		}),
		dayScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "day_score",
			Help:      "Total score of finished days.",
			Buckets:   prometheus.LinearBuckets(0, 250, 8),
		}),
	}
}

// ObserveJudgment counts a judgment and records the streak after it.
func (m *Metrics) ObserveJudgment(correct bool, streak int) {
	m.judgments.WithLabelValues(strconv.FormatBool(correct)).Inc()
	m.streak.Set(float64(streak))
}

// ObserveDay records a finished day's report.
func (m *Metrics) ObserveDay(report model.DayReport) {
	m.dayScore.Observe(float64(report.Summary.TotalScore()))
}

// Attach counts day ends and feed deliveries from the event set.
func (m *Metrics) Attach(events *event.Set) {
	events.DayFinished.Subscribe(func(event.Unit) { m.daysFinished.Inc() })
	events.FeedDelivered.Subscribe(func(msg model.FeedMessage) {
		kind := msg.Source
		if kind == "" {
			kind = "unknown"
		}
		m.feedMessages.WithLabelValues(kind).Inc()
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
