package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	InstructionsTotal   *prometheus.CounterVec
	MessagesTotal       *prometheus.CounterVec
	DegradedTotal       *prometheus.CounterVec
	CalculationDuration prometheus.Histogram
	InFlight            prometheus.Gauge
}

// New registers the engine collectors on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InstructionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realty_instructions_total",
			Help: "Instructions evaluated, by operation and outcome",
		}, []string{"operation", "outcome"}),
		MessagesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realty_messages_total",
			Help: "Calculation messages emitted, by level and code",
		}, []string{"level", "code"}),
		DegradedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realty_degraded_determinations_total",
			Help: "Verdicts produced with a fallback rule (generic pattern or default cap)",
		}, []string{"kind"}),
		CalculationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "realty_calculation_duration_seconds",
			Help:    "Duration of a full calculation request",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "realty_calculations_in_flight",
			Help: "Calculations currently being processed",
		}),
	}
}

// The methods below are nil-safe so callers can run without metrics.

func (m *Metrics) ObserveInstruction(operation, outcome string) {
	if m == nil {
		return
	}
	m.InstructionsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveMessage(level, code string) {
	if m == nil {
		return
	}
	m.MessagesTotal.WithLabelValues(level, code).Inc()
}

func (m *Metrics) IncrementDegraded(kind string) {
	if m == nil {
		return
	}
	m.DegradedTotal.WithLabelValues(kind).Inc()
}

// StartCalculation marks a calculation in flight and returns a func that
// records its duration.
func (m *Metrics) StartCalculation() func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	m.InFlight.Inc()
	return func() {
		m.InFlight.Dec()
		m.CalculationDuration.Observe(time.Since(start).Seconds())
	}
}
