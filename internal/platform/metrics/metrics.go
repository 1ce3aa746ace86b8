// internal/platform/metrics/metrics.go
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ingestrouter/internal/core/domain"
)

const namespace = "ingestrouter"

// Metrics contiene las métricas de despacho.
type Metrics struct {
	RecordsTotal     *prometheus.CounterVec
	PipelineDuration *prometheus.HistogramVec
	BatchesTotal     *prometheus.CounterVec
	InFlight         prometheus.Gauge
}

// NewMetrics crea y registra las métricas en reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "execution",
				Name:      "records_total",
				Help:      "Execution records emitted, by state and pipeline",
			},
			[]string{"state", "pipeline", "location"},
		),

		PipelineDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "duration_seconds",
				Help:      "Pipeline run duration from Start to Success or Error",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
			},
			[]string{"pipeline", "state"},
		),

		BatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "batches_total",
				Help:      "Dispatched batches by outcome (idle, skipped, succeeded, failed, aborted)",
			},
			[]string{"outcome"},
		),

		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "in_flight",
				Help:      "Pipelines currently running",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.RecordsTotal, m.PipelineDuration, m.BatchesTotal, m.InFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveOutcome cuenta un batch terminado.
func (m *Metrics) ObserveOutcome(outcome string) {
	m.BatchesTotal.WithLabelValues(outcome).Inc()
}

// Sink traduce los registros de ejecución en métricas.
// La duración se mide entre el registro Start y el terminal del mismo batch.
type Sink struct {
	m *Metrics

	mu      sync.Mutex
	started map[string]time.Time
}

// NewSink crea un sink sobre m.
func NewSink(m *Metrics) *Sink {
	return &Sink{m: m, started: make(map[string]time.Time)}
}

// Emit implementa ports.DiagnosticsSink.
func (s *Sink) Emit(rec domain.ExecutionRecord) {
	s.m.RecordsTotal.WithLabelValues(string(rec.State), string(rec.Kind), string(rec.Site)).Inc()

	switch rec.State {
	case domain.StateStart:
		s.m.InFlight.Inc()
		if rec.BatchID != "" {
			s.mu.Lock()
			s.started[rec.BatchID] = rec.Timestamp
			s.mu.Unlock()
		}
	case domain.StateSuccess, domain.StateError:
		s.m.InFlight.Dec()
		s.mu.Lock()
		start, ok := s.started[rec.BatchID]
		delete(s.started, rec.BatchID)
		s.mu.Unlock()
		if ok {
			s.m.PipelineDuration.WithLabelValues(string(rec.Kind), string(rec.State)).
				Observe(rec.Timestamp.Sub(start).Seconds())
		}
	}
}
