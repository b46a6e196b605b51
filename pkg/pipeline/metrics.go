package pipeline

import (
	"fmt"

	"github.com/chazu/bimgen/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the run metrics in a private registry, so each run starts
// from zero and nothing leaks into the default registry.
type Metrics struct {
	registry    *prometheus.Registry
	elements    *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	entities    prometheus.Gauge
	success     prometheus.Gauge
	duration    prometheus.Gauge
}

// NewMetrics registers the run metrics in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		elements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bimgen",
			Name:      "elements_total",
			Help:      "Building elements synthesized, by kind.",
		}, []string{"kind"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bimgen",
			Name:      "diagnostics_total",
			Help:      "Requested elements left out of the model, by error code.",
		}, []string{"code"}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bimgen",
			Name:      "entities",
			Help:      "Entities in the generated model.",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bimgen",
			Name:      "last_run_success",
			Help:      "1 if the last run synthesized every element and wrote its output.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bimgen",
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
	}
	m.registry.MustRegister(m.elements, m.diagnostics, m.entities, m.success, m.duration)

	// Expose every element kind, even the ones a run produced none of.
	for k := model.KindWall; k <= model.KindFixture; k++ {
		m.elements.WithLabelValues(k.String())
	}
	return m
}

// Registry returns the registry the metrics are registered in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Observe records a finished run. err is the error the run returned.
func (m *Metrics) Observe(r *RunReport, err error) {
	for k, n := range r.ByKind {
		m.elements.WithLabelValues(k.String()).Add(float64(n))
	}
	for _, d := range r.Diagnostics {
		m.diagnostics.WithLabelValues(d.Code).Inc()
	}
	m.entities.Set(float64(r.Entities))
	m.duration.Set(r.Duration.Seconds())
	if err == nil && r.Success {
		m.success.Set(1)
	} else {
		m.success.Set(0)
	}
}

// WriteTextfile writes the metrics for the node exporter's textfile
// collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
