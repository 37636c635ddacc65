package metrics

import (
	"fmt"

	"github.com/aatuh/ulid-toolkit/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counter names understood by PrometheusRecorder.
const (
	Generated        = "ulid_generated_total"
	GenerationErrors = "ulid_generation_errors_total"
)

// NoopMetrics is the default. Swap for PrometheusRecorder when needed.
type NoopMetrics struct{}

func (NoopMetrics) IncCounter(_ string, _ ports.Labels) {}

// PrometheusRecorder implements ports.MetricsRecorder using the Prometheus client.
type PrometheusRecorder struct {
	generated *prometheus.CounterVec
	errors    *prometheus.CounterVec
}

// NewPrometheusRecorder wires the generation counters. Consumers may pass a
// custom registerer (e.g. for testing). When nil, the default Prometheus
// registerer is used.
func NewPrometheusRecorder(registerer prometheus.Registerer) *PrometheusRecorder {
	reg := registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		generated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: Generated,
			Help: "Total number of identifiers generated",
		}, []string{"kind"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: GenerationErrors,
			Help: "Total number of failed identifier generations",
		}, []string{"reason"}),
	}
}

func (p *PrometheusRecorder) IncCounter(name string, labels ports.Labels) {
	if p == nil {
		return
	}
	switch name {
	case Generated:
		p.generated.WithLabelValues(orUnknown(labels["kind"])).Inc()
	case GenerationErrors:
		p.errors.WithLabelValues(orUnknown(labels["reason"])).Inc()
	}
}

// WriteTextfile dumps everything gathered by g to path in the Prometheus text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
