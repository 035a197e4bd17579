package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

const namespace = "sdo"

// PipelineMetrics counts extraction and classification outcomes and tracks
// breaker state of the external engines.
type PipelineMetrics struct {
	service string

	extractionTotal     *prometheus.CounterVec
	classificationTotal *prometheus.CounterVec
	generativeFailures  *prometheus.CounterVec
	breakerState        *prometheus.GaugeVec
}

func NewPipelineMetrics(service string, registerer prometheus.Registerer) *PipelineMetrics {
	extractionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "extraction_total",
			Help:      "Text extractions by method and failure reason.",
		},
		[]string{"service", "method", "failure"},
	)
	classificationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "classification_total",
			Help:      "Classification decisions by cascade stage and category.",
		},
		[]string{"service", "stage", "category"},
	)
	generativeFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "generative_failures_total",
			Help:      "Generative fallback attempts that ended in the extension fallback.",
		},
		[]string{"service", "reason"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per operation (0 closed, 1 half-open, 2 open).",
		},
		[]string{"service", "operation"},
	)

	registerer.MustRegister(extractionTotal, classificationTotal, generativeFailures, breakerState)

	return &PipelineMetrics{
		service:             service,
		extractionTotal:     extractionTotal,
		classificationTotal: classificationTotal,
		generativeFailures:  generativeFailures,
		breakerState:        breakerState,
	}
}

func (m *PipelineMetrics) ObserveExtraction(method string, failure domain.ExtractionFailure) {
	if method == "" {
		method = "unknown"
	}
	reason := string(failure)
	if reason == "" {
		reason = "ok"
	}
	m.extractionTotal.WithLabelValues(m.service, method, reason).Inc()
}

func (m *PipelineMetrics) ObserveDecision(decision domain.Decision) {
	m.classificationTotal.WithLabelValues(m.service, string(decision.Stage), decision.Category.String()).Inc()
	if decision.GenerativeFailure != domain.GenerativeOK {
		m.generativeFailures.WithLabelValues(m.service, string(decision.GenerativeFailure)).Inc()
	}
}

// ObserveBreakerState matches resilience.StateListener.
func (m *PipelineMetrics) ObserveBreakerState(operation string, _, to gobreaker.State) {
	var value float64
	switch to {
	case gobreaker.StateHalfOpen:
		value = 1
	case gobreaker.StateOpen:
		value = 2
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}
