package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

func TestPipelineMetricsCountsOutcomes(t *testing.T) {
	m := NewPipelineMetrics("test", prometheus.NewRegistry())

	m.ObserveExtraction(domain.MethodPDFText, domain.ExtractionOK)
	m.ObserveExtraction(domain.MethodImageOCR, domain.ExtractionEngineUnavailable)
	m.ObserveDecision(domain.Decision{Category: domain.CategoryWork, Stage: domain.StageKeywordScore})
	m.ObserveDecision(domain.Decision{
		Category:          domain.CategoryOthers,
		Stage:             domain.StageExtensionFallback,
		GenerativeFailure: domain.GenerativeCallFailed,
	})

	if got := testutil.ToFloat64(m.extractionTotal.WithLabelValues("test", domain.MethodPDFText, "ok")); got != 1 {
		t.Fatalf("expected one ok pdf extraction, got %v", got)
	}
	if got := testutil.ToFloat64(m.extractionTotal.WithLabelValues("test", domain.MethodImageOCR, "engine_unavailable")); got != 1 {
		t.Fatalf("expected one unavailable ocr extraction, got %v", got)
	}
	if got := testutil.ToFloat64(m.classificationTotal.WithLabelValues("test", "keyword_score", "Work")); got != 1 {
		t.Fatalf("expected one keyword decision, got %v", got)
	}
	if got := testutil.ToFloat64(m.generativeFailures.WithLabelValues("test", "call_failed")); got != 1 {
		t.Fatalf("expected one generative failure, got %v", got)
	}
	if got := testutil.CollectAndCount(m.generativeFailures); got != 1 {
		t.Fatalf("keyword decision must not count as generative failure, series=%d", got)
	}
}

func TestPipelineMetricsBreakerState(t *testing.T) {
	m := NewPipelineMetrics("test", prometheus.NewRegistry())

	m.ObserveBreakerState("ollama.generate", gobreaker.StateClosed, gobreaker.StateOpen)
	if got := testutil.ToFloat64(m.breakerState.WithLabelValues("test", "ollama.generate")); got != 2 {
		t.Fatalf("expected open=2, got %v", got)
	}
	m.ObserveBreakerState("ollama.generate", gobreaker.StateOpen, gobreaker.StateHalfOpen)
	if got := testutil.ToFloat64(m.breakerState.WithLabelValues("test", "ollama.generate")); got != 1 {
		t.Fatalf("expected half-open=1, got %v", got)
	}
}
