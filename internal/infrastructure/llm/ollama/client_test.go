package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/resilience"
)

func TestGenerateCategorySendsDeterministicRequest(t *testing.T) {
	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"  Business\n"}`))
	}))
	defer server.Close()

	client := New(server.URL+"/", "llama3", Options{})
	got, err := client.GenerateCategory(context.Background(), "Classify this document")
	if err != nil {
		t.Fatalf("GenerateCategory() error = %v", err)
	}
	if got != "Business" {
		t.Fatalf("expected trimmed answer, got %q", got)
	}
	if captured.Model != "llama3" || captured.Stream || captured.Options.Temperature != 0 {
		t.Fatalf("unexpected request %+v", captured)
	}
	if captured.Prompt != "Classify this document" {
		t.Fatalf("unexpected prompt %q", captured.Prompt)
	}
}

func TestGenerateCategoryIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL, "missing", Options{})
	_, err := client.GenerateCategory(context.Background(), "x")
	if err == nil {
		t.Fatalf("expected error")
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected HTTPStatusError 404, got %v", err)
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("404 must not be temporary")
	}
}

func TestGenerateCategoryRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "loading model", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"response":"Academic"}`))
	}))
	defer server.Close()

	exec := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		BreakerEnabled:      false,
	})
	client := New(server.URL, "llama3", Options{ResilienceExecutor: exec})
	got, err := client.GenerateCategory(context.Background(), "x")
	if err != nil {
		t.Fatalf("GenerateCategory() error = %v", err)
	}
	if got != "Academic" || calls.Load() != 2 {
		t.Fatalf("expected Academic after 2 calls, got %q after %d", got, calls.Load())
	}
}

func TestGenerateCategoryUnconfigured(t *testing.T) {
	client := New("", "", Options{})
	_, err := client.GenerateCategory(context.Background(), "x")
	if !domain.IsKind(err, domain.ErrEngineUnavailable) {
		t.Fatalf("expected engine unavailable, got %v", err)
	}
}

func TestClassifyOllamaError(t *testing.T) {
	retryable := classifyOllamaError(&HTTPStatusError{StatusCode: http.StatusBadGateway})
	if !retryable.Retryable || !retryable.RecordFailure {
		t.Fatalf("expected 502 to be retryable, got %+v", retryable)
	}
	permanent := classifyOllamaError(&HTTPStatusError{StatusCode: http.StatusBadRequest})
	if permanent.Retryable || permanent.RecordFailure {
		t.Fatalf("expected 400 to be permanent and not recorded, got %+v", permanent)
	}
	if class := classifyOllamaError(context.Canceled); class.Retryable || class.RecordFailure {
		t.Fatalf("cancellation must be ignored, got %+v", class)
	}
}
