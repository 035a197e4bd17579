package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestGenerateCategory(t *testing.T) {
	var captured map[string]any
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" Work "}}]}`))
	})

	client := New(Config{APIKey: "test", BaseURL: server.URL + "/"}, nil)
	got, err := client.GenerateCategory(context.Background(), "Classify this document")
	if err != nil {
		t.Fatalf("GenerateCategory() error = %v", err)
	}
	if got != "Work" {
		t.Fatalf("expected Work, got %q", got)
	}
	if captured["model"] != defaultChatModel {
		t.Fatalf("unexpected model %v", captured["model"])
	}
	if temp, ok := captured["temperature"].(float64); !ok || temp != 0 {
		t.Fatalf("expected temperature 0, got %v", captured["temperature"])
	}
}

func TestTranscribe(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != defaultTranscribeModel {
			t.Errorf("unexpected model %q", got)
		}
		_, header, err := r.FormFile("file")
		if err != nil || header.Filename != "lecture.mp3" {
			t.Errorf("unexpected file part: %v %v", header, err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" experiment results "}`))
	})

	client := New(Config{APIKey: "test", BaseURL: server.URL + "/"}, nil)
	got, err := client.Transcribe(context.Background(), "lecture.mp3", []byte("ID3"))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got != "experiment results" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestServerErrorIsTemporary(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	})

	client := New(Config{APIKey: "test", BaseURL: server.URL + "/"}, nil)
	_, err := client.GenerateCategory(context.Background(), "x")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestUnauthorizedIsEngineUnavailable(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	})

	client := New(Config{APIKey: "wrong", BaseURL: server.URL + "/"}, nil)
	_, err := client.GenerateCategory(context.Background(), "x")
	if !domain.IsKind(err, domain.ErrEngineUnavailable) {
		t.Fatalf("expected engine unavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "rejected credentials") {
		t.Fatalf("unexpected error text %v", err)
	}
}

func TestMissingKeyIsEngineUnavailable(t *testing.T) {
	client := New(Config{}, nil)
	if _, err := client.GenerateCategory(context.Background(), "x"); !domain.IsKind(err, domain.ErrEngineUnavailable) {
		t.Fatalf("expected engine unavailable, got %v", err)
	}
	if _, err := client.Transcribe(context.Background(), "a.mp3", nil); !domain.IsKind(err, domain.ErrEngineUnavailable) {
		t.Fatalf("expected engine unavailable, got %v", err)
	}
}
