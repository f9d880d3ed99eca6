package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ppiankov/claimaudit/internal/model"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		resp := openai.ChatCompletionResponse{
			ID:      "chatcmpl-123",
			Object:  "chat.completion",
			Created: 1677652288,
			Model:   "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: content,
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{TotalTokens: 100},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIProvider_Summarize_Success(t *testing.T) {
	server := chatServer(t, "Two of five claims are contradicted. Source: https://www.epa.gov.")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:         "test-key",
		BaseURL:        server.URL,
		Model:          "gpt-4o-mini",
		Timeout:        5,
		StrictEvidence: true,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{
		Report:       model.Report{Title: "Test"},
		EvidenceURLs: []string{"https://www.epa.gov"},
	})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if resp.Summary != "Two of five claims are contradicted. Source: https://www.epa.gov." {
		t.Errorf("Unexpected summary: %s", resp.Summary)
	}
	if len(resp.CitedURLs) != 1 || resp.CitedURLs[0] != "https://www.epa.gov" {
		t.Errorf("Unexpected cited URLs: %v", resp.CitedURLs)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("Unexpected model: %s", resp.Model)
	}
}

func TestOpenAIProvider_Summarize_CitationLeak(t *testing.T) {
	server := chatServer(t, "See https://invented.example.org/report for details.")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:         "test-key",
		BaseURL:        server.URL,
		Timeout:        5,
		StrictEvidence: true,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), SummarizeRequest{
		Report:       model.Report{Title: "Test"},
		EvidenceURLs: []string{"https://www.epa.gov"},
	})
	if !errors.Is(err, ErrCitationLeak) {
		t.Fatalf("Expected citation leak, got %v", err)
	}
}

func TestOpenAIProvider_Summarize_LenientAllowsAnyURL(t *testing.T) {
	server := chatServer(t, "See https://invented.example.org/report for details.")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{Report: model.Report{Title: "Test"}})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(resp.CitedURLs) != 1 {
		t.Errorf("Unexpected cited URLs: %v", resp.CitedURLs)
	}
}

func TestOpenAIProvider_Summarize_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5}, nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), SummarizeRequest{Report: model.Report{Title: "Test"}})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIProvider_Summarize_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5}, nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), SummarizeRequest{Report: model.Report{Title: "Test"}})
	if err == nil {
		t.Fatal("Expected error for malformed JSON, got nil")
	}
}

func TestOpenAIProvider_Summarize_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5}, nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	// The caller's deadline wins over the configured timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = provider.Summarize(ctx, SummarizeRequest{Report: model.Report{Title: "Test"}})
	if err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"data": [{"id": "gpt-4o-mini"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL}, nil)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}

func TestOpenAIProvider_IsAvailable_LogsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	provider, err := NewProvider(Config{Provider: "ollama", BaseURL: server.URL}, zap.New(core))
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	if provider.IsAvailable(context.Background()) {
		t.Fatal("Expected available to be false for a rejected key")
	}

	entries := logs.FilterMessage("llm availability check failed").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["provider"] != "ollama" {
		t.Errorf("Expected provider ollama, got %v", fields["provider"])
	}
	if msg, _ := fields["error"].(string); !strings.Contains(msg, "Incorrect API key provided") {
		t.Errorf("Expected the API error in the log, got %q", msg)
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}, nil); err == nil {
		t.Error("Expected error without API key")
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{}, nil)
	if err != nil || p != nil {
		t.Errorf("Expected nil provider for empty config, got %v, %v", p, err)
	}

	p, err = NewProvider(Config{Provider: "OpenAI", APIKey: "k"}, nil)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Expected openai, got %s", p.Name())
	}

	p, err = NewProvider(Config{Provider: "ollama"}, nil)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Expected ollama, got %s", p.Name())
	}

	if _, err := NewProvider(Config{Provider: "anthropic"}, nil); err == nil {
		t.Error("Expected error for unsupported provider")
	}
}

func TestExtractURLs(t *testing.T) {
	got := extractURLs("See https://a.example/x, then (https://b.example/y) and https://a.example/x.")
	want := []string{"https://a.example/x", "https://b.example/y"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %s at %d, got %s", want[i], i, got[i])
		}
	}
}
