package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestOllama(t *testing.T, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOllamaProvider(srv.URL, "llama3.2:3b")
}

func TestOllamaChatCompletion(t *testing.T) {
	t.Parallel()

	p := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		if len(req.Messages) != 2 {
			t.Errorf("expected 2 messages, got %d", len(req.Messages))
		}

		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Message:    ollamaChatMessage{Role: "assistant", Content: "SELECT * FROM employees"},
			DoneReason: "stop",
			Done:       true,
		})
	})

	resp, err := p.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "You translate questions into SQL."},
			{Role: "user", Content: "show all employees"},
		},
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("ChatCompletion returned error: %v", err)
	}
	if resp.Content != "SELECT * FROM employees" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.StopReason != "stop" {
		t.Errorf("unexpected stop reason %q", resp.StopReason)
	}
}

func TestOllamaChatCompletion_ModelOverride(t *testing.T) {
	t.Parallel()

	p := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "llama3.1:8b" {
			t.Errorf("expected model override llama3.1:8b, got %q", req.Model)
		}
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Done: true})
	})

	_, err := p.ChatCompletion(context.Background(), ChatRequest{
		Model:    "llama3.1:8b",
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("ChatCompletion returned error: %v", err)
	}
}

func TestOllamaChatCompletion_ServerError(t *testing.T) {
	t.Parallel()

	p := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := p.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestOllamaHealthCheck(t *testing.T) {
	t.Parallel()

	p := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := p.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestOllamaHealthCheck_Unreachable(t *testing.T) {
	t.Parallel()

	p := NewOllamaProvider("http://127.0.0.1:1", "llama3.2:3b")
	if err := p.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestBuildChatOptions(t *testing.T) {
	t.Parallel()

	if opts := buildChatOptions(ChatRequest{}); opts != nil {
		t.Errorf("expected nil options for zero request, got %v", opts)
	}

	opts := buildChatOptions(ChatRequest{Temperature: 0.7, MaxTokens: 256})
	if opts["temperature"] != float32(0.7) {
		t.Errorf("unexpected temperature %v", opts["temperature"])
	}
	if opts["num_predict"] != 256 {
		t.Errorf("unexpected num_predict %v", opts["num_predict"])
	}
}

func TestOllamaModelInfo(t *testing.T) {
	t.Parallel()

	p := NewOllamaProvider("http://localhost:11434", "llama3.2:3b")
	meta := p.ModelInfo()
	if meta.Provider != "ollama" {
		t.Errorf("unexpected provider %q", meta.Provider)
	}
	if meta.ID != "llama3.2:3b" {
		t.Errorf("unexpected model id %q", meta.ID)
	}
}
