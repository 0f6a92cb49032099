package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization = %s", r.Header.Get("Authorization"))
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "TTHERM_00321680") {
			t.Errorf("prompt does not name the gene: %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: "assistant", Content: content},
			}},
			Usage: openai.Usage{TotalTokens: 120},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRequest() AnnotateRequest {
	return AnnotateRequest{
		GeneID:      "TTHERM_00321680",
		Mode:        "blastp",
		Definitions: []string{"kinesin-like protein KIF1A", "kinesin heavy chain"},
		Accessions:  []string{"XP_001234.1", "XP_005678.2"},
	}
}

func TestOpenAIAnnotate(t *testing.T) {
	srv := chatServer(t, "Likely a kinesin motor (XP_001234.1).")
	p, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	resp, err := p.Annotate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}
	if resp.Note != "Likely a kinesin motor (XP_001234.1)." {
		t.Errorf("Note = %q", resp.Note)
	}
	if len(resp.CitedAccessions) != 1 || resp.CitedAccessions[0] != "XP_001234.1" {
		t.Errorf("CitedAccessions = %v", resp.CitedAccessions)
	}
	if resp.Model != openai.GPT4oMini || resp.TokensUsed != 120 {
		t.Errorf("model/tokens = %s / %d", resp.Model, resp.TokensUsed)
	}
}

func TestOpenAIAnnotateRejectsUnknownAccession(t *testing.T) {
	srv := chatServer(t, "Similar to NP_999999.1.")
	p, _ := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 5})

	if _, err := p.Annotate(context.Background(), testRequest()); err == nil {
		t.Fatal("expected error for accession outside the allowlist")
	}
}

func TestOpenAIAnnotateAPIError(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusTooManyRequests} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error": {"message": "failure", "type": "server_error"}}`))
		}))
		p, _ := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 5})
		if _, err := p.Annotate(context.Background(), testRequest()); err == nil {
			t.Errorf("status %d: expected error", status)
		}
		srv.Close()
	}
}

func TestOpenAIAnnotateHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, _ := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 5})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := p.Annotate(ctx, testRequest()); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestNewProvider(t *testing.T) {
	if p, err := NewProvider(Config{}); p != nil || err != nil {
		t.Errorf("empty provider = %v, %v", p, err)
	}
	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Error("expected error for missing API key")
	}
	p, err := NewProvider(Config{Provider: "Ollama"})
	if err != nil || p.Name() != "ollama" {
		t.Errorf("ollama provider = %v, %v", p, err)
	}
	if _, err := NewProvider(Config{Provider: "gpt-local"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestBuildPromptLimitsDefinitions(t *testing.T) {
	req := testRequest()
	for i := 0; i < 40; i++ {
		req.Definitions = append(req.Definitions, "dynein light chain")
	}
	prompt := BuildPrompt(req)
	if !strings.Contains(prompt, "... and 17 more") {
		t.Errorf("prompt not truncated:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- XP_005678.2") {
		t.Error("allowlist missing from prompt")
	}
}
