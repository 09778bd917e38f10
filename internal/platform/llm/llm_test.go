package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewProviderSelection(t *testing.T) {
	p, err := New(Config{Provider: "none"})
	if err != nil || p != nil {
		t.Errorf("New(none) = %v, %v; want nil, nil", p, err)
	}

	p, err = New(Config{Provider: "openai", APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name() = %q, want openai", p.Name())
	}

	p, err = New(Config{Provider: "anthropic", APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("Name() = %q, want anthropic", p.Name())
	}

	if _, err := New(Config{Provider: "bard"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "the claim looks fine"}},
			},
		})
	}))
	defer srv.Close()

	p, err := New(Config{Provider: "openai", APIKey: "test-key", BaseURL: srv.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatal(err)
	}

	text, err := p.Generate(context.Background(), "analyze this claim", "you are an adjudicator")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if text != "the claim looks fine" {
		t.Errorf("Generate() = %q", text)
	}
}

func TestOpenAIGenerateStructured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "```json\n{\"claim_id\": \"CLM-1\"}\n```"}},
			},
		})
	}))
	defer srv.Close()

	p, _ := New(Config{Provider: "openai", APIKey: "k", BaseURL: srv.URL})
	out, err := p.GenerateStructured(context.Background(), "extract", "")
	if err != nil {
		t.Fatalf("GenerateStructured() error: %v", err)
	}
	if out["claim_id"] != "CLM-1" {
		t.Errorf("claim_id = %v", out["claim_id"])
	}
}

func TestOpenAIAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "rate limited"},
		})
	}))
	defer srv.Close()

	p, _ := New(Config{Provider: "openai", APIKey: "k", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), "prompt", "")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %T", err)
	}
	if genErr.Provider != "openai" {
		t.Errorf("Provider = %q", genErr.Provider)
	}
}

func TestAnthropicGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Error("anthropic-version header missing")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "rejected for exclusions"}},
		})
	}))
	defer srv.Close()

	p, _ := New(Config{Provider: "anthropic", APIKey: "test-key", BaseURL: srv.URL})
	text, err := p.Generate(context.Background(), "prompt", "system")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if text != "rejected for exclusions" {
		t.Errorf("Generate() = %q", text)
	}
}

func TestAnthropicStructuredBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "no json here"}},
		})
	}))
	defer srv.Close()

	p, _ := New(Config{Provider: "anthropic", APIKey: "k", BaseURL: srv.URL})
	_, err := p.GenerateStructured(context.Background(), "prompt", "")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	p, _ := New(Config{Provider: "openai", APIKey: "k", BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, "prompt", "")
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestParseJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantKey string
		wantErr bool
	}{
		{"plain", `{"a": 1}`, "a", false},
		{"fenced", "```json\n{\"a\": 1}\n```", "a", false},
		{"with prose", "Here you go: {\"a\": 1}", "a", false},
		{"no object", "nothing structured", "", true},
		{"broken", `{"a": `, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := parseJSONObject("test", tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if _, ok := out[tt.wantKey]; !ok {
					t.Errorf("missing key %q in %v", tt.wantKey, out)
				}
			}
		})
	}
}
