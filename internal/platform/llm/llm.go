// Package llm wraps the text-generation backends the adjudication pipeline
// delegates free-text work to. Callers treat every failure as a
// *GenerationError and fall back to their deterministic templates; a provider
// error is never fatal to a pipeline run.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider is the capability interface for a text-generation backend.
type Provider interface {
	// Generate returns free text for the given prompt.
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
	// GenerateStructured returns a JSON object for the given prompt.
	GenerateStructured(ctx context.Context, prompt, systemPrompt string) (map[string]interface{}, error)
	// Name identifies the backend in logs.
	Name() string
}

// GenerationError is returned by all Provider implementations. Callers match
// on it to trigger their fallback path.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Config selects and configures a backend. The caller passes it explicitly;
// this package never reads the process environment.
type Config struct {
	Provider    string // "openai", "anthropic", or "none"
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
}

// New builds the configured provider. Provider "none" (or empty) returns
// (nil, nil): a nil Provider means callers go straight to their fallbacks.
func New(cfg Config) (Provider, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, nil
	case "openai":
		return newOpenAI(cfg, client), nil
	case "anthropic":
		return newAnthropic(cfg, client), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}

// parseJSONObject extracts a JSON object from model output, tolerating
// markdown code fences and leading prose.
func parseJSONObject(provider, content string) (map[string]interface{}, error) {
	text := strings.TrimSpace(content)
	if i := strings.Index(text, "```"); i >= 0 {
		text = text[i+3:]
		text = strings.TrimPrefix(text, "json")
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, &GenerationError{Provider: provider, Err: fmt.Errorf("no JSON object in response")}
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, &GenerationError{Provider: provider, Err: fmt.Errorf("decode response JSON: %w", err)}
	}
	return out, nil
}
