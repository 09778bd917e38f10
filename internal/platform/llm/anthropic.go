package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	defaultAnthropicModel   = "claude-3-opus-20240229"
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 4096
)

type anthropicProvider struct {
	model       string
	apiKey      string
	baseURL     string
	temperature float64
	client      *http.Client
}

func newAnthropic(cfg Config, client *http.Client) *anthropicProvider {
	p := &anthropicProvider{
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		temperature: cfg.Temperature,
		client:      client,
	}
	if p.model == "" {
		p.model = defaultAnthropicModel
	}
	if p.baseURL == "" {
		p.baseURL = defaultAnthropicBaseURL
	}
	return p
}

func (p *anthropicProvider) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model       string `json:"model"`
	MaxTokens   int    `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	System      string `json:"system,omitempty"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *anthropicProvider) complete(ctx context.Context, prompt, systemPrompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:       p.model,
		MaxTokens:   anthropicMaxTokens,
		Temperature: p.temperature,
		System:      systemPrompt,
	}
	reqBody.Messages = append(reqBody.Messages, struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{Role: "user", Content: prompt})

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &GenerationError{Provider: p.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", &GenerationError{Provider: p.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &GenerationError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GenerationError{Provider: p.Name(), Err: err}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &GenerationError{Provider: p.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", &GenerationError{Provider: p.Name(), Err: fmt.Errorf("api error: %s", msg)}
	}
	if len(parsed.Content) == 0 {
		return "", &GenerationError{Provider: p.Name(), Err: fmt.Errorf("empty content in response")}
	}

	return parsed.Content[0].Text, nil
}

func (p *anthropicProvider) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return p.complete(ctx, prompt, systemPrompt)
}

func (p *anthropicProvider) GenerateStructured(ctx context.Context, prompt, systemPrompt string) (map[string]interface{}, error) {
	content, err := p.complete(ctx, prompt+"\n\nPlease respond with valid JSON only.", systemPrompt)
	if err != nil {
		return nil, err
	}
	return parseJSONObject(p.Name(), content)
}
