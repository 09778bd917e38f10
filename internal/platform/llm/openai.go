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
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4-turbo-preview"
)

type openAIProvider struct {
	model       string
	apiKey      string
	baseURL     string
	temperature float64
	client      *http.Client
}

func newOpenAI(cfg Config, client *http.Client) *openAIProvider {
	p := &openAIProvider{
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		temperature: cfg.Temperature,
		client:      client,
	}
	if p.model == "" {
		p.model = defaultOpenAIModel
	}
	if p.baseURL == "" {
		p.baseURL = defaultOpenAIBaseURL
	}
	return p
}

func (p *openAIProvider) Name() string { return "openai" }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *openAIProvider) complete(ctx context.Context, prompt, systemPrompt string, jsonMode bool) (string, error) {
	reqBody := openAIRequest{
		Model:       p.model,
		Temperature: p.temperature,
	}
	if systemPrompt != "" {
		reqBody.Messages = append(reqBody.Messages, openAIMessage{Role: "system", Content: systemPrompt})
	}
	reqBody.Messages = append(reqBody.Messages, openAIMessage{Role: "user", Content: prompt})
	if jsonMode {
		reqBody.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &GenerationError{Provider: p.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", &GenerationError{Provider: p.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &GenerationError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GenerationError{Provider: p.Name(), Err: err}
	}

	var parsed openAIResponse
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
	if len(parsed.Choices) == 0 {
		return "", &GenerationError{Provider: p.Name(), Err: fmt.Errorf("empty choices in response")}
	}

	return parsed.Choices[0].Message.Content, nil
}

func (p *openAIProvider) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return p.complete(ctx, prompt, systemPrompt, false)
}

func (p *openAIProvider) GenerateStructured(ctx context.Context, prompt, systemPrompt string) (map[string]interface{}, error) {
	content, err := p.complete(ctx, prompt+"\n\nPlease respond with valid JSON only.", systemPrompt, true)
	if err != nil {
		return nil, err
	}
	return parseJSONObject(p.Name(), content)
}
