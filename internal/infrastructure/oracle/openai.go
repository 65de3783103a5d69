package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type OpenAIProvider struct {
	Model      string
	APIKey     string
	baseURL    string
	httpClient *http.Client
}

func NewOpenAIProvider(model string, apiKey string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		Model:  model,
		APIKey: apiKey,
	}
}

// NewOpenAIProviderWithClient creates a provider with custom HTTP client and base URL (for testing).
func NewOpenAIProviderWithClient(model, apiKey, baseURL string, client *http.Client) *OpenAIProvider {
	p := NewOpenAIProvider(model, apiKey)
	p.baseURL = baseURL
	p.httpClient = client
	return p
}

func (p *OpenAIProvider) ID() string {
	return "openai:" + p.Model
}

type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	Temperature    float32               `json:"temperature"`
	MaxTokens      int                   `json:"max_completion_tokens,omitempty"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *OpenAIProvider) Evaluate(ctx context.Context, req Request) (*Response, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not provided (set OPENAI_API_KEY)")
	}

	messages := []openAIMessage{}
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})

	oReq := openAIRequest{
		Model:       p.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		oReq.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(oReq)
	if err != nil {
		return nil, err
	}

	url := p.baseURL
	if url == "" {
		url = "https://api.openai.com/v1/chat/completions"
	}
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.APIKey)

	client := p.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, transientf("openai", "request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if retryableStatus(resp.StatusCode) {
			return nil, transientf("openai", "API returned status: %s", resp.Status)
		}
		return nil, fmt.Errorf("OpenAI API returned status: %s", resp.Status)
	}

	var oResp openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return nil, malformedf("openai", "decode response: %w", err)
	}

	if len(oResp.Choices) == 0 {
		return nil, malformedf("openai", "API returned no choices")
	}

	return &Response{
		Text:  oResp.Choices[0].Message.Content,
		Model: p.Model,
		Usage: TokenUsage{
			InputTokens:  oResp.Usage.PromptTokens,
			OutputTokens: oResp.Usage.CompletionTokens,
		},
	}, nil
}

// retryableStatus marks rate limiting and server-side failures as transient.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500
}
