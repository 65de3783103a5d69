package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type GeminiProvider struct {
	Model      string
	APIKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiProvider(model string, apiKey string) *GeminiProvider {
	if model == "" {
		model = "gemini-1.5-pro"
	}
	return &GeminiProvider{
		Model:  model,
		APIKey: apiKey,
	}
}

// NewGeminiProviderWithClient creates a provider with custom HTTP client and base URL (for testing).
func NewGeminiProviderWithClient(model, apiKey, baseURL string, client *http.Client) *GeminiProvider {
	p := NewGeminiProvider(model, apiKey)
	p.baseURL = baseURL
	p.httpClient = client
	return p
}

func (p *GeminiProvider) ID() string {
	return "gemini:" + p.Model
}

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"system_instruction,omitempty"`
	GenerationConfig  *geminiGenConfig  `json:"generationConfig,omitempty"`
}

type geminiGenConfig struct {
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (p *GeminiProvider) Evaluate(ctx context.Context, req Request) (*Response, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key not provided (set GEMINI_API_KEY)")
	}

	gReq := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: req.Prompt}}},
		},
		GenerationConfig: &geminiGenConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.System != "" {
		gReq.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.System}},
		}
	}
	if req.JSONMode {
		gReq.GenerationConfig.ResponseMimeType = "application/json"
	}

	body, err := json.Marshal(gReq)
	if err != nil {
		return nil, err
	}

	url := p.baseURL
	if url == "" {
		url = fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", p.Model, p.APIKey)
	}
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")

	client := p.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, transientf("gemini", "request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if retryableStatus(resp.StatusCode) {
			return nil, transientf("gemini", "API returned status: %s", resp.Status)
		}
		return nil, fmt.Errorf("Gemini API returned status: %s", resp.Status)
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return nil, malformedf("gemini", "decode response: %w", err)
	}

	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		return nil, malformedf("gemini", "API returned no candidates")
	}

	return &Response{
		Text:  gResp.Candidates[0].Content.Parts[0].Text,
		Model: p.Model,
		Usage: TokenUsage{
			InputTokens:  gResp.UsageMetadata.PromptTokenCount,
			OutputTokens: gResp.UsageMetadata.CandidatesTokenCount,
		},
	}, nil
}
