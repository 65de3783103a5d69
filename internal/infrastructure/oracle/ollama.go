package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
)

type OllamaProvider struct {
	Model   string
	baseURL string
}

func NewOllamaProvider(model string) *OllamaProvider {
	if model == "" {
		model = "llama3"
	}
	return &OllamaProvider{Model: model}
}

// NewOllamaProviderWithURL creates a provider pointing at a custom endpoint (for testing).
func NewOllamaProviderWithURL(model, baseURL string) *OllamaProvider {
	p := NewOllamaProvider(model)
	p.baseURL = baseURL
	return p
}

func (p *OllamaProvider) ID() string {
	return "ollama:" + p.Model
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

var safeModelName = regexp.MustCompile(`^[a-zA-Z0-9:._-]+$`)

func (p *OllamaProvider) Evaluate(ctx context.Context, req Request) (*Response, error) {
	if !safeModelName.MatchString(p.Model) {
		return nil, fmt.Errorf("invalid model name: %s", p.Model)
	}

	url := p.baseURL
	if url == "" {
		url = "http://localhost:11434/api/generate"
	}

	format := ""
	if req.JSONMode {
		format = "json"
	}

	body, err := json.Marshal(ollamaRequest{
		Model:  p.Model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
		Format: format,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, transientf("ollama", "request failed (is ollama running?): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if retryableStatus(resp.StatusCode) {
			return nil, transientf("ollama", "API returned status: %s", resp.Status)
		}
		return nil, fmt.Errorf("Ollama API returned status: %s", resp.Status)
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return nil, malformedf("ollama", "decode response: %w", err)
	}

	return &Response{
		Text:  oResp.Response,
		Model: p.Model,
	}, nil
}
