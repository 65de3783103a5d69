package oracle

import (
	"context"
	"strings"
)

// MockProvider returns clean results without any network access. Useful for
// dry runs and demos: every document comes back with zero flags and zero
// skill tags.
type MockProvider struct {
	Model string
}

func (m *MockProvider) ID() string {
	return "mock:" + m.Model
}

func (m *MockProvider) Evaluate(ctx context.Context, req Request) (*Response, error) {
	text := `{"flags": []}`
	if strings.Contains(req.Prompt, "skill_tags") {
		text = `{"skill_tags": []}`
	}
	return &Response{
		Text:  text,
		Model: "mock",
	}, nil
}
