// Package oracle adapts external classification services for the review
// engine. Providers carry the transport; the response parsers in schema.go
// enforce the structured-response contract so nothing unvalidated flows past
// this boundary.
package oracle

import "context"

// Request is one classification call: a tagged document plus either one
// rubric category's instructions or the full skill taxonomy.
type Request struct {
	DocumentID  string
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	JSONMode    bool
}

// Response is the oracle's raw answer. The text is untrusted until it has
// passed schema validation.
type Response struct {
	Text  string
	Model string
	Usage TokenUsage
}

// TokenUsage tracks per-call quota consumption.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is the interface for all oracle backends. Each Evaluate call
// consumes one unit of external quota; providers do not rate-limit beyond
// their own timeouts. Global admission control belongs to the orchestrator.
type Provider interface {
	ID() string
	Evaluate(ctx context.Context, req Request) (*Response, error)
}
