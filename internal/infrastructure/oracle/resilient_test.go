package oracle_test

import (
	"context"
	"testing"
	"time"

	"github.com/storycurator/curator/internal/infrastructure/oracle"
)

type scriptedProvider struct {
	calls   int
	replies []func() (*oracle.Response, error)
}

func (s *scriptedProvider) ID() string { return "scripted" }

func (s *scriptedProvider) Evaluate(ctx context.Context, req oracle.Request) (*oracle.Response, error) {
	idx := s.calls
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	s.calls++
	return s.replies[idx]()
}

func transientReply() (*oracle.Response, error) {
	return nil, &oracle.Error{Kind: oracle.KindTransient, Op: "test", Err: context.DeadlineExceeded}
}

func malformedReply() (*oracle.Response, error) {
	return nil, &oracle.Error{Kind: oracle.KindMalformedResponse, Op: "test"}
}

func okReply() (*oracle.Response, error) {
	return &oracle.Response{Text: `{"flags": []}`, Model: "test"}, nil
}

func fastConfig() oracle.ResilientConfig {
	return oracle.ResilientConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		CallTimeout: time.Second,
	}
}

func TestResilientProvider_RetriesTransientThenSucceeds(t *testing.T) {
	inner := &scriptedProvider{replies: []func() (*oracle.Response, error){
		transientReply,
		transientReply,
		okReply,
	}}
	p := oracle.NewResilientProvider(inner, fastConfig())

	resp, err := p.Evaluate(context.Background(), oracle.Request{Prompt: "review"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if resp.Text != `{"flags": []}` {
		t.Errorf("response text = %q", resp.Text)
	}
	if inner.calls != 3 {
		t.Errorf("inner called %d times, want 3", inner.calls)
	}
}

func TestResilientProvider_ExhaustsRetryBudget(t *testing.T) {
	inner := &scriptedProvider{replies: []func() (*oracle.Response, error){transientReply}}
	p := oracle.NewResilientProvider(inner, fastConfig())

	_, err := p.Evaluate(context.Background(), oracle.Request{Prompt: "review"})
	if err == nil {
		t.Fatal("expected error after budget spent")
	}
	if !oracle.IsKind(err, oracle.KindExhausted) {
		t.Errorf("error = %v, want exhausted kind", err)
	}
}

func TestResilientProvider_MalformedIsNotRetried(t *testing.T) {
	inner := &scriptedProvider{replies: []func() (*oracle.Response, error){malformedReply}}
	p := oracle.NewResilientProvider(inner, fastConfig())

	_, err := p.Evaluate(context.Background(), oracle.Request{Prompt: "review"})
	if err == nil {
		t.Fatal("expected malformed error")
	}
	if !oracle.IsKind(err, oracle.KindMalformedResponse) {
		t.Errorf("error = %v, want malformed kind", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, malformed responses must not be retried", inner.calls)
	}
}

func TestResilientProvider_CancelledContext(t *testing.T) {
	inner := &scriptedProvider{replies: []func() (*oracle.Response, error){okReply}}
	p := oracle.NewResilientProvider(inner, fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Evaluate(ctx, oracle.Request{Prompt: "review"})
	if err == nil {
		t.Fatal("expected context error")
	}
}
