package oracle

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

// ResilientProvider wraps a provider with a bounded retry budget and a
// per-call timeout. Transient failures (timeouts, rate limiting, 5xx) are
// retried with exponential backoff and never escape; once the budget is
// spent the failure surfaces as KindExhausted. Permanent failures, including
// malformed responses, are returned immediately without burning retries.
type ResilientProvider struct {
	inner       Provider
	maxAttempts int
	baseDelay   time.Duration
	callTimeout time.Duration
}

// ResilientConfig tunes the retry and timeout budget.
type ResilientConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	CallTimeout time.Duration
}

// DefaultResilientConfig matches the quota profile of a batch review run:
// a few patient retries, each call bounded well under the run timeout.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		CallTimeout: 120 * time.Second,
	}
}

func NewResilientProvider(inner Provider, cfg ResilientConfig) *ResilientProvider {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultResilientConfig().MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultResilientConfig().BaseDelay
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultResilientConfig().CallTimeout
	}
	return &ResilientProvider{
		inner:       inner,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		callTimeout: cfg.CallTimeout,
	}
}

func (p *ResilientProvider) ID() string {
	return p.inner.ID()
}

func (p *ResilientProvider) Evaluate(ctx context.Context, req Request) (*Response, error) {
	r := retry.New[*Response](retry.Config{
		MaxAttempts:   p.maxAttempts,
		InitialDelay:  p.baseDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[*Response](timeout.Config{
		DefaultTimeout: p.callTimeout,
	})

	// fortify's retry loop retries every error it sees; permanent failures
	// are parked in permErr and reported as a clean stop instead.
	var permErr error
	resp, err := r.Do(ctx, func(ctx context.Context) (*Response, error) {
		if ctx.Err() != nil {
			permErr = ctx.Err()
			return nil, nil
		}
		resp, callErr := t.Execute(ctx, p.callTimeout, func(ctx context.Context) (*Response, error) {
			return p.inner.Evaluate(ctx, req)
		})
		if callErr != nil && !IsTransient(callErr) {
			permErr = callErr
			return nil, nil
		}
		return resp, callErr
	})

	if permErr != nil {
		return nil, permErr
	}
	if err != nil {
		return nil, &Error{Kind: KindExhausted, Op: p.inner.ID(), Err: err}
	}
	return resp, nil
}
