package narrative

import (
	"context"

	"github.com/pathlight-labs/pathlight/internal/resilience"
)

// ResilientProvider wraps a Provider with retry and a circuit breaker.
// Generation requests are idempotent, so retrying a flaky inference server
// is safe; a persistently down server trips the breaker and callers fall
// back immediately instead of waiting out timeouts.
type ResilientProvider struct {
	inner   Provider
	retry   resilience.RetryConfig
	breaker *resilience.Breaker
}

// NewResilientProvider wraps inner with default retry and breaker settings.
func NewResilientProvider(inner Provider) *ResilientProvider {
	return &ResilientProvider{
		inner:   inner,
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewBreaker(resilience.DefaultBreakerConfig()),
	}
}

func (p *ResilientProvider) Generate(ctx context.Context, prompt string) (string, error) {
	var out string
	err := p.breaker.Call(func() error {
		return resilience.Retry(ctx, p.retry, func() error {
			raw, err := p.inner.Generate(ctx, prompt)
			if err != nil {
				return err
			}
			out = raw
			return nil
		})
	})
	return out, err
}
