package resilience

import (
	"sync"
	"time"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
)

// BreakerState is the circuit breaker lifecycle state.
type BreakerState int32

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

// BreakerConfig holds circuit breaker thresholds.
type BreakerConfig struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}

// DefaultBreakerConfig opens after five consecutive failures and probes
// again after thirty seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
	}
}

// Breaker short-circuits calls to a failing upstream. One probe call is let
// through after the reset timeout; success closes the circuit again.
type Breaker struct {
	mu          sync.Mutex
	config      BreakerConfig
	state       BreakerState
	failures    int
	lastFailure time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = DefaultBreakerConfig().ResetTimeout
	}
	return &Breaker{config: config}
}

// Call runs fn unless the circuit is open.
func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == StateOpen {
		if time.Since(b.lastFailure) < b.config.ResetTimeout {
			b.mu.Unlock()
			return apperrors.NewExternalAPIError("narrative", nil)
		}
		b.state = StateHalfOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		b.lastFailure = time.Now()
		if b.failures >= b.config.FailureThreshold || b.state == StateHalfOpen {
			b.state = StateOpen
		}
		return err
	}
	b.failures = 0
	b.state = StateClosed
	return nil
}

// State reports the current circuit state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
