package search

import (
	"fmt"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Retry strategies.
const (
	StrategyImmediate   = "immediate"
	StrategyConstant    = "constant"
	StrategyExponential = "exponential"
)

// ValidStrategies returns the accepted retry strategy names.
func ValidStrategies() []string {
	return []string{StrategyImmediate, StrategyConstant, StrategyExponential}
}

// RetryPolicy decides the pause between a failed invocation and the next.
// Retries are never bounded in count or elapsed time; only supersession
// stops them.
type RetryPolicy struct {
	Strategy    string
	Interval    time.Duration // constant pause, or initial exponential pause
	MaxInterval time.Duration // exponential cap
}

// DefaultRetryPolicy re-issues a failed request immediately.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Strategy:    StrategyImmediate,
		Interval:    250 * time.Millisecond,
		MaxInterval: 5 * time.Second,
	}
}

// Validate reports an unknown strategy or a non-positive interval.
func (p RetryPolicy) Validate() error {
	if !slices.Contains(ValidStrategies(), p.Strategy) {
		return fmt.Errorf("unknown retry strategy %q (valid: %v)", p.Strategy, ValidStrategies())
	}
	if p.Strategy == StrategyImmediate {
		return nil
	}
	if p.Interval <= 0 {
		return fmt.Errorf("retry interval must be positive, got %v", p.Interval)
	}
	if p.Strategy == StrategyExponential && p.MaxInterval < p.Interval {
		return fmt.Errorf("retry max interval %v is below interval %v", p.MaxInterval, p.Interval)
	}
	return nil
}

// NewBackOff returns a fresh BackOff for one attempt. Unknown strategies
// fall back to immediate retry.
func (p RetryPolicy) NewBackOff() backoff.BackOff {
	switch p.Strategy {
	case StrategyConstant:
		return backoff.NewConstantBackOff(p.Interval)
	case StrategyExponential:
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = p.Interval
		b.MaxInterval = p.MaxInterval
		b.Reset()
		return b
	default:
		return &backoff.ZeroBackOff{}
	}
}
