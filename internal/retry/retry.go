// Package retry wraps exponential backoff in a bounded policy object shared
// by adapters that talk to flaky upstreams.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retried operation: MaxAttempts retries after the first
// try, delays growing as BaseDelay*2^attempt with +/-Jitter randomization.
type Policy struct {
	MaxAttempts uint64
	BaseDelay   time.Duration
	Jitter      float64
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 2 * time.Second, Jitter: 0.1}
}

// Run executes op under the policy. Sleeping between attempts is scoped to
// ctx, so a canceled caller stops waiting immediately. Wrap an error with
// backoff.Permanent to stop retrying early.
func (p Policy) Run(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = p.Jitter
	b.MaxElapsedTime = 0

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, p.MaxAttempts), ctx))
}
