// Package retry runs an operation under a bounded retry policy with
// exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/grafana/dskit/backoff"
	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultMaxAttempts = 10
	DefaultMinBackoff  = time.Second
	DefaultMaxBackoff  = 30 * time.Second
)

// Attempt describes one failed try.
type Attempt struct {
	Number      int // 1-based
	RetriesLeft int
	Err         error
}

// Policy configures Do. Zero values fall back to the defaults.
type Policy struct {
	MaxAttempts int
	MinBackoff  time.Duration
	MaxBackoff  time.Duration
	// OnFailure is called after every failed attempt, including the last one.
	OnFailure func(ctx context.Context, attempt Attempt)
}

// DefaultPolicy returns the policy used for file downloads.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		MinBackoff:  DefaultMinBackoff,
		MaxBackoff:  DefaultMaxBackoff,
	}
}

func (p Policy) backoffConfig() backoff.Config {
	cfg := backoff.Config{
		MinBackoff: p.MinBackoff,
		MaxBackoff: p.MaxBackoff,
		MaxRetries: p.MaxAttempts,
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxAttempts
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = DefaultMinBackoff
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = cfg.MinBackoff
	}
	return cfg
}

// Do calls fn until it succeeds, the attempts are exhausted or ctx is done.
// Every error returned by fn is retried. The returned error is the last one
// returned by fn, or the context error when fn never ran.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg := p.backoffConfig()
	b := backoff.New(ctx, cfg)

	var zero T
	var lastErr error
	for b.Ongoing() {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}

		number := b.NumRetries() + 1
		if p.OnFailure != nil {
			p.OnFailure(ctx, Attempt{
				Number:      number,
				RetriesLeft: cfg.MaxRetries - number,
				Err:         err,
			})
		}

		b.Wait()
	}

	if lastErr == nil {
		return zero, goerr.Wrap(ctx.Err(), "retry canceled before first attempt")
	}
	return zero, lastErr
}
