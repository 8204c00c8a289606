package ai

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	defaultRetryBase     = 500 * time.Millisecond
	defaultRetryMaxDelay = 10 * time.Second
	defaultMaxRetries    = 3
)

// RetryPolicy bounds transport retries of a provider. MaxRetries counts the
// attempts after the first one.
type RetryPolicy struct {
	MaxRetries uint64
	Base       time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy returns the policy providers use when none is given.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: defaultMaxRetries,
		Base:       defaultRetryBase,
		MaxDelay:   defaultRetryMaxDelay,
	}
}

func (p RetryPolicy) backoff() retry.Backoff {
	base := p.Base
	if base <= 0 {
		base = defaultRetryBase
	}

	b := retry.NewExponential(base)
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	return retry.WithMaxRetries(p.MaxRetries, b)
}

// Call runs fn until it succeeds, fails with an error retryable rejects, or
// the policy is exhausted. The last error is returned unwrapped.
func Call(ctx context.Context, policy RetryPolicy, log *zap.Logger, retryable func(error) bool, fn func(context.Context) (string, error)) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		output  string
		attempt int
	)
	err := retry.Do(ctx, policy.backoff(), func(ctx context.Context) error {
		attempt++
		text, err := fn(ctx)
		if err == nil {
			output = text
			return nil
		}
		if retryable != nil && retryable(err) {
			log.Warn("model request failed, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return "", err
	}
	return output, nil
}
