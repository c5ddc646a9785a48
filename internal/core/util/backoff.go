package util

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryBounded retries op with exponential backoff, bounded so a single
// caller (e.g. one channel-health tick's DNS refresh) can never retry past
// maxElapsed regardless of how flaky the upstream is.
func RetryBounded(ctx context.Context, maxElapsed time.Duration, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, op()
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(maxElapsed))

	return err
}
