package adapter

import (
	"context"
	"fmt"
	"time"
)

// baseBackoff is the delay before the first retry; each further retry
// doubles it.
const baseBackoff = 500 * time.Millisecond

// Retry runs attempt up to 1+retries times with exponential backoff
// between tries. retriable decides whether a failure is worth another
// attempt; a nil retriable retries everything.
func Retry(ctx context.Context, retries int, retriable func(error) bool, attempt func(ctx context.Context) error) error {
	attempts := 1 + retries

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("adapter: context canceled: %w", err)
		}

		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * baseBackoff
			select {
			case <-ctx.Done():
				return fmt.Errorf("adapter: context canceled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = attempt(ctx)
		if lastErr == nil {
			return nil
		}
		if retriable != nil && !retriable(lastErr) {
			return fmt.Errorf("adapter: non-retriable error: %w", lastErr)
		}
	}

	return fmt.Errorf("adapter: failed after %d attempts: %w", attempts, lastErr)
}
