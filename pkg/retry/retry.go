package retry

import (
	"context"
	"time"
)

// Do calls fn and retries it up to retries extra times, pausing between
// attempts. The last result wins. Context cancellation stops retrying
// and returns the most recent error.
func Do[A any](ctx context.Context, retries int, pause time.Duration, fn func() (A, error)) (A, error) {
	result, err := fn()
	for left := retries; left > 0 && err != nil; left-- {
		select {
		case <-ctx.Done():
			return result, err
		case <-time.After(pause):
		}

		result, err = fn()
	}

	return result, err
}
