package bridge

import (
	"context"
	"time"
)

const (
	backoffStep = 2 * time.Second
	backoffCap  = 8 * time.Second
)

// Backoff is the wait before retrying a rate-limited request. attempt starts at 1.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := backoffStep * time.Duration(attempt)
	if delay > backoffCap {
		return backoffCap
	}
	return delay
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
