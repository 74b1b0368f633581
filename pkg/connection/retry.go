package connection

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoAttempts is returned by Retry when attempts is not positive.
var ErrNoAttempts = errors.New("no attempts allowed")

// ConnectFunc establishes a connection.
type ConnectFunc func(ctx context.Context) error

// Retry calls fn up to attempts times, sleeping b.Next() between failed
// attempts. b is reset on success. Nil b selects NewBackoff. The last
// error is returned once attempts are exhausted; cancellation of ctx stops
// the loop early.
func Retry(ctx context.Context, b *Backoff, attempts int, fn ConnectFunc) error {
	if attempts <= 0 {
		return ErrNoAttempts
	}
	if b == nil {
		b = NewBackoff()
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			t := time.NewTimer(b.Next())
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
			case <-t.C:
			}
		}
		if err = fn(ctx); err == nil {
			b.Reset()
			return nil
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
