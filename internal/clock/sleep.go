// Package clock provides context-aware waiting and retry delays.
package clock

import (
	"context"
	"time"
)

// SleepWithContext waits for d or until ctx is done.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	_, err := WaitWithContext(ctx, d, nil)
	return err
}

// WaitWithContext waits for d, a signal on wake or the end of ctx, whichever
// comes first. woken reports that wake ended the wait. A nil wake channel
// never fires.
func WaitWithContext(ctx context.Context, d time.Duration, wake <-chan struct{}) (woken bool, err error) {
	if d <= 0 {
		return false, ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-wake:
		return true, nil
	case <-timer.C:
		return false, nil
	}
}
