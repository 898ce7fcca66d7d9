package scheduler

import (
	"context"
	"time"
)

// warmupPollInterval matches disp_thread's 100ms usleep while waiting
// for the pool to fill.
const warmupPollInterval = 100 * time.Millisecond

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
