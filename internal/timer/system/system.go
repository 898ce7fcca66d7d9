// Package system provides the "system" timer driver: a thin wrapper
// around the wall clock, the default pacing source when netsync is
// not in play.
package system

import (
	"context"
	"time"

	"github.com/snapetech/fbplayer/internal/timer"
)

func init() {
	timer.Registry.Register("system", &Timer{})
}

// Timer implements timer.Timer against time.Now().
type Timer struct{}

func (t *Timer) Open(params string) error { return nil }

func (t *Timer) Start() (timer.Time, error) { return t.Read() }

func (t *Timer) Read() (timer.Time, error) {
	now := time.Now()
	return timer.Time{Sec: now.Unix(), Nsec: int64(now.Nanosecond())}, nil
}

// Wait blocks until deadline, using a time.Timer armed for the
// remaining duration so it wakes promptly when ctx is cancelled rather
// than busy-polling — the Go substitute for sem_timedwait on a
// per-timer semaphore posted from a signal handler.
func (t *Timer) Wait(ctx context.Context, deadline timer.Time) error {
	now, err := t.Read()
	if err != nil {
		return err
	}
	d := time.Duration(deadline.Sub(now))
	if d <= 0 {
		return nil
	}
	tm := time.NewTimer(d)
	defer tm.Stop()
	select {
	case <-tm.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Timer) Close() error { return nil }
