// Package scheduler implements the real-time display loop, a direct
// port of disp_thread (omapfbplay.c): wait for the pool to fill once at
// startup, then repeatedly pop a frame off the display FIFO, pace
// against a pluggable timer.Timer by a fixed frame period, present it,
// and catch up without ever paying back accumulated lag -- a deadline
// that has already passed is snapped to "now" rather than chased.
package scheduler

import (
	"context"

	"github.com/snapetech/fbplayer/internal/display"
	"github.com/snapetech/fbplayer/internal/fberrors"
	"github.com/snapetech/fbplayer/internal/frame"
	"github.com/snapetech/fbplayer/internal/logging"
	"github.com/snapetech/fbplayer/internal/pixconv"
	"github.com/snapetech/fbplayer/internal/pool"
	"github.com/snapetech/fbplayer/internal/timer"
)

// FPSReportInterval is the number of presented frames between fps log
// lines, matching the reference engine's hardcoded 50.
const FPSReportInterval = 50

// Scheduler paces frame presentation against a Timer.
type Scheduler struct {
	Pool    *pool.Pool
	Display display.Display
	Timer   timer.Timer

	// Pixconv and Scratch are both set, or both nil. When set, every
	// frame popped off the display FIFO is converted into Scratch
	// before being shown, and the source frame is released back to the
	// pool immediately afterward -- the destination buffer never
	// participates in pool back-pressure, since at most one
	// conversion is ever in flight (Show is synchronous).
	Pixconv pixconv.Pixconv
	Scratch *frame.Frame

	// FrameDurationNS is the nominal inter-frame interval in
	// nanoseconds (den/num of the stream's frame rate, scaled to ns).
	FrameDurationNS int64

	// OnFPS, if set, is called every FPSReportInterval frames with the
	// measured fps and the current display queue depth.
	OnFPS func(fps int, queueDepth int)
}

// Run blocks until ctx is cancelled or an unrecoverable error occurs,
// presenting frames as they are posted to the pool's display queue. On
// return it has already drained and released any frames left queued.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.Pool.Drain()

	if err := s.awaitWarmup(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	tstart, err := s.Timer.Start()
	if err != nil {
		return fberrors.New("scheduler.Run", fberrors.DriverOpenFailed, err)
	}
	ftime := tstart
	t1 := tstart
	nf1, nf2 := 0, 0

	for {
		if err := s.Pool.WaitDisplay(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		f := s.Pool.PopDisplay()

		show := f
		if s.Pixconv != nil {
			if err := s.Pixconv.Convert(s.Scratch, f); err != nil {
				s.Pool.Release(f)
				return fberrors.New("scheduler.Run", fberrors.DecodeError, err)
			}
			s.Pool.Release(f)
			show = s.Scratch
		}

		if err := s.Timer.Wait(ctx, ftime); err != nil {
			if show == f {
				s.Pool.Release(f)
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := s.Display.Show(show); err != nil {
			logging.RateLimited("scheduler.show", "scheduler: show failed: %v", err)
		}
		if show == f {
			s.Pool.Release(f)
		}

		nf1++
		if nf1-nf2 == FPSReportInterval {
			t2, _ := s.Timer.Read()
			fps := (nf1 - nf2) * 1000 / int(max64(timer.DiffMS(t2, t1), 1))
			if s.OnFPS != nil {
				s.OnFPS(fps, s.Pool.DisplayDepth())
			}
			nf2 = nf1
			t1 = t2
		}

		ftime = ftime.AddNS(s.FrameDurationNS)

		now, _ := s.Timer.Read()
		if now.After(ftime) {
			ftime = now
		}
	}
}

// awaitWarmup blocks until the pool's free semaphore has been fully
// drawn down at least once, i.e. every frame buffer has been claimed by
// the decoder, matching disp_thread's pre-loop busy-wait on free_sem.
func (s *Scheduler) awaitWarmup(ctx context.Context) error {
	for !s.Pool.FreeCapacityExhausted() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := sleep(ctx, warmupPollInterval); err != nil {
			return err
		}
	}
	return nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
