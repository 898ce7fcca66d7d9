package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/snapetech/fbplayer/internal/display/memsink"
	"github.com/snapetech/fbplayer/internal/driver"
	"github.com/snapetech/fbplayer/internal/frame"
	"github.com/snapetech/fbplayer/internal/pool"
	"github.com/snapetech/fbplayer/internal/timer/system"
)

func newTestPool(t *testing.T, n int) *pool.Pool {
	t.Helper()
	frames := make([]*frame.Frame, n)
	for i := range frames {
		frames[i] = &frame.Frame{Virt: [3][]byte{make([]byte, 16)}}
	}
	p, err := pool.New(frames)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSchedulerShowsPostedFrames(t *testing.T) {
	p := newTestPool(t, 4)
	sink := &memsink.Sink{}
	if _, err := sink.Open(frame.Format{}, driver.Caps(0), ""); err != nil {
		t.Fatal(err)
	}

	tmr := &system.Timer{}
	if err := tmr.Open(""); err != nil {
		t.Fatal(err)
	}

	sched := &Scheduler{
		Pool:            p,
		Display:         sink,
		Timer:           tmr,
		FrameDurationNS: int64(1 * time.Millisecond),
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Prime the pool to capacity-1 so warmup clears immediately, then
	// post a couple of frames for the scheduler to present.
	var posted []*frame.Frame
	for i := 0; i < 3; i++ {
		f, err := p.Acquire(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		posted = append(posted, f)
	}
	for _, f := range posted {
		p.Post(f)
	}

	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for sink.Shown() < len(posted) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if sink.Shown() != len(posted) {
		t.Fatalf("shown = %d, want %d", sink.Shown(), len(posted))
	}
}

func TestSchedulerDrainsOnCancel(t *testing.T) {
	p := newTestPool(t, 4)
	sink := &memsink.Sink{}
	sink.Open(frame.Format{}, driver.Caps(0), "")
	tmr := &system.Timer{}
	tmr.Open("")

	sched := &Scheduler{Pool: p, Display: sink, Timer: tmr, FrameDurationNS: int64(time.Millisecond)}

	// Queue one frame and drop the decode-side reference, as the
	// orchestrator's pump does, so the display queue holds the only one.
	f, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	p.Post(f)
	p.Release(f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sched.Run(ctx); err != nil {
		t.Fatalf("Run returned %v, want nil on cancellation", err)
	}
	if d := p.DisplayDepth(); d != 0 {
		t.Fatalf("display depth after Run = %d, want 0", d)
	}
	if f.Refs != 0 {
		t.Fatalf("refs after Run = %d, want 0", f.Refs)
	}
}
