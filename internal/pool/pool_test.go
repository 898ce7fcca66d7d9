package pool

import (
	"context"
	"testing"
	"time"

	"github.com/snapetech/fbplayer/internal/frame"
)

func newFrames(n int) []*frame.Frame {
	fs := make([]*frame.Frame, n)
	for i := range fs {
		fs[i] = &frame.Frame{}
	}
	return fs
}

func TestNewSeedsOffByOne(t *testing.T) {
	p, err := New(newFrames(4))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 3; i++ {
		if _, err := p.Acquire(ctx); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	if _, err := p.Acquire(ctx2); err == nil {
		t.Fatalf("expected 4th acquire to block on the withheld slot")
	}
}

func TestAcquireReleaseRoundTrip(t *testing.T) {
	p, err := New(newFrames(3))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	f, err := p.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if f.Refs != 1 {
		t.Fatalf("refs = %d, want 1", f.Refs)
	}

	p.Release(f)
	if f.Refs != 0 {
		t.Fatalf("refs after release = %d, want 0", f.Refs)
	}

	f2, err := p.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if f2 != f {
		t.Fatalf("expected freed frame to be recycled")
	}
}

func TestPostAlwaysSignals(t *testing.T) {
	p, err := New(newFrames(4))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	f, err := p.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	p.Post(f)

	// A single posted frame on an otherwise-empty FIFO must be
	// immediately observable: the fixed disp-sem behavior, unlike the
	// reference engine's "only signal when count > 1" guard.
	waitCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := p.WaitDisplay(waitCtx); err != nil {
		t.Fatalf("WaitDisplay: %v", err)
	}

	got := p.PopDisplay()
	if got != f {
		t.Fatalf("popped wrong frame")
	}
}

func TestDisplayFIFOOrder(t *testing.T) {
	p, err := New(newFrames(5))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	var posted []*frame.Frame
	for i := 0; i < 3; i++ {
		f, err := p.Acquire(ctx)
		if err != nil {
			t.Fatal(err)
		}
		posted = append(posted, f)
		p.Post(f)
	}

	for i, want := range posted {
		if err := p.WaitDisplay(ctx); err != nil {
			t.Fatal(err)
		}
		got := p.PopDisplay()
		if got != want {
			t.Fatalf("pop %d: got frame %d, want %d", i, got.Index, want.Index)
		}
	}
}

func TestDrainReleasesQueuedFrames(t *testing.T) {
	p, err := New(newFrames(4))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	f, err := p.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	p.Post(f)
	// Drop the decode-side reference, as the orchestrator's pump does
	// after Post, so the display queue holds the only one.
	p.Release(f)

	p.Drain()
	if p.DisplayDepth() != 0 {
		t.Fatalf("display depth after drain = %d, want 0", p.DisplayDepth())
	}
	if f.Refs != 0 {
		t.Fatalf("refs after drain = %d, want 0", f.Refs)
	}
}

func TestFreeDepthTracksOutstanding(t *testing.T) {
	p, err := New(newFrames(4))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if got, want := p.FreeDepth(), 4; got != want {
		t.Fatalf("FreeDepth = %d, want %d", got, want)
	}

	f, err := p.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := p.FreeDepth(), 3; got != want {
		t.Fatalf("FreeDepth after acquire = %d, want %d", got, want)
	}

	p.Release(f)
	if got, want := p.FreeDepth(), 4; got != want {
		t.Fatalf("FreeDepth after release = %d, want %d", got, want)
	}
}

func TestNewRejectsTinyPool(t *testing.T) {
	if _, err := New(newFrames(1)); err == nil {
		t.Fatalf("expected error for pool size 1")
	}
}
