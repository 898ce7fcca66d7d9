package orchestrator

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/snapetech/fbplayer/internal/config"
	"github.com/snapetech/fbplayer/internal/container"
	"github.com/snapetech/fbplayer/internal/frame"
)

func baseOptions() config.Options {
	return config.Options{
		DisplayDriver:   "mem",
		MemmanDriver:    "heap",
		TimerDriver:     "system",
		CodecDriver:     "raw",
		PoolBudgetBytes: 1 << 20,
	}
}

func TestRunTestPattern(t *testing.T) {
	opt := baseOptions()
	opt.TestPattern = "16x16x3"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Run(ctx, opt); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunTestPatternRejectsMalformedSize(t *testing.T) {
	opt := baseOptions()
	opt.TestPattern = "not-a-size"

	if err := Run(context.Background(), opt); err == nil {
		t.Fatal("expected error for malformed test pattern")
	}
}

func TestRunPlayback(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stream-*.fbp")
	if err != nil {
		t.Fatal(err)
	}
	path := f.Name()

	w := container.NewWriter(f)
	if err := w.WriteHeader(container.Header{Width: 4, Height: 4, Pixfmt: frame.YUV420P}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		pkt := container.Packet{
			Payload: make([]byte, 16+4+4), // Y(4x4) + U(2x2) + V(2x2), tightly packed
			PTS:     int64(i) * 40_000_000,
		}
		if err := w.WritePacket(pkt); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	opt := baseOptions()
	opt.InputFile = path
	// Force the heap allocator down to its floor of heapmem.MinFrames
	// (3) so the scheduler's warmup -- which waits until all but the one
	// withheld pool frame are checked out -- completes after 2 of the
	// 3 packets this stream carries.
	opt.PoolBudgetBytes = 1

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Run(ctx, opt); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunPlaybackCancelledMidDecodeIsClean(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stream-*.fbp")
	if err != nil {
		t.Fatal(err)
	}
	path := f.Name()

	w := container.NewWriter(f)
	if err := w.WriteHeader(container.Header{Width: 4, Height: 4, Pixfmt: frame.YUV420P}); err != nil {
		t.Fatal(err)
	}
	// Far more packets than the pool has frames for, so the decode pump
	// is still blocked in pool.Acquire under back-pressure when the
	// context below is cancelled.
	for i := 0; i < 200; i++ {
		pkt := container.Packet{
			Payload: make([]byte, 16+4+4),
			PTS:     int64(i) * 40_000_000,
		}
		if err := w.WritePacket(pkt); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	opt := baseOptions()
	opt.InputFile = path
	opt.PoolBudgetBytes = 1

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	if err := Run(ctx, opt); err != nil {
		t.Fatalf("Run after cancellation = %v, want nil (SIGINT is not an error)", err)
	}
}

func TestRunPlaybackRejectsMissingFile(t *testing.T) {
	opt := baseOptions()
	opt.InputFile = "/nonexistent/stream.fbp"

	if err := Run(context.Background(), opt); err == nil {
		t.Fatal("expected error for missing input file")
	}
}
