package heapmem

import (
	"testing"

	"github.com/snapetech/fbplayer/internal/frame"
)

func TestAllocYUV420PSizesPlanes(t *testing.T) {
	a := Allocator{}
	fmt := frame.Pad(64, 64, frame.YUV420P)
	fmt.YStride = int(fmt.Width)
	fmt.UVStride = int(fmt.Width) / 2

	frames, err := a.Alloc(fmt, 1<<20, 4, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) < MinFrames {
		t.Fatalf("got %d frames, want at least %d", len(frames), MinFrames)
	}
	for _, f := range frames {
		if len(f.Virt[0]) != fmt.YStride*int(fmt.Height) {
			t.Fatalf("Y plane size = %d, want %d", len(f.Virt[0]), fmt.YStride*int(fmt.Height))
		}
		if len(f.Virt[1]) != fmt.UVStride*int(fmt.Height)/2 {
			t.Fatalf("U plane size = %d, want %d", len(f.Virt[1]), fmt.UVStride*int(fmt.Height)/2)
		}
		if len(f.Virt[2]) != len(f.Virt[1]) {
			t.Fatalf("V plane size %d != U plane size %d", len(f.Virt[2]), len(f.Virt[1]))
		}
	}
}

func TestAllocRespectsMinFrames(t *testing.T) {
	a := Allocator{}
	fmt := frame.Pad(16, 16, frame.YUV420P)
	fmt.YStride = int(fmt.Width)
	fmt.UVStride = int(fmt.Width) / 2

	frames, err := a.Alloc(fmt, 1, 8, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 8 {
		t.Fatalf("got %d frames, want 8 (budget of 1 byte should floor to minFrames)", len(frames))
	}
}
