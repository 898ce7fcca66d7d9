// Package heapmem implements the default memman driver: ordinary Go
// heap allocation, one slice per plane per frame. It is the drop-in
// replacement for the reference engine's cmem driver (cmem.c) for any
// display that does not require physically contiguous buffers.
package heapmem

import (
	"fmt"

	"github.com/snapetech/fbplayer/internal/driver"
	"github.com/snapetech/fbplayer/internal/fberrors"
	"github.com/snapetech/fbplayer/internal/frame"
	"github.com/snapetech/fbplayer/internal/memman"
)

func init() {
	memman.Registry.Register("heap", &Allocator{})
}

// MinFrames is the absolute floor on pool size regardless of budget,
// matching the reference engine's MIN_FRAMES.
const MinFrames = 3

// Allocator hands out independently heap-allocated plane buffers.
type Allocator struct{}

func (Allocator) Alloc(fmt frame.Format, budget uintptr, minFrames int, params string) ([]*frame.Frame, error) {
	desc, ok := frame.GetPixfmt(fmt.Pixfmt)
	if !ok {
		return nil, fberrors.New("heapmem.Alloc", fberrors.IncompatibleDrivers,
			fmt2err(fmt.Pixfmt))
	}

	sizes := memman.PlaneSizes(desc, fmt.Height, fmt.YStride, fmt.UVStride)
	frameSize := 0
	for _, sz := range sizes {
		frameSize += sz
	}
	if frameSize == 0 {
		return nil, fberrors.New("heapmem.Alloc", fberrors.IncompatibleDrivers,
			zeroSizeErr(fmt.Pixfmt))
	}

	if minFrames < MinFrames {
		minFrames = MinFrames
	}
	numFrames := int(budget) / frameSize
	if numFrames < minFrames {
		numFrames = minFrames
	}

	frames := make([]*frame.Frame, numFrames)
	for i := range frames {
		f := &frame.Frame{}
		for plane, sz := range sizes {
			f.Virt[plane] = make([]byte, sz)
		}
		for p := 0; p < 3; p++ {
			if desc.Plane[p] == 0 {
				f.Stride[p] = fmt.YStride
			} else {
				f.Stride[p] = fmt.UVStride
			}
		}
		frames[i] = f
	}
	return frames, nil
}

func fmt2err(p frame.PixelFormat) error {
	return fmt.Errorf("unsupported pixel format %s", p)
}

func zeroSizeErr(p frame.PixelFormat) error {
	return fmt.Errorf("zero-size frame for format %s", p)
}

func (Allocator) Free(frames []*frame.Frame) error {
	for _, f := range frames {
		f.Virt = [3][]byte{}
		f.Phys = [3][]byte{}
	}
	return nil
}

func (Allocator) Caps() driver.Caps { return 0 }
