// Package memman defines the pluggable frame-buffer allocator contract
// the pool is built over, grounded on struct memman (implied by the
// cmem driver's alloc_frames/free_frames pair in cmem.c): compute a
// frame size from the format, size the pool to at least minFrames
// frames within a memory budget, and hand back the frame descriptors
// for the pool to link.
package memman

import (
	"github.com/snapetech/fbplayer/internal/driver"
	"github.com/snapetech/fbplayer/internal/frame"
)

// Memman allocates the frame array a pool circulates.
type Memman interface {
	// Alloc sizes and allocates num_frames = max(budget/frame_size,
	// minFrames) frame buffers for fmt, returning their descriptors
	// un-linked (the caller, typically pool.New, does the free-list
	// linking).
	Alloc(fmt frame.Format, budget uintptr, minFrames int, params string) ([]*frame.Frame, error)
	// Free releases everything a prior Alloc returned.
	Free(frames []*frame.Frame) error
	// Caps reports whether this allocator produces physically
	// contiguous (DMA-capable) memory.
	Caps() driver.Caps
}

// Registry is the link-time catalogue of named memman drivers.
var Registry = driver.NewRegistry[Memman]()

// PlaneSizes returns, for each distinct plane index referenced by d,
// the byte size of one frame's worth of that plane at height h with
// the given per-plane strides (as produced by frame's YStride/UVStride
// via the plane-0-vs-rest convention pixconv and memman both use).
func PlaneSizes(d frame.PixfmtDesc, h uint, yStride, uvStride int) map[int]int {
	sizes := make(map[int]int)
	for i := 0; i < 3; i++ {
		plane := d.Plane[i]
		if _, ok := sizes[plane]; ok {
			continue
		}
		stride := yStride
		if plane != 0 {
			stride = uvStride
		}
		ph := h >> uint(d.VSub[i])
		sizes[plane] = stride * int(ph)
	}
	return sizes
}
