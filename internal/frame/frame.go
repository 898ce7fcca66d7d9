// Package frame defines the decoded-picture descriptor and frame-format
// types shared by the pool, codec, pixconv, and display packages.
package frame

// EdgeWidth is the padding added on each side of a decoded picture when
// the codec does not manage its own reconstruction edge. Matches the
// 32-pixel edge policy of the reference decoder this engine was modeled on.
const EdgeWidth = 32

// Align rounds n up to the next multiple of a, a must be a power of two.
func Align(n, a uint) uint {
	return (n + (a - 1)) &^ (a - 1)
}

// Frame is a single slot in the pool: up to three plane base addresses in
// a virtual (CPU-addressable) view, optionally the same planes in a
// physical-address view when the backing memory is DMA-contiguous, a
// per-plane stride, the active crop offset, and the bookkeeping fields the
// pool needs to keep it on exactly one of {free list, display FIFO}.
//
// Plane addresses and strides are immutable after the memman allocates the
// frame. Next/Prev are intrusive doubly-linked-list fields owned by the
// pool; nothing outside internal/pool should read or write them.
type Frame struct {
	Index int

	Virt   [3][]byte
	Phys   [3][]byte // nil planes unless the memman produced DMA-contiguous memory
	Stride [3]int

	DispX, DispY uint

	PicNum int64
	Age    uint64 // pool-wide monotonic counter, stamped on every Acquire

	Refs int32

	Next, Prev int // pool-private free/display list links; -1 means "none"
}

// HasPhys reports whether the frame carries a physical-address view,
// i.e. was produced by a DMA-capable memman.
func (f *Frame) HasPhys() bool {
	return f.Phys[0] != nil
}

// Format describes the padded buffer geometry and pixel layout of a
// stream of frames. Two instances circulate in the engine: one for the
// decoded source picture, one for the display surface.
type Format struct {
	Width, Height uint // padded buffer dimensions

	DispX, DispY uint // crop offset of the visible rectangle
	DispW, DispH uint // visible rectangle size

	YStride, UVStride int

	Pixfmt PixelFormat
}

// Pad returns the Format for a decoded picture of size w x h, padding the
// buffer out to 32-pixel alignment and adding a 32-pixel edge border on
// every side, exactly as the reference decoder's frame_format() does.
func Pad(w, h uint, pixfmt PixelFormat) Format {
	return Format{
		Width:  Align(w, 32) + EdgeWidth*2,
		Height: Align(h, 32) + EdgeWidth*2,
		DispX:  EdgeWidth,
		DispY:  EdgeWidth,
		DispW:  w,
		DispH:  h,
		Pixfmt: pixfmt,
	}
}
