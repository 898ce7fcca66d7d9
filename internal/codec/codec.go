// Package codec defines the pluggable decoder contract, grounded on
// struct codec (codec.h) and the get_buffer/release_buffer/reget_buffer
// triad lavc_open wires into libavcodec (avcodec.c): a codec driver
// never allocates its own picture storage, it pulls buffers from the
// frame pool it is opened with and returns each decoded picture as one
// of that pool's frames, still carrying its Acquire reference, for the
// caller to post for display.
package codec

import (
	"context"

	"github.com/snapetech/fbplayer/internal/driver"
	"github.com/snapetech/fbplayer/internal/frame"
	"github.com/snapetech/fbplayer/internal/pool"
)

// OpenParams describes the elementary stream a codec is being opened
// for, analogous to the AVCodecContext fields lavc_open reads.
type OpenParams struct {
	Width, Height uint
	Pixfmt        frame.PixelFormat
	Extradata     []byte
}

// Codec decodes one elementary stream's packets into pool frames.
type Codec interface {
	// Open binds the driver to p (the source of decode buffers) and
	// returns the padded frame format frames will be delivered in.
	Open(name string, params OpenParams, p *pool.Pool, prm string) (frame.Format, error)
	// Decode consumes one packet's payload. It returns a frame with an
	// outstanding Acquire-reference on success, or (nil, nil) if the
	// packet produced no displayable picture (e.g. it was a parameter
	// set or the decoder is still buffering reference pictures).
	Decode(ctx context.Context, pkt []byte, pts int64) (*frame.Frame, error)
	// Close releases any codec-private state. It does not release
	// frames still held by the caller.
	Close() error
}

// Registry is the link-time catalogue of named codec drivers.
var Registry = driver.NewRegistry[Codec]()

// NegotiateFormat computes the padded frame format a fully-planar
// reference codec driver delivers pictures in, given only the stream's
// negotiated width/height/pixfmt. It is deterministic and
// driver-independent, so the orchestrator can size a memman allocation
// before a codec driver is bound to the pool it will decode into
// (binding happens in Open, which every fully-planar reference driver
// computes this same format from).
func NegotiateFormat(params OpenParams) frame.Format {
	fmt_ := frame.Pad(params.Width, params.Height, params.Pixfmt)
	fmt_.YStride = int(fmt_.Width)
	fmt_.UVStride = int(fmt_.Width) / 2
	return fmt_
}
