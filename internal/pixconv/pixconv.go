// Package pixconv defines the pluggable pixel-format conversion
// contract sitting between a decoded frame and a display driver's
// native format, grounded on the reference engine's struct pixconv
// (open/convert/finish/close) in pixconv.h.
package pixconv

import (
	"github.com/snapetech/fbplayer/internal/driver"
	"github.com/snapetech/fbplayer/internal/frame"
)

// Pixconv converts frames from one pixel format to another. Open is
// called once with the negotiated source and destination formats;
// Convert is then called per frame.
type Pixconv interface {
	// Open binds the driver to a fixed source/destination format pair.
	// Returning an error means the driver cannot bridge these formats.
	Open(src, dst frame.Format, params string) error
	// Convert writes dst in-place from src. Both frames must already be
	// sized per the formats passed to Open.
	Convert(dst, src *frame.Frame) error
	// Caps reports the driver's capability bits (PhysMem if it can
	// operate on physical/DMA addresses rather than Virt buffers).
	Caps() driver.Caps
	// Close releases any resources held by the driver.
	Close() error
}

// Registry is the link-time catalogue of named pixconv drivers.
var Registry = driver.NewRegistry[Pixconv]()
