// Package display defines the pluggable display-sink contract and the
// aspect-preserving scaling math the scheduler uses to fit a decoded
// picture onto a surface, grounded on struct display (display.h) and
// ofb_scale/set_scale (omapfbplay.c).
package display

import (
	"github.com/snapetech/fbplayer/internal/driver"
	"github.com/snapetech/fbplayer/internal/frame"
)

// Display owns an output surface and the frames backing it.
type Display interface {
	// Open negotiates a surface for fmt (the decoder's padded format,
	// already scaled into fmt.Disp{X,Y,W,H} by Scale) and flags, and
	// returns frame descriptors the display owns -- nil if the display
	// wants the pool to allocate frames itself via a memman driver.
	Open(fmt frame.Format, caps driver.Caps, params string) ([]*frame.Frame, error)
	// Show presents f. The display does not take ownership of f; the
	// scheduler releases it back to the pool once Show returns.
	Show(f *frame.Frame) error
	// Caps reports fixed capability bits (Fullscreen, DoubleBuf, PhysMem,
	// NoConv) the scheduler and pixconv negotiation consult.
	Caps() driver.Caps
	// Close releases the surface and any frames Open allocated.
	Close() error
}

// Registry is the link-time catalogue of named display drivers.
var Registry = driver.NewRegistry[Display]()

// Scale computes the destination x, y, w, h that fits a sw x sh source
// rectangle into a dw x dh surface. When noAspect is set the source is
// stretched to fill the surface exactly; otherwise the larger-relative
// dimension is clamped to the surface and the source is centered on the
// other axis. Direct port of ofb_scale.
func Scale(sw, sh, dw, dh uint, noAspect bool) (x, y, w, h uint) {
	if noAspect {
		return 0, 0, dw, dh
	}
	if sw*dh > dw*sh {
		h = sh * dw / sw
		w = dw
		y = (dh - h) / 2
		return x, y, w, h
	}
	w = sw * dh / sh
	h = dh
	x = (dw - w) / 2
	return x, y, w, h
}

// FitFormat fills in df's Disp{X,Y,W,H} to present sf on a surface of
// size df.Width x df.Height, honoring fullscreen and the source not
// fitting bit for bit. Port of set_scale.
func FitFormat(df *frame.Format, sf frame.Format, caps driver.Caps, noAspect bool) {
	if caps.Has(driver.Fullscreen) || sf.DispW > df.Width || sf.DispH > df.Height {
		df.DispW, df.DispH = sf.DispW, sf.DispH
		df.DispX, df.DispY, df.DispW, df.DispH = Scale(sf.DispW, sf.DispH, df.Width, df.Height, noAspect)
		return
	}
	df.DispX = df.Width/2 - sf.DispW/2
	df.DispY = df.Height/2 - sf.DispH/2
	df.DispW = sf.DispW
	df.DispH = sf.DispH
}
