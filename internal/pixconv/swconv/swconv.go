// Package swconv provides the reference software pixel-format
// converter: a portable, table-driven port of the reference engine's
// yuv420_to_yuv422 (pixfmt.c) generalized to every format pair the
// frame package describes, with no SIMD. Hardware-assisted pixconv
// drivers (e.g. a DSP- or GPU-backed one) would register under a
// different name and only be reached for format pairs this one also
// supports, so there is always a working fallback.
package swconv

import (
	"fmt"

	"github.com/snapetech/fbplayer/internal/driver"
	"github.com/snapetech/fbplayer/internal/fberrors"
	"github.com/snapetech/fbplayer/internal/frame"
	"github.com/snapetech/fbplayer/internal/pixconv"
)

func init() {
	pixconv.Registry.Register("sw", &Converter{})
}

// Converter performs a same-size, CPU-side pixel format conversion by
// resampling each channel through frame.PixfmtDesc.PlaneOffsets. Both
// source and destination formats must already have the requested
// display rectangle cropped by the caller; Convert never scales.
type Converter struct {
	src, dst         frame.Format
	srcDesc, dstDesc frame.PixfmtDesc
}

func (c *Converter) Open(src, dst frame.Format, params string) error {
	if src.DispW != dst.DispW || src.DispH != dst.DispH {
		return fberrors.New("swconv.Open", fberrors.IncompatibleDrivers,
			fmt.Errorf("size mismatch %dx%d -> %dx%d, swconv does not scale",
				src.DispW, src.DispH, dst.DispW, dst.DispH))
	}
	sd, ok := frame.GetPixfmt(src.Pixfmt)
	if !ok {
		return fberrors.New("swconv.Open", fberrors.IncompatibleDrivers,
			fmt.Errorf("unsupported source format %s", src.Pixfmt))
	}
	dd, ok := frame.GetPixfmt(dst.Pixfmt)
	if !ok {
		return fberrors.New("swconv.Open", fberrors.IncompatibleDrivers,
			fmt.Errorf("unsupported destination format %s", dst.Pixfmt))
	}
	c.src, c.dst, c.srcDesc, c.dstDesc = src, dst, sd, dd
	return nil
}

// strides returns, per channel, the row stride of the plane that
// channel lives in: plane 0 always uses the Y stride, any other plane
// index uses the UV stride. This is keyed on Plane rather than
// subsampling because interleaved formats (e.g. YUYV422) route every
// channel through plane 0 and therefore share its stride.
func strides(d frame.PixfmtDesc, f frame.Format) [3]int {
	var s [3]int
	for i := 0; i < 3; i++ {
		if d.Plane[i] == 0 {
			s[i] = f.YStride
		} else {
			s[i] = f.UVStride
		}
	}
	return s
}

func (c *Converter) Convert(dst, src *frame.Frame) error {
	srcStride := strides(c.srcDesc, c.src)
	dstStride := strides(c.dstDesc, c.dst)

	w, h := int(c.src.DispW), int(c.src.DispH)
	sx0, sy0 := int(c.src.DispX), int(c.src.DispY)
	dx0, dy0 := int(c.dst.DispX), int(c.dst.DispY)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			so := c.srcDesc.PlaneOffsets(sx0+x, sy0+y, srcStride)
			do := c.dstDesc.PlaneOffsets(dx0+x, dy0+y, dstStride)
			for ch := 0; ch < 3; ch++ {
				sp := src.Virt[c.srcDesc.Plane[ch]]
				dp := dst.Virt[c.dstDesc.Plane[ch]]
				si := c.srcDesc.Start[ch] + so[ch]
				di := c.dstDesc.Start[ch] + do[ch]
				if si >= len(sp) || di >= len(dp) {
					continue
				}
				dp[di] = sp[si]
			}
		}
	}
	return nil
}

func (c *Converter) Caps() driver.Caps { return 0 }

func (c *Converter) Close() error { return nil }
