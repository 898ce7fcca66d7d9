// Package rawframe implements the reference "decoder": each input
// packet is already a raw planar picture in the stream's pixel format,
// and decoding is a straight copy into a pool-acquired frame. This
// stands in for a real entropy decoder (H.264, VP9, ...) the way the
// reference engine's black-box codec drivers wrap libavcodec --
// container demuxing and bitstream decoding are out of scope for this
// engine, which starts from already-decoded pictures.
//
// Only fully-planar formats (one channel per plane, e.g. YUV420P) are
// supported: a real multi-channel interleaved format (YUYV422, NV12)
// would need its own codec driver to get the in-plane byte packing
// right, the same way the original engine dispatches to a distinct
// driver per hardware decoder rather than one generic copier.
package rawframe

import (
	"context"
	"fmt"

	"github.com/snapetech/fbplayer/internal/codec"
	"github.com/snapetech/fbplayer/internal/fberrors"
	"github.com/snapetech/fbplayer/internal/frame"
	"github.com/snapetech/fbplayer/internal/pool"
)

func init() {
	codec.Registry.Register("raw", &Decoder{})
}

// Decoder copies each packet verbatim into a freshly-acquired frame.
type Decoder struct {
	pool   *pool.Pool
	fmt    frame.Format
	desc   frame.PixfmtDesc
	picNum int64
}

func (d *Decoder) Open(name string, params codec.OpenParams, p *pool.Pool, prm string) (frame.Format, error) {
	desc, ok := frame.GetPixfmt(params.Pixfmt)
	if !ok {
		return frame.Format{}, fberrors.New("rawframe.Open", fberrors.IncompatibleDrivers,
			fmt.Errorf("unsupported pixel format %s", params.Pixfmt))
	}
	if !isPlanar(desc) {
		return frame.Format{}, fberrors.New("rawframe.Open", fberrors.IncompatibleDrivers,
			fmt.Errorf("%s is not a fully-planar format", params.Pixfmt))
	}

	fmt_ := codec.NegotiateFormat(params)

	d.pool = p
	d.fmt = fmt_
	d.desc = desc
	return fmt_, nil
}

func isPlanar(d frame.PixfmtDesc) bool {
	return d.Plane[0] != d.Plane[1] && d.Plane[1] != d.Plane[2] && d.Plane[0] != d.Plane[2]
}

// Decode treats pkt as the concatenation, in plane order, of each
// channel's tightly-packed display-rectangle bytes (no stride padding),
// and copies it into the cropped region of a pool frame.
func (d *Decoder) Decode(ctx context.Context, pkt []byte, pts int64) (*frame.Frame, error) {
	f, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	off := 0
	for plane := 0; plane < 3; plane++ {
		dw := int(d.fmt.DispW) >> uint(d.desc.HSub[plane])
		dh := int(d.fmt.DispH) >> uint(d.desc.VSub[plane])
		sz := dw * dh
		if off+sz > len(pkt) {
			d.pool.Release(f)
			return nil, fberrors.New("rawframe.Decode", fberrors.DecodeError,
				fmt.Errorf("packet too short: need %d more bytes for plane %d", sz, plane))
		}
		d.copyPlane(f, plane, dw, dh, pkt[off:off+sz])
		off += sz
	}

	d.picNum++
	f.PicNum = d.picNum
	return f, nil
}

func (d *Decoder) copyPlane(f *frame.Frame, plane, dw, dh int, src []byte) {
	stride := d.fmt.YStride
	if plane != 0 {
		stride = d.fmt.UVStride
	}
	x0 := int(d.fmt.DispX) >> uint(d.desc.HSub[plane])
	y0 := int(d.fmt.DispY) >> uint(d.desc.VSub[plane])

	for row := 0; row < dh; row++ {
		dstOff := (y0+row)*stride + x0
		srcOff := row * dw
		copy(f.Virt[plane][dstOff:dstOff+dw], src[srcOff:srcOff+dw])
	}
}

func (d *Decoder) Close() error { return nil }
