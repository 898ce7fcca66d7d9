package frame

import "fmt"

// PixelFormat identifies a supported pixel layout.
type PixelFormat int

const (
	YUV420P PixelFormat = iota // planar 4:2:0
	YUYV422                    // interleaved 4:2:2
	NV12                       // semi-planar 4:2:0
)

func (p PixelFormat) String() string {
	switch p {
	case YUV420P:
		return "yuv420p"
	case YUYV422:
		return "yuyv422"
	case NV12:
		return "nv12"
	default:
		return fmt.Sprintf("pixfmt(%d)", int(p))
	}
}

// PixfmtDesc maps a pixel format to the plane each of {Y,U,V} lives in,
// the byte start within that plane, the stride in samples per pixel, and
// the horizontal/vertical subsampling log2. Mirrors the static pixfmt_tab
// the reference decoder builds its plane-offset math from.
type PixfmtDesc struct {
	Fmt   PixelFormat
	Plane [3]int
	Start [3]int
	Inc   [3]int
	HSub  [3]int
	VSub  [3]int
}

var pixfmtTab = []PixfmtDesc{
	{
		Fmt:   YUV420P,
		Plane: [3]int{0, 1, 2},
		Inc:   [3]int{1, 1, 1},
		HSub:  [3]int{0, 1, 1},
		VSub:  [3]int{0, 1, 1},
	},
	{
		Fmt:   YUYV422,
		Plane: [3]int{0, 0, 0},
		Start: [3]int{0, 1, 3},
		Inc:   [3]int{2, 4, 4},
		HSub:  [3]int{0, 1, 1},
		VSub:  [3]int{0, 0, 0},
	},
	{
		Fmt:   NV12,
		Plane: [3]int{0, 1, 1},
		Start: [3]int{0, 0, 1},
		Inc:   [3]int{1, 2, 2},
		HSub:  [3]int{0, 1, 1},
		VSub:  [3]int{0, 1, 1},
	},
}

// GetPixfmt returns the descriptor for fmt, or false if unsupported.
func GetPixfmt(fmt PixelFormat) (PixfmtDesc, bool) {
	for _, d := range pixfmtTab {
		if d.Fmt == fmt {
			return d, true
		}
	}
	return PixfmtDesc{}, false
}

// PlaneOffsets returns, for each of the three channels (Y, U, V), the
// byte offset of sample (x, y) within the plane that channel lives in,
// given the per-channel strides in stride. The channel's Start is not
// included. Direct port of ofbp_get_plane_offsets.
func (d PixfmtDesc) PlaneOffsets(x, y int, stride [3]int) [3]int {
	var offs [3]int
	for i := 0; i < 3; i++ {
		offs[i] = (y>>uint(d.VSub[i]))*stride[i] + (x>>uint(d.HSub[i]))*d.Inc[i]
	}
	return offs
}
