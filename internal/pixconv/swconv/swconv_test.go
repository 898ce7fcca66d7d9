package swconv

import (
	"testing"

	"github.com/snapetech/fbplayer/internal/frame"
)

func makeFrame(planeSizes [3]int) *frame.Frame {
	f := &frame.Frame{}
	for i, sz := range planeSizes {
		if sz > 0 {
			f.Virt[i] = make([]byte, sz)
		}
	}
	return f
}

func TestIdentityConvertYUV420P(t *testing.T) {
	fmt := frame.Format{Width: 4, Height: 4, DispW: 4, DispH: 4, YStride: 4, UVStride: 2, Pixfmt: frame.YUV420P}

	c := &Converter{}
	if err := c.Open(fmt, fmt, ""); err != nil {
		t.Fatal(err)
	}

	src := makeFrame([3]int{16, 4, 4})
	for i := range src.Virt[0] {
		src.Virt[0][i] = byte(i + 1)
	}
	for i := range src.Virt[1] {
		src.Virt[1][i] = byte(i + 100)
		src.Virt[2][i] = byte(i + 200)
	}
	dst := makeFrame([3]int{16, 4, 4})

	if err := c.Convert(dst, src); err != nil {
		t.Fatal(err)
	}
	for i := range src.Virt[0] {
		if dst.Virt[0][i] != src.Virt[0][i] {
			t.Fatalf("Y[%d] = %d, want %d", i, dst.Virt[0][i], src.Virt[0][i])
		}
	}
}

func TestYUV420PToYUYV422(t *testing.T) {
	src420 := frame.Format{Width: 2, Height: 2, DispW: 2, DispH: 2, YStride: 2, UVStride: 1, Pixfmt: frame.YUV420P}
	dstYUYV := frame.Format{Width: 2, Height: 2, DispW: 2, DispH: 2, YStride: 4, Pixfmt: frame.YUYV422}

	c := &Converter{}
	if err := c.Open(src420, dstYUYV, ""); err != nil {
		t.Fatal(err)
	}

	src := makeFrame([3]int{4, 1, 1})
	src.Virt[0][0], src.Virt[0][1], src.Virt[0][2], src.Virt[0][3] = 10, 20, 30, 40
	src.Virt[1][0] = 99
	src.Virt[2][0] = 88

	dst := makeFrame([3]int{8, 0, 0})
	if err := c.Convert(dst, src); err != nil {
		t.Fatal(err)
	}

	// Row 0: Y0 U Y1 V, then Y2 U Y3 V for row 1, packed YUYV per 2 px.
	want := []byte{10, 99, 20, 88, 30, 99, 40, 88}
	for i, w := range want {
		if dst.Virt[0][i] != w {
			t.Fatalf("byte %d = %d, want %d", i, dst.Virt[0][i], w)
		}
	}
}

func TestOpenRejectsSizeMismatch(t *testing.T) {
	a := frame.Format{DispW: 4, DispH: 4}
	b := frame.Format{DispW: 8, DispH: 8}
	c := &Converter{}
	if err := c.Open(a, b, ""); err == nil {
		t.Fatal("expected size mismatch error")
	}
}
