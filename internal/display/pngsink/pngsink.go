// Package pngsink implements a display driver that writes each shown
// frame to a numbered PNG file, for headless verification without a
// framebuffer. It accepts YUV420P source frames only; callers wanting
// another source format should route through a pixconv driver first
// (pngsink advertises no NoConv capability, so the scheduler always
// inserts one when formats differ).
package pngsink

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/snapetech/fbplayer/internal/display"
	"github.com/snapetech/fbplayer/internal/driver"
	"github.com/snapetech/fbplayer/internal/fberrors"
	"github.com/snapetech/fbplayer/internal/frame"
)

func init() {
	display.Registry.Register("png", &Sink{})
}

// Sink writes one PNG per Show call into a directory, named
// frame-%06d.png in presentation order.
type Sink struct {
	dir     string
	fmt     frame.Format
	counter atomic.Int64

	mu sync.Mutex
}

// Open's params is the destination directory, created if it does not
// exist. The source format must be YUV420P.
func (s *Sink) Open(fmt frame.Format, caps driver.Caps, params string) ([]*frame.Frame, error) {
	if fmt.Pixfmt != frame.YUV420P {
		return nil, fberrors.New("pngsink.Open", fberrors.IncompatibleDrivers,
			fmt2Err(fmt.Pixfmt))
	}
	dir := strings.TrimSpace(params)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fberrors.New("pngsink.Open", fberrors.DriverOpenFailed, err)
	}
	s.dir = dir
	s.fmt = fmt
	s.counter.Store(0)
	return nil, nil
}

func fmt2Err(p frame.PixelFormat) error {
	return fmt.Errorf("pngsink requires yuv420p source, got %s", p)
}

func (s *Sink) Show(f *frame.Frame) error {
	img := image.NewYCbCr(image.Rect(0, 0, int(s.fmt.DispW), int(s.fmt.DispH)), image.YCbCrSubsampleRatio420)

	desc, _ := frame.GetPixfmt(frame.YUV420P)
	x0, y0 := int(s.fmt.DispX), int(s.fmt.DispY)
	for y := 0; y < int(s.fmt.DispH); y++ {
		for x := 0; x < int(s.fmt.DispW); x++ {
			off := desc.PlaneOffsets(x0+x, y0+y, [3]int{s.fmt.YStride, s.fmt.UVStride, s.fmt.UVStride})
			yi := img.YOffset(x, y)
			ci := img.COffset(x, y)
			img.Y[yi] = f.Virt[0][off[0]]
			img.Cb[ci] = f.Virt[1][off[1]]
			img.Cr[ci] = f.Virt[2][off[2]]
		}
	}

	n := s.counter.Add(1)
	path := filepath.Join(s.dir, fmt.Sprintf("frame-%06d.png", n))

	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := os.Create(path)
	if err != nil {
		return fberrors.New("pngsink.Show", fberrors.ProtocolError, err)
	}
	defer out.Close()
	return png.Encode(out, img)
}

func (s *Sink) Caps() driver.Caps { return 0 }

func (s *Sink) Close() error { return nil }
