package orchestrator

import (
	"context"
	"time"

	"github.com/snapetech/fbplayer/internal/codec"
	"github.com/snapetech/fbplayer/internal/config"
	"github.com/snapetech/fbplayer/internal/display"
	"github.com/snapetech/fbplayer/internal/driver"
	"github.com/snapetech/fbplayer/internal/fberrors"
	"github.com/snapetech/fbplayer/internal/frame"
	"github.com/snapetech/fbplayer/internal/logging"
	"github.com/snapetech/fbplayer/internal/memman"
	"github.com/snapetech/fbplayer/internal/pixconv"
	"github.com/snapetech/fbplayer/internal/pool"
)

// runTestPattern is the standalone throughput benchmark mode (-t
// WxHxN): fill every pool frame with a gradient test pattern once,
// then show it N times as fast as the display driver accepts it --
// no pacing against a timer, since the point is to measure how fast
// the pipeline can push frames, not how accurately it can pace them.
// Direct port of speed_test/test_pattern in the reference engine.
func runTestPattern(ctx context.Context, opt config.Options, size config.TestPatternSize) error {
	sourceFmt := codec.NegotiateFormat(codec.OpenParams{
		Width: size.Width, Height: size.Height, Pixfmt: frame.YUV420P,
	})

	caps := driver.Caps(0)
	if opt.Fullscreen {
		caps |= driver.Fullscreen
	}
	if !opt.SingleBuf {
		caps |= driver.DoubleBuf
	}

	dispDrv, dispParams, err := display.Registry.Find(opt.DisplayDriver)
	if err != nil {
		return fberrors.New("orchestrator.runTestPattern", fberrors.DriverNotFound, err)
	}

	dispFmt := sourceFmt
	display.FitFormat(&dispFmt, sourceFmt, caps, opt.NoAspect)

	dispFrames, err := dispDrv.Open(dispFmt, caps, dispParams)
	if err != nil {
		return fberrors.New("orchestrator.runTestPattern", fberrors.DriverOpenFailed, err)
	}
	defer func() { logClose("display", dispDrv.Close()) }()

	mm, mmParams, err := memman.Registry.Find(opt.MemmanDriver)
	if err != nil {
		return fberrors.New("orchestrator.runTestPattern", fberrors.DriverNotFound, err)
	}

	frames := dispFrames
	if frames == nil {
		frames, err = mm.Alloc(sourceFmt, 0, 0, mmParams)
		if err != nil {
			return fberrors.New("orchestrator.runTestPattern", fberrors.ResourceExhausted, err)
		}
		defer func() { logClose("memman", mm.Free(frames)) }()
	}

	p, err := pool.New(frames)
	if err != nil {
		return fberrors.New("orchestrator.runTestPattern", fberrors.ResourceExhausted, err)
	}

	var conv pixconv.Pixconv
	var scratch *frame.Frame
	if !dispDrv.Caps().Has(driver.NoConv) && sourceFmt.Pixfmt != dispFmt.Pixfmt {
		convDrv, convParams, err := pixconv.Registry.Find(opt.PixconvDriver)
		if err != nil {
			return fberrors.New("orchestrator.runTestPattern", fberrors.DriverNotFound, err)
		}
		if err := convDrv.Open(sourceFmt, dispFmt, convParams); err != nil {
			return fberrors.New("orchestrator.runTestPattern", fberrors.DriverOpenFailed, err)
		}
		if convDrv.Caps().Has(driver.PhysMem) && !(mm.Caps().Has(driver.PhysMem) && dispDrv.Caps().Has(driver.PhysMem)) {
			convDrv.Close()
			return fberrors.New("orchestrator.runTestPattern", fberrors.IncompatibleDrivers, nil)
		}
		defer func() { logClose("pixconv", convDrv.Close()) }()
		conv = convDrv
		scratch = scratchFrame(dispFmt)
	}

	for _, f := range frames {
		fillTestPattern(f, sourceFmt)
	}

	start := time.Now()
	shown := 0
	for i := 0; i < size.Frames; i++ {
		if ctx.Err() != nil {
			break
		}
		f, err := p.Acquire(ctx)
		if err != nil {
			break
		}
		show := f
		if conv != nil {
			if err := conv.Convert(scratch, f); err != nil {
				p.Release(f)
				return fberrors.New("orchestrator.runTestPattern", fberrors.DecodeError, err)
			}
			show = scratch
		}
		err = dispDrv.Show(show)
		p.Release(f)
		if err != nil {
			return fberrors.New("orchestrator.runTestPattern", fberrors.DriverOpenFailed, err)
		}
		shown++
	}
	elapsed := time.Since(start)

	bytesPerFrame := int64(sourceFmt.DispW) * int64(sourceFmt.DispH) * 3 / 2
	fps := float64(shown) / elapsed.Seconds()
	logging.Infof("%d ms, %.0f fps, read %.0f B/s",
		elapsed.Milliseconds(), fps, fps*float64(bytesPerFrame))

	return nil
}

// fillTestPattern paints a diagonal gradient into f's display
// rectangle, enough to visually distinguish frames in a pngsink dump.
func fillTestPattern(f *frame.Frame, fmt_ frame.Format) {
	desc, ok := frame.GetPixfmt(fmt_.Pixfmt)
	if !ok {
		return
	}
	stride := [3]int{fmt_.YStride, fmt_.UVStride, fmt_.UVStride}
	for y := 0; y < int(fmt_.DispH); y++ {
		for x := 0; x < int(fmt_.DispW); x++ {
			off := desc.PlaneOffsets(int(fmt_.DispX)+x, int(fmt_.DispY)+y, stride)
			if p := f.Virt[0]; p != nil {
				p[off[0]] = byte((x + y) & 0xff)
			}
			if p := f.Virt[1]; p != nil {
				p[off[1]] = byte(x & 0xff)
			}
			if p := f.Virt[2]; p != nil {
				p[off[2]] = byte(y & 0xff)
			}
		}
	}
}
