// Package orchestrator wires the driver registries, frame pool, and
// display scheduler together in dependency order: codec lookup and
// format negotiation -> display open -> memman alloc -> pool init ->
// pixconv open -> timer open -> codec open (binding it to the pool) ->
// display scheduler and decode loop. There is no separate display
// enable step; display Open both negotiates and commits the surface.
// Teardown runs in strict
// reverse order so a failure partway through startup still unwinds
// whatever already succeeded. Modeled on the dependency-ordered
// startup/shutdown the teacher's own internal/supervisor.Run performs
// for its child instances, generalized to in-process components tied
// together with golang.org/x/sync/errgroup instead of OS processes.
package orchestrator

import (
	"context"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/snapetech/fbplayer/internal/codec"
	"github.com/snapetech/fbplayer/internal/config"
	"github.com/snapetech/fbplayer/internal/container"
	"github.com/snapetech/fbplayer/internal/display"
	"github.com/snapetech/fbplayer/internal/driver"
	"github.com/snapetech/fbplayer/internal/fberrors"
	"github.com/snapetech/fbplayer/internal/frame"
	"github.com/snapetech/fbplayer/internal/logging"
	"github.com/snapetech/fbplayer/internal/memman"
	"github.com/snapetech/fbplayer/internal/pixconv"
	"github.com/snapetech/fbplayer/internal/pool"
	"github.com/snapetech/fbplayer/internal/scheduler"
	"github.com/snapetech/fbplayer/internal/timer"

	_ "github.com/snapetech/fbplayer/internal/codec/rawframe"
	_ "github.com/snapetech/fbplayer/internal/display/memsink"
	_ "github.com/snapetech/fbplayer/internal/display/pngsink"
	_ "github.com/snapetech/fbplayer/internal/memman/heapmem"
	_ "github.com/snapetech/fbplayer/internal/netsync"
	_ "github.com/snapetech/fbplayer/internal/pixconv/swconv"
	_ "github.com/snapetech/fbplayer/internal/timer/system"
)

// defaultFPSNum, defaultFPSDen describe the nominal frame rate used when
// a raw-frame input does not itself carry timing information (the
// reference engine reads fps from the codec's AVStream; the reference
// decoder here has no such side channel, so a fixed 25fps stands in,
// matching the reference's own fallback in the no-stream-rate case).
const (
	defaultFPSNum = 25
	defaultFPSDen = 1
)

// rttReporter is implemented by timer drivers (netsync.Engine) that can
// report the round-trip time(s) they've measured against their peers.
// Checked via type assertion since timer.Timer itself carries no notion
// of network peers.
type rttReporter interface {
	RTTs() map[string]uint32
}

// Run executes the full pipeline for opt until ctx is cancelled or a
// fatal error occurs. It never returns until the display thread has
// drained and every driver has been closed in reverse acquisition
// order.
func Run(ctx context.Context, opt config.Options) error {
	if opt.TestPattern != "" {
		size, err := config.ParseTestPattern(opt.TestPattern)
		if err != nil {
			return fberrors.New("orchestrator.Run", fberrors.UsageError, err)
		}
		return runTestPattern(ctx, opt, size)
	}
	return runPlayback(ctx, opt)
}

func runPlayback(ctx context.Context, opt config.Options) error {
	f, err := os.Open(opt.InputFile)
	if err != nil {
		return fberrors.New("orchestrator.Run", fberrors.UsageError, err)
	}
	defer f.Close()

	r := container.NewReader(f)
	hdr, err := r.ReadHeader()
	if err != nil {
		return err
	}

	return run(ctx, opt, codec.OpenParams{Width: hdr.Width, Height: hdr.Height, Pixfmt: hdr.Pixfmt},
		func(ctx context.Context, dec codec.Codec, p *pool.Pool) error {
			for {
				pkt, err := r.ReadPacket()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				if ctx.Err() != nil {
					return nil
				}
				f, err := dec.Decode(ctx, pkt.Payload, pkt.PTS)
				if err != nil {
					if ctx.Err() != nil {
						// Cancelled (SIGINT) while blocked acquiring a
						// frame under back-pressure: clean shutdown, not
						// a decode failure.
						return nil
					}
					return fberrors.New("orchestrator.decode", fberrors.DecodeError, err)
				}
				if f == nil {
					continue
				}
				p.Post(f)
				// Drop the decode-side reference Decode returned: the
				// frame is now owned solely by the display queue, which
				// releases it after Show.
				p.Release(f)
			}
		})
}

// run performs the full dependency-ordered startup, runs pump (the
// decode-loop body, specialized per entrypoint) alongside the display
// scheduler via an errgroup, and tears everything down in reverse
// order once both finish.
func run(ctx context.Context, opt config.Options, params codec.OpenParams,
	pumpFactory func(ctx context.Context, dec codec.Codec, p *pool.Pool) error) error {

	dec, _, err := codec.Registry.Find(opt.CodecDriver)
	if err != nil {
		return fberrors.New("orchestrator.run", fberrors.DriverNotFound, err)
	}

	dispDrv, dispParams, err := display.Registry.Find(opt.DisplayDriver)
	if err != nil {
		return fberrors.New("orchestrator.run", fberrors.DriverNotFound, err)
	}

	sourceFmt := codec.NegotiateFormat(params)

	caps := driver.Caps(0)
	if opt.Fullscreen {
		caps |= driver.Fullscreen
	}
	if !opt.SingleBuf {
		caps |= driver.DoubleBuf
	}

	dispFmt := sourceFmt
	display.FitFormat(&dispFmt, sourceFmt, caps, opt.NoAspect)

	dispFrames, err := dispDrv.Open(dispFmt, caps, dispParams)
	if err != nil {
		return fberrors.New("orchestrator.run", fberrors.DriverOpenFailed, err)
	}
	teardown := []func(){func() { logClose("display", dispDrv.Close()) }}
	defer runTeardown(&teardown)

	mm, mmParams, err := memman.Registry.Find(opt.MemmanDriver)
	if err != nil {
		return fberrors.New("orchestrator.run", fberrors.DriverNotFound, err)
	}

	var frames []*frame.Frame
	if dispFrames != nil {
		frames = dispFrames
	} else {
		frames, err = mm.Alloc(sourceFmt, uintptr(opt.PoolBudgetBytes), 0, mmParams)
		if err != nil {
			return fberrors.New("orchestrator.run", fberrors.ResourceExhausted, err)
		}
		teardown = append(teardown, func() { logClose("memman", mm.Free(frames)) })
	}

	p, err := pool.New(frames)
	if err != nil {
		return fberrors.New("orchestrator.run", fberrors.ResourceExhausted, err)
	}

	var conv pixconv.Pixconv
	var scratch *frame.Frame
	if !dispDrv.Caps().Has(driver.NoConv) && sourceFmt.Pixfmt != dispFmt.Pixfmt {
		convDrv, convParams, err := pixconv.Registry.Find(opt.PixconvDriver)
		if err != nil {
			return fberrors.New("orchestrator.run", fberrors.DriverNotFound, err)
		}
		if err := convDrv.Open(sourceFmt, dispFmt, convParams); err != nil {
			return fberrors.New("orchestrator.run", fberrors.DriverOpenFailed, err)
		}
		if convDrv.Caps().Has(driver.PhysMem) && !(mm.Caps().Has(driver.PhysMem) && dispDrv.Caps().Has(driver.PhysMem)) {
			convDrv.Close()
			return fberrors.New("orchestrator.run", fberrors.IncompatibleDrivers, nil)
		}
		teardown = append(teardown, func() { logClose("pixconv", convDrv.Close()) })
		conv = convDrv
		scratch = scratchFrame(dispFmt)
	}

	tmr, tmrParams, err := timer.Registry.Find(opt.TimerDriver)
	if err != nil {
		return fberrors.New("orchestrator.run", fberrors.DriverNotFound, err)
	}
	if err := tmr.Open(tmrParams); err != nil {
		return fberrors.New("orchestrator.run", fberrors.DriverOpenFailed, err)
	}
	teardown = append(teardown, func() { logClose("timer", tmr.Close()) })

	if _, err := dec.Open(opt.CodecDriver, params, p, ""); err != nil {
		return fberrors.New("orchestrator.run", fberrors.DriverOpenFailed, err)
	}
	teardown = append(teardown, func() { logClose("codec", dec.Close()) })

	var reg *metricsReg
	if opt.MetricsAddr != "" {
		reg = startMetrics(ctx, opt.MetricsAddr)
	}

	sched := &scheduler.Scheduler{
		Pool:            p,
		Display:         dispDrv,
		Timer:           tmr,
		Pixconv:         conv,
		Scratch:         scratch,
		FrameDurationNS: 1_000_000_000 * defaultFPSDen / defaultFPSNum,
		OnFPS: func(fps, depth int) {
			logging.Infof("\r%3d fps, buffer %3d", fps, depth)
			if reg != nil {
				reg.collectors.DisplayFPS.Set(float64(fps))
				reg.collectors.PoolDisplay.Set(float64(depth))
				reg.collectors.PoolFree.Set(float64(p.FreeDepth()))
				if rr, ok := tmr.(rttReporter); ok {
					for slave, rtt := range rr.RTTs() {
						reg.collectors.NetsyncRTT.WithLabelValues(slave).Set(float64(rtt))
					}
				}
			}
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	schedCtx, schedCancel := context.WithCancel(gctx)
	defer schedCancel()

	g.Go(func() error { return sched.Run(schedCtx) })
	g.Go(func() error {
		err := pumpFactory(gctx, dec, p)
		// Input exhausted cleanly: let the display drain whatever is
		// still queued before stopping the scheduler, matching the
		// reference engine's post-read-loop busy-wait on disp_tail.
		for gctx.Err() == nil && p.DisplayDepth() > 0 {
			if sleepErr := sleepUntil(gctx, 100*time.Millisecond); sleepErr != nil {
				break
			}
		}
		schedCancel()
		return err
	})

	return g.Wait()
}

func scratchFrame(fmt_ frame.Format) *frame.Frame {
	desc, _ := frame.GetPixfmt(fmt_.Pixfmt)
	sizes := memman.PlaneSizes(desc, fmt_.Height, fmt_.YStride, fmt_.UVStride)
	f := &frame.Frame{}
	for plane, sz := range sizes {
		f.Virt[plane] = make([]byte, sz)
	}
	for p := 0; p < 3; p++ {
		if desc.Plane[p] == 0 {
			f.Stride[p] = fmt_.YStride
		} else {
			f.Stride[p] = fmt_.UVStride
		}
	}
	return f
}

func logClose(what string, err error) {
	if err != nil {
		logging.Errorf("orchestrator: %s close: %v", what, err)
	}
}

func runTeardown(steps *[]func()) {
	s := *steps
	for i := len(s) - 1; i >= 0; i-- {
		s[i]()
	}
}

func sleepUntil(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
