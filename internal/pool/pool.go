// Package pool implements the fixed-size frame pool and its two
// intrusive queues: a LIFO free list gated by a counting semaphore
// for back-pressure, and a FIFO display queue a single dedicated
// scheduler drains. Grounded on the producer/consumer shape of the
// reference decoder's get_frame/put_frame/post_frame trio, rebuilt with
// golang.org/x/sync/semaphore standing in for the POSIX counting
// semaphores and an explicit mutex guarding the free list (the source
// relies on the free list only ever being touched by one thread at a
// time, which isn't quite true once a buffer-owning display driver also
// recycles frames from its own goroutine — this rewrite makes that
// safe rather than replicate the race).
package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/snapetech/fbplayer/internal/fberrors"
	"github.com/snapetech/fbplayer/internal/frame"
	"github.com/snapetech/fbplayer/internal/logging"
)

// Pool owns a fixed array of frame descriptors circulated between a
// decoder and a display scheduler.
type Pool struct {
	frames []*frame.Frame

	freeMu           sync.Mutex
	freeHead, freeTail int
	freeSem          *semaphore.Weighted

	dispMu                     sync.Mutex
	dispHead, dispTail, dispCount int
	// dispCh signals a posted frame. Unlike freeSem, the display queue
	// has no initial holder to pre-acquire against -- the producer
	// (decode pump) posts before any consumer waits -- so a
	// semaphore.Weighted (cur starts at 0, Release only ever adds)
	// cannot model it: the first Post's Release would drive it
	// negative and panic. A buffered channel sized to the pool needs
	// no pre-acquired permit and can never fill past capacity, since at
	// most len(frames) frames can be outstanding at once.
	dispCh                     chan struct{}

	age uint64

	// outstanding tracks checked-out frames for FreeCapacityExhausted's
	// benefit; semaphore.Weighted exposes no way to peek its current
	// value without consuming a permit.
	outstanding   atomic.Int64
	freeCapacity  int64
}

// New builds a pool over an already-allocated slice of frame
// descriptors (produced by a memman driver), linking the free list
// exactly as the reference engine's init_frames does: frames[i].Next =
// i+1, frames[i].Prev = i-1, Refs = 0, PicNum = -len(frames), and the
// free semaphore seeded at len(frames)-1 — one slot deliberately held
// back so the first Acquire never races a spuriously-woken waiter.
func New(frames []*frame.Frame) (*Pool, error) {
	n := len(frames)
	if n < 2 {
		return nil, fberrors.New("pool.New", fberrors.ResourceExhausted,
			fmt.Errorf("pool size %d below minimum of 2", n))
	}

	for i, f := range frames {
		f.Index = i
		f.PicNum = -int64(n)
		f.Next = i + 1
		f.Prev = i - 1
		f.Refs = 0
	}
	frames[n-1].Next = -1

	p := &Pool{
		frames:       frames,
		freeHead:     n - 1,
		freeTail:     0,
		dispHead:     -1,
		dispTail:     -1,
		freeSem:      semaphore.NewWeighted(int64(n)),
		dispCh:       make(chan struct{}, n),
		freeCapacity: int64(n - 1),
	}
	// Seed to n-1: immediately consume one permit that is never returned,
	// so at most n-1 frames are ever checked out at once.
	if !p.freeSem.TryAcquire(1) {
		panic("pool: impossible initial semaphore contention")
	}
	return p, nil
}

// Size returns the number of frames in the pool.
func (p *Pool) Size() int { return len(p.frames) }

// FreeCapacityExhausted reports whether every free-semaphore permit is
// currently checked out, i.e. the pool has been fully primed at least
// once. Used by the scheduler's warmup phase.
func (p *Pool) FreeCapacityExhausted() bool {
	return p.outstanding.Load() >= p.freeCapacity
}

// Acquire blocks until a frame is available (or ctx is cancelled),
// unlinks it from the tail of the free list, bumps Refs and Age, and
// returns it.
func (p *Pool) Acquire(ctx context.Context) (*frame.Frame, error) {
	if err := p.freeSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	p.freeMu.Lock()
	defer p.freeMu.Unlock()

	if p.freeTail < 0 {
		logging.Errorf("pool: no more buffers")
		return nil, fberrors.New("pool.Acquire", fberrors.ResourceExhausted, nil)
	}

	f := p.frames[p.freeTail]
	p.freeTail = f.Next
	if p.freeTail >= 0 {
		p.frames[p.freeTail].Prev = -1
	}
	f.Next = -1
	f.Refs++
	p.age++
	f.Age = p.age
	p.outstanding.Add(1)

	return f, nil
}

// Release drops a reference. When the count reaches zero the frame is
// pushed back onto the tail of the free list, the end Acquire takes
// from, so the most recently released frame is the next one handed
// out, and a free-semaphore permit is posted.
func (p *Pool) Release(f *frame.Frame) {
	p.freeMu.Lock()
	defer p.freeMu.Unlock()

	f.Refs--
	if f.Refs > 0 {
		return
	}
	if f.Refs < 0 {
		panic("pool: Release called more times than Acquire/Post")
	}

	f.Prev = -1
	f.Next = p.freeTail
	if p.freeTail != -1 {
		p.frames[p.freeTail].Prev = f.Index
	}
	p.freeTail = f.Index
	p.freeSem.Release(1)
	p.outstanding.Add(-1)
}

// Post appends f to the head of the display FIFO, bumps Refs (the frame
// is now referenced both by whatever the decoder may still hold and by
// the display queue), and always signals the display channel. The
// reference implementation only signalled when the FIFO count exceeded
// one after the enqueue, which strands the first frame enqueued on an
// otherwise-empty queue; that guard is deliberately not reproduced here.
func (p *Pool) Post(f *frame.Frame) {
	p.dispMu.Lock()

	if p.dispTail == -1 {
		// Empty FIFO: dispHead may still name the last frame popped.
		p.dispHead = -1
	}
	f.Prev = p.dispHead
	f.Next = -1
	if p.dispHead != -1 {
		p.frames[p.dispHead].Next = f.Index
	}
	p.dispHead = f.Index
	if p.dispTail == -1 {
		p.dispTail = f.Index
	}
	p.dispCount++

	p.dispMu.Unlock()

	f.Refs++
	p.dispCh <- struct{}{}
}

// WaitDisplay blocks until a frame is enqueued (or ctx is cancelled).
func (p *Pool) WaitDisplay(ctx context.Context) error {
	select {
	case <-p.dispCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PopDisplay unlinks and returns the tail of the display FIFO. Callers
// must have already observed a successful WaitDisplay.
func (p *Pool) PopDisplay() *frame.Frame {
	p.dispMu.Lock()
	defer p.dispMu.Unlock()

	f := p.frames[p.dispTail]
	p.dispTail = f.Next
	if p.dispTail != -1 {
		p.frames[p.dispTail].Prev = -1
	}
	p.dispCount--
	f.Next = -1
	return f
}

// DisplayDepth returns the current display FIFO length, for diagnostics.
func (p *Pool) DisplayDepth() int {
	p.dispMu.Lock()
	defer p.dispMu.Unlock()
	return p.dispCount
}

// FreeDepth returns the number of frames currently sitting on the free
// list, for diagnostics.
func (p *Pool) FreeDepth() int {
	return len(p.frames) - int(p.outstanding.Load())
}

// Drain releases every frame still queued for display, in FIFO order.
// Used during shutdown once the scheduler's main loop has exited.
func (p *Pool) Drain() {
	for {
		p.dispMu.Lock()
		if p.dispTail == -1 {
			p.dispMu.Unlock()
			return
		}
		f := p.frames[p.dispTail]
		p.dispTail = f.Next
		if p.dispTail != -1 {
			p.frames[p.dispTail].Prev = -1
		}
		p.dispCount--
		p.dispMu.Unlock()

		p.Release(f)
	}
}
