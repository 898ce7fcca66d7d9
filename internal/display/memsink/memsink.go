// Package memsink implements an in-memory display driver that keeps a
// ring buffer of the last N shown frames, entirely heap-backed. It is
// the reference display used by tests and by the speed/timing-only
// invocation mode (the Go replacement for the reference engine's
// speed_test path, which discards decoded pictures as fast as they
// arrive without touching any hardware).
package memsink

import (
	"strconv"
	"sync"

	"github.com/snapetech/fbplayer/internal/display"
	"github.com/snapetech/fbplayer/internal/driver"
	"github.com/snapetech/fbplayer/internal/fberrors"
	"github.com/snapetech/fbplayer/internal/frame"
)

func init() {
	display.Registry.Register("mem", &Sink{})
}

// Sink stores the last capacity frames shown to it, by value copy of
// their Virt planes, for inspection by callers (typically tests).
type Sink struct {
	mu       sync.Mutex
	capacity int
	fmt      frame.Format
	history  [][3][]byte
	shown    int
}

// Open accepts an optional params string giving the ring buffer depth
// (defaults to 4).
func (s *Sink) Open(fmt frame.Format, caps driver.Caps, params string) ([]*frame.Frame, error) {
	depth := 4
	if params != "" {
		n, err := strconv.Atoi(params)
		if err != nil || n <= 0 {
			return nil, fberrors.New("memsink.Open", fberrors.DriverOpenFailed, err)
		}
		depth = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.capacity = depth
	s.fmt = fmt
	s.history = nil
	s.shown = 0
	return nil, nil
}

func (s *Sink) Show(f *frame.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cp [3][]byte
	for i, p := range f.Virt {
		if p != nil {
			cp[i] = append([]byte(nil), p...)
		}
	}
	s.history = append(s.history, cp)
	if len(s.history) > s.capacity {
		s.history = s.history[len(s.history)-s.capacity:]
	}
	s.shown++
	return nil
}

func (s *Sink) Caps() driver.Caps { return 0 }

func (s *Sink) Close() error { return nil }

// Shown returns the total number of frames presented since Open.
func (s *Sink) Shown() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

// Last returns the most recently shown frame's plane data, or false if
// nothing has been shown yet.
func (s *Sink) Last() ([3][]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return [3][]byte{}, false
	}
	return s.history[len(s.history)-1], true
}
