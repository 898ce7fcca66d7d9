// Package config parses the engine's command line into an immutable
// Options value, the way the teacher's own cmd/plex-tuner/main.go
// parses its flags with the stdlib flag package rather than a
// third-party CLI framework. Flag letters are unchanged from the
// original engine's getopt string "b:d:fFM:P:st:T:v:", plus -m, which
// the original never had, for the debug metrics listener.
package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/snapetech/fbplayer/internal/fberrors"
)

// Options is the parsed, validated command line.
type Options struct {
	// InputFile is the positional argument; empty when TestPattern is set.
	InputFile string

	PoolBudgetBytes int64

	DisplayDriver string
	MemmanDriver  string
	PixconvDriver string
	TimerDriver   string
	CodecDriver   string

	Fullscreen bool
	NoAspect   bool
	SingleBuf  bool

	// TestPattern holds the raw "WxHxN" argument to -t, or "" when not
	// running a speed test.
	TestPattern string

	// MetricsAddr is the -m listen address for the debug /metrics
	// endpoint. Empty disables it.
	MetricsAddr string
}

// TestPatternSize is a parsed "WxHxN" speed-test argument.
type TestPatternSize struct {
	Width, Height uint
	Frames        int
}

// defaultPoolBudgetMB matches the reference engine's default of 64 MB.
const defaultPoolBudgetMB = 64

// Parse parses args (excluding argv[0]) into Options. It never calls
// os.Exit; callers translate errors to exit codes themselves.
func Parse(args []string) (Options, error) {
	fs := flag.NewFlagSet("fbplayer", flag.ContinueOnError)

	bufMB := fs.Int("b", defaultPoolBudgetMB, "pool budget in megabytes")
	disp := fs.String("d", "", "display driver spec name[:params]")
	fullscreen := fs.Bool("f", false, "fullscreen, aspect-preserving scale")
	noAspect := fs.Bool("F", false, "fullscreen, aspect distortion allowed")
	single := fs.Bool("s", false, "single-buffer (disable double buffering)")
	test := fs.String("t", "", "speed test WxHxN: render N test-pattern frames at WxH")
	memman := fs.String("M", "", "memman driver spec name[:params]")
	pixconv := fs.String("P", "", "pixconv driver spec name[:params]")
	timer := fs.String("T", "system", "timer driver spec (system or netsync:...)")
	codec := fs.String("v", "", "video codec driver spec name[:params]")
	metrics := fs.String("m", "", "debug metrics listen address (empty disables)")

	if err := fs.Parse(args); err != nil {
		return Options{}, fberrors.New("config.Parse", fberrors.UsageError, err)
	}

	opt := Options{
		PoolBudgetBytes: int64(*bufMB) * 1048576,
		DisplayDriver:   *disp,
		MemmanDriver:    *memman,
		PixconvDriver:   *pixconv,
		TimerDriver:     *timer,
		CodecDriver:     *codec,
		Fullscreen:      *fullscreen || *noAspect,
		NoAspect:        *noAspect,
		SingleBuf:       *single,
		TestPattern:     *test,
		MetricsAddr:     *metrics,
	}

	rest := fs.Args()
	if opt.TestPattern != "" {
		if _, err := ParseTestPattern(opt.TestPattern); err != nil {
			return Options{}, fberrors.New("config.Parse", fberrors.UsageError, err)
		}
		return opt, nil
	}

	if len(rest) < 1 {
		return Options{}, fberrors.New("config.Parse", fberrors.UsageError,
			fmt.Errorf("missing input-file argument"))
	}
	opt.InputFile = rest[0]

	return opt, nil
}

// ParseTestPattern parses a "WxHxN" argument as used by -t.
func ParseTestPattern(s string) (TestPatternSize, error) {
	parts := strings.Split(s, "x")
	if len(parts) != 3 {
		return TestPatternSize{}, fmt.Errorf("test pattern %q: want WxHxN", s)
	}
	w, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return TestPatternSize{}, fmt.Errorf("test pattern %q: bad width: %w", s, err)
	}
	h, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return TestPatternSize{}, fmt.Errorf("test pattern %q: bad height: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n <= 0 {
		return TestPatternSize{}, fmt.Errorf("test pattern %q: bad frame count", s)
	}
	return TestPatternSize{Width: uint(w), Height: uint(h), Frames: n}, nil
}
