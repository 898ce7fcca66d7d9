// Package logging centralizes the engine's stderr output conventions:
// a package-level *log.Logger (matching the timestamp-free, prefix-free
// style the command-line tools in the retrieval pack use for progress
// output), plus a rate-limited path for noisy recoverable errors such
// as repeated netsync protocol violations, built on
// golang.org/x/time/rate.Sometimes so a misbehaving peer can't flood
// stderr.
package logging

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var std = log.New(os.Stderr, "", 0)

const rateInterval = 2 * time.Second

// SetOutput redirects the package logger, mainly for tests.
func SetOutput(w interface {
	Write([]byte) (int, error)
}) {
	std.SetOutput(w)
}

// Infof logs an informational line.
func Infof(format string, args ...any) {
	std.Output(2, fmt.Sprintf(format, args...))
}

// Errorf logs an error line unconditionally.
func Errorf(format string, args ...any) {
	std.Output(2, "error: "+fmt.Sprintf(format, args...))
}

var (
	rateLimited   = map[string]*rate.Sometimes{}
	rateLimitedMu sync.Mutex
)

// RateLimited logs under key at most once per 2 seconds, dropping
// intervening calls silently. Used for conditions a misbehaving peer
// (or a stuck driver) could otherwise repeat thousands of times a
// second, e.g. malformed netsync packets.
func RateLimited(key, format string, args ...any) {
	rateLimitedMu.Lock()
	s, ok := rateLimited[key]
	if !ok {
		s = &rate.Sometimes{Interval: rateInterval}
		rateLimited[key] = s
	}
	rateLimitedMu.Unlock()

	s.Do(func() {
		Errorf(format, args...)
	})
}
