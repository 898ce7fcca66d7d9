// Package driver is the link-time-catalogue substitute: a small
// process-wide registry per driver category (codec, display, memman,
// pixconv, timer), each populated by a concrete driver package's init()
// and resolved at runtime by the "name[:params]" grammar the original
// engine's registry used. Styled on the registration/lookup split in the
// retrieval pack's periph.io registries (conn/spi/spireg, conn/gpio/gpioreg):
// Register from the driver's own init(), Find at use time, with an
// explicit slice preserving registration order for the "no name given"
// default-to-first-registered case.
package driver

import (
	"strings"
	"sync"

	"github.com/snapetech/fbplayer/internal/fberrors"
)

// Registry is a generic named-driver catalogue for category T.
type Registry[T any] struct {
	mu    sync.Mutex
	byName map[string]T
	order  []string
}

// NewRegistry returns an empty registry for driver type T.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{byName: make(map[string]T)}
}

// Register adds a driver under name. Registering the same name twice is
// a programming error (driver packages only ever call this from init()).
func (r *Registry[T]) Register(name string, d T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		panic("driver: duplicate registration for " + name)
	}
	r.byName[name] = d
	r.order = append(r.order, name)
}

// Find resolves a "name[:params]" spec string to a registered driver and
// the params substring (the text after the first colon, or "" if none).
// An empty spec returns the first-registered driver. The name portion is
// matched by exact equality against the registered name — no prefix or
// substring matching beyond splitting at the first colon.
func (r *Registry[T]) Find(spec string) (drv T, params string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if spec == "" {
		if len(r.order) == 0 {
			return drv, "", fberrors.New("driver.Find", fberrors.DriverNotFound, nil)
		}
		return r.byName[r.order[0]], "", nil
	}

	name := spec
	if i := strings.IndexByte(spec, ':'); i >= 0 {
		name = spec[:i]
		params = spec[i+1:]
	}

	d, ok := r.byName[name]
	if !ok {
		return drv, "", fberrors.New("driver.Find("+name+")", fberrors.DriverNotFound, nil)
	}
	return d, params, nil
}

// Names returns the registered names in registration order.
func (r *Registry[T]) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
