package globe

import (
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync/atomic"
)

// Boundary contains panics raised while building or drawing a globe. The
// first panic trips it; from then on the guarded work is replaced by the
// fallback. A tripped boundary never resets, so a fresh Boundary (a new
// mount) is needed to try again.
type Boundary struct {
	fallback func()
	logger   *log.Logger
	onTrip   func()
	tripped  atomic.Bool
}

// ErrTripped is returned by Guard once the boundary has tripped.
var ErrTripped = errors.New("globe: fault boundary tripped")

// NewBoundary returns a boundary that runs fallback (nil draws nothing)
// after tripping. logger may be nil to use the standard logger.
func NewBoundary(fallback func(), logger *log.Logger) *Boundary {
	if logger == nil {
		logger = log.Default()
	}
	return &Boundary{fallback: fallback, logger: logger}
}

// OnTrip registers a hook called once, right after the boundary trips.
func (b *Boundary) OnTrip(fn func()) { b.onTrip = fn }

// Tripped reports whether a panic has been contained.
func (b *Boundary) Tripped() bool { return b.tripped.Load() }

// Render runs fn unless the boundary has tripped, in which case it runs the
// fallback. A panic in fn trips the boundary, is not propagated, and the
// fallback is rendered for that same pass.
func (b *Boundary) Render(fn func()) {
	if b.Tripped() {
		b.renderFallback()
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.trip("render", r)
			b.renderFallback()
		}
	}()
	fn()
}

func (b *Boundary) renderFallback() {
	if b.fallback != nil {
		b.fallback()
	}
}

// Guard runs fn and returns its error. A panic in fn trips the boundary and
// is returned as an error. Once tripped, fn is no longer called and
// ErrTripped is returned.
func (b *Boundary) Guard(name string, fn func() error) (err error) {
	if b.Tripped() {
		return ErrTripped
	}
	defer func() {
		if r := recover(); r != nil {
			b.trip(name, r)
			err = fmt.Errorf("%s: %v: %w", name, r, ErrTripped)
		}
	}()
	return fn()
}

func (b *Boundary) trip(name string, r any) {
	if !b.tripped.CompareAndSwap(false, true) {
		return
	}
	b.logger.Printf("Invalid geometry skipped (%s): %v\n%s", name, r, debug.Stack())
	if b.onTrip != nil {
		b.onTrip()
	}
}
