package globe

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

func TestBoundaryRenderContainsPanic(t *testing.T) {
	var buf bytes.Buffer
	fallbacks := 0
	b := NewBoundary(func() { fallbacks++ }, log.New(&buf, "", 0))

	trips := 0
	b.OnTrip(func() { trips++ })

	b.Render(func() { panic("computeBoundingSphere: NaN") })

	if !b.Tripped() {
		t.Fatal("boundary did not trip")
	}
	if !strings.Contains(buf.String(), "Invalid geometry skipped") {
		t.Errorf("warning not logged: %q", buf.String())
	}
	if fallbacks != 1 {
		t.Errorf("fallback ran %d times on the failing pass, want 1", fallbacks)
	}

	ran := false
	b.Render(func() { ran = true })
	if ran {
		t.Errorf("children rendered after the boundary tripped")
	}
	if fallbacks != 2 {
		t.Errorf("fallback ran %d times, want 2", fallbacks)
	}

	b.Render(func() { panic("again") })
	if trips != 1 {
		t.Errorf("OnTrip ran %d times, want 1", trips)
	}
}

func TestBoundaryNilFallbackRendersNothing(t *testing.T) {
	b := NewBoundary(nil, log.New(&bytes.Buffer{}, "", 0))
	b.Render(func() { panic("boom") })
	b.Render(func() { t.Error("child rendered after trip") })
}

func TestBoundaryGuard(t *testing.T) {
	b := NewBoundary(nil, log.New(&bytes.Buffer{}, "", 0))

	plain := errors.New("plain")
	if err := b.Guard("step", func() error { return plain }); !errors.Is(err, plain) {
		t.Errorf("Guard returned %v, want the function's error", err)
	}
	if b.Tripped() {
		t.Fatal("an ordinary error tripped the boundary")
	}

	err := b.Guard("step", func() error { panic("deep failure") })
	if !errors.Is(err, ErrTripped) {
		t.Errorf("Guard after panic = %v, want ErrTripped", err)
	}
	called := false
	if err := b.Guard("step", func() error { called = true; return nil }); !errors.Is(err, ErrTripped) || called {
		t.Errorf("tripped Guard = %v (called=%v)", err, called)
	}
}
