package render

import (
	"math"
	"testing"
)

func TestCameraProject(t *testing.T) {
	c := NewCamera(800, 600, 200, 0, 0)

	tests := []struct {
		lat, lng, alt float64
		wantX, wantY  float64
		visible       bool
	}{
		{0, 0, 0, 400, 300, true},
		{0, 90, 0, 600, 300, true},   // Eastern limb
		{0, -90, 0, 200, 300, true},  // Western limb
		{90, 0, 0, 400, 100, true},   // North pole
		{0, 180, 0, 400, 300, false}, // Far side
		{0, 0, 0.5, 400, 300, true},
		{0, 100, 0.5, 400 + 300*math.Sin(100*degToRad), 300, true}, // Raised past the limb
	}

	for _, tt := range tests {
		x, y, vis := c.Project(tt.lat, tt.lng, tt.alt)
		if math.Abs(x-tt.wantX) > 0.5 || math.Abs(y-tt.wantY) > 0.5 || vis != tt.visible {
			t.Errorf("Project(%v, %v, %v) = (%.2f, %.2f, %v); want (%.2f, %.2f, %v)",
				tt.lat, tt.lng, tt.alt, x, y, vis, tt.wantX, tt.wantY, tt.visible)
		}
	}
}

func TestCameraLookAt(t *testing.T) {
	c := NewCamera(800, 600, 200, 30, 114)
	x, y, vis := c.Project(30, 114, 0)
	if !vis || math.Abs(x-400) > 1e-6 || math.Abs(y-300) > 1e-6 {
		t.Errorf("camera target projected to (%v, %v, %v), want the screen centre", x, y, vis)
	}
	if f := c.Facing(30, 114); math.Abs(f-1) > 1e-9 {
		t.Errorf("Facing at target = %v, want 1", f)
	}

	c.Rotate(250)
	if c.Lng != 4 {
		t.Errorf("Lng after rotating past the antimeridian = %v, want 4", c.Lng)
	}
	c.LookAt(120, 0)
	if c.Lat != 90 {
		t.Errorf("Lat was not clamped: %v", c.Lat)
	}
}

func TestGreatCircle(t *testing.T) {
	path := greatCircle(0, 0, 0, 90, 0.5, 4)
	if len(path) != 5 {
		t.Fatalf("got %d vertices, want 5", len(path))
	}
	first, last, mid := path[0], path[4], path[2]
	if math.Abs(first.Lng) > 1e-9 || math.Abs(last.Lng-90) > 1e-9 {
		t.Errorf("endpoints = %+v, %+v", first, last)
	}
	if math.Abs(mid.Lng-45) > 1e-9 || math.Abs(mid.Lat) > 1e-9 {
		t.Errorf("midpoint = %+v, want (0, 45)", mid)
	}
	if first.Alt != 0 || math.Abs(last.Alt) > 1e-9 || math.Abs(mid.Alt-0.5) > 1e-9 {
		t.Errorf("altitude profile = %v, %v, %v", first.Alt, mid.Alt, last.Alt)
	}

	// Identical endpoints must not divide by zero.
	for _, v := range greatCircle(10, 20, 10, 20, 0.1, 8) {
		if math.IsNaN(v.Lat) || math.IsNaN(v.Lng) || math.Abs(v.Lat-10) > 1e-6 {
			t.Fatalf("degenerate arc produced %+v", v)
		}
	}
}
