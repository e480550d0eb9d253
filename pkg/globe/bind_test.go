package globe

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	geojson "github.com/paulmach/go.geojson"
)

func sampleArcs() []Arc {
	return []Arc{
		{Order: 1, StartLat: -19.885592, StartLng: -43.951191, EndLat: -22.9068, EndLng: -43.1729, ArcAlt: 0.1, Color: "#06b6d4"},
		{Order: 2, StartLat: 28.6139, StartLng: 77.209, EndLat: 3.139, EndLng: 101.6869, ArcAlt: 0.2, Color: "#3b82f6"},
		{Order: 3, StartLat: -19.885592, StartLng: -43.951191, EndLat: -1.303396, EndLng: 36.852443, ArcAlt: 0.5, Color: "#6366f1"},
	}
}

func TestBindOrderAndValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ArcTime, cfg.ArcLength, cfg.MaxRings = 1000, 0.5, 3

	arcs := append(sampleArcs(), Arc{Order: 4, StartLat: math.NaN(), Color: "#fff"})
	points := ProjectPoints(arcs, cfg.PointSize, nil)
	fc := geojson.NewFeatureCollection()

	rec := &Recorder{}
	if err := Bind(rec, cfg, fc, arcs, points, rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	wantCalls := []string{"polygons", "arcs", "points", "rings", "material"}
	if got := rec.Calls(); !reflect.DeepEqual(got, wantCalls) {
		t.Errorf("calls = %v, want %v", got, wantCalls)
	}

	if rec.Polygons.Resolution != 3 || rec.Polygons.Margin != 0.7 || rec.Polygons.Features != fc {
		t.Errorf("polygon layer = %+v", rec.Polygons)
	}
	if !rec.Polygons.ShowAtmosphere || rec.Polygons.Color != "rgba(255,255,255,0.7)" {
		t.Errorf("atmosphere/polygon color = %+v", rec.Polygons)
	}

	if len(rec.Arcs.Arcs) != 3 {
		t.Fatalf("arc layer has %d arcs, want the 3 valid ones", len(rec.Arcs.Arcs))
	}
	for i, a := range rec.Arcs.Arcs {
		if a.DashInitialGap != float64(i+1) {
			t.Errorf("arc %d initial gap = %v, want %d", i, a.DashInitialGap, i+1)
		}
		if a.Stroke != 0.32 && a.Stroke != 0.28 && a.Stroke != 0.3 {
			t.Errorf("arc %d stroke = %v, not in the stroke set", i, a.Stroke)
		}
	}
	if rec.Arcs.DashGap != 15 || rec.Arcs.DashLength != 0.5 || rec.Arcs.DashAnimateTime != 1000 {
		t.Errorf("arc layer timings = %+v", rec.Arcs)
	}

	if !rec.Points.Merge || rec.Points.Radius != 2 || rec.Points.Altitude != 0 || len(rec.Points.Points) != 5 {
		t.Errorf("point layer = %+v", rec.Points)
	}

	if len(rec.Rings.Data) != 0 || rec.Rings.MaxRadius != 3 || rec.Rings.PropagationSpeed != 3 || rec.Rings.RepeatPeriod != 500 {
		t.Errorf("ring layer = %+v", rec.Rings)
	}

	if rec.Material.Color != "#1d072e" || rec.Material.EmissiveIntensity != 0.1 || rec.Material.Shininess != 0.9 {
		t.Errorf("material = %+v", rec.Material)
	}
}

func TestBindLights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AmbientLight = "#38bdf8"
	cfg.DirectionalLeftLight = "#ff0000"
	cfg.DirectionalTopLight = "#00ff00"
	cfg.PointLight = "#0000ff"

	rec := &Recorder{}
	if err := Bind(rec, cfg, nil, sampleArcs(), nil, rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	want := Lights{Ambient: "#38bdf8", DirectionalLeft: "#ff0000", DirectionalTop: "#00ff00", Point: "#0000ff"}
	if got := rec.Material.Lights; got != want {
		t.Errorf("lights = %+v, want %+v", got, want)
	}

	rec = &Recorder{}
	if err := Bind(rec, DefaultConfig(), nil, nil, nil, rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	white := Lights{Ambient: "#ffffff", DirectionalLeft: "#ffffff", DirectionalTop: "#ffffff", Point: "#ffffff"}
	if got := rec.Material.Lights; got != white {
		t.Errorf("default lights = %+v, want %+v", got, white)
	}
}

func TestBindNeverSendsNaN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AtmosphereAltitude = math.NaN()
	cfg.ArcLength = math.Inf(1)

	rec := &Recorder{}
	points := []Point{{Lat: math.NaN(), Lng: 1, Size: math.Inf(-1)}}
	if err := Bind(rec, cfg, nil, sampleArcs(), points, rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if rec.Polygons.AtmosphereAltitude != 0 || rec.Arcs.DashLength != 0 {
		t.Errorf("non-finite config leaked: %v %v", rec.Polygons.AtmosphereAltitude, rec.Arcs.DashLength)
	}
	if p := rec.Points.Points[0]; p.Lat != 0 || p.Size != 0 {
		t.Errorf("non-finite point leaked: %+v", p)
	}
	if rec.Rings.RepeatPeriod != 0 {
		t.Errorf("repeat period = %v, want 0", rec.Rings.RepeatPeriod)
	}
}

func TestBindStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	rec := &Recorder{Fail: func(call string) error {
		if call == "arcs" {
			return boom
		}
		return nil
	}}
	err := Bind(rec, DefaultConfig(), nil, sampleArcs(), nil, rand.New(rand.NewSource(1)))
	if !errors.Is(err, boom) {
		t.Fatalf("Bind error = %v, want boom", err)
	}
	if got := rec.Calls(); !reflect.DeepEqual(got, []string{"polygons"}) {
		t.Errorf("calls after failure = %v", got)
	}
}

func TestBindStrokeIsRandomized(t *testing.T) {
	arcs := make([]Arc, 60)
	for i := range arcs {
		arcs[i] = Arc{Order: i, StartLat: 1, StartLng: 1, EndLat: 2, EndLng: 2, ArcAlt: 0.1, Color: "#fff"}
	}
	rec := &Recorder{}
	if err := Bind(rec, DefaultConfig(), nil, arcs, nil, rand.New(rand.NewSource(9))); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	seen := map[float64]bool{}
	for _, a := range rec.Arcs.Arcs {
		seen[a.Stroke] = true
	}
	if len(seen) != 3 {
		t.Errorf("60 arcs used strokes %v, want all three widths", seen)
	}
}
