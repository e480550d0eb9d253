package render

import (
	"math/rand"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/arc-globe/pkg/globe"
)

// BenchmarkDrawGlobe measures a full frame with every layer populated.
// High allocations per op here usually mean something is rebuilt per frame.
func BenchmarkDrawGlobe(b *testing.B) {
	width, height := 1920, 1080
	e := NewEngine(width, height, 400)
	e.InitTextures()

	rng := rand.New(rand.NewSource(1))
	fc := geojson.NewFeatureCollection()
	for i := 0; i < 12; i++ {
		fc.AddFeature(geojson.NewPolygonFeature(square(float64(i*28-170), float64(i*5-30), 15)))
	}
	arcs := make([]globe.Arc, 200)
	for i := range arcs {
		arcs[i] = globe.Arc{
			Order:    i % 10,
			StartLat: rng.Float64()*140 - 70, StartLng: rng.Float64()*360 - 180,
			EndLat: rng.Float64()*140 - 70, EndLng: rng.Float64()*360 - 180,
			ArcAlt: rng.Float64() * 0.5, Color: "#06b6d4",
		}
	}
	cfg := globe.DefaultConfig()
	points := globe.ProjectPoints(arcs, cfg.PointSize, nil)
	if err := globe.Bind(e, cfg, fc, arcs, points, rng); err != nil {
		b.Fatal(err)
	}
	if err := e.SetRingData(globe.SelectRings(points, globe.SampleIndices(rng, 0, len(arcs), globe.RingCount(len(arcs))))); err != nil {
		b.Fatal(err)
	}

	screen := ebiten.NewImage(width, height)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e.Draw(screen)
	}
}
