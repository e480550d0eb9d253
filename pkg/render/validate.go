package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	geojson "github.com/paulmach/go.geojson"
)

// BoundsError is the panic value raised by a layer setter handed non-finite
// geometry. The bounds of such a layer cannot be computed.
type BoundsError struct {
	Layer string
	// Index is the offending item, or -1 for a layer-wide parameter.
	Index int
}

func (e *BoundsError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("render: %s layer: computed bounding sphere radius is NaN", e.Layer)
	}
	return fmt.Sprintf("render: %s layer: item %d: computed bounding sphere radius is NaN", e.Layer, e.Index)
}

func checkFinite(layer string, index int, vals ...float64) {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			panic(&BoundsError{Layer: layer, Index: index})
		}
	}
}

func checkFeatures(fc *geojson.FeatureCollection) {
	if fc == nil {
		return
	}
	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		checkGeometry(i, f.Geometry)
	}
}

func checkGeometry(i int, g *geojson.Geometry) {
	if g == nil {
		return
	}
	check := func(c []float64) { checkFinite("polygons", i, c...) }
	check(g.BoundingBox)
	check(g.Point)
	for _, c := range g.MultiPoint {
		check(c)
	}
	for _, c := range g.LineString {
		check(c)
	}
	for _, l := range g.MultiLineString {
		for _, c := range l {
			check(c)
		}
	}
	for _, r := range g.Polygon {
		for _, c := range r {
			check(c)
		}
	}
	for _, p := range g.MultiPolygon {
		for _, r := range p {
			for _, c := range r {
				check(c)
			}
		}
	}
	for _, sub := range g.Geometries {
		checkGeometry(i, sub)
	}
}

func strokeLine(dst *ebiten.Image, x1, y1, x2, y2 float64, width float32, c color.RGBA) {
	vector.StrokeLine(dst, float32(x1), float32(y1), float32(x2), float32(y2), width, c, true)
}
