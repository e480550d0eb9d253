package globe

import (
	"encoding/json"
	"math"
	"sync"

	geojson "github.com/paulmach/go.geojson"
)

// SanitizeCoordinates returns a structurally identical copy of a nested
// coordinate tree with every non-finite number replaced by 0. Values that are
// neither numbers nor sequences pass through unchanged. The input is never
// modified.
func SanitizeCoordinates(v any) any {
	out, _ := sanitizeAny(v)
	return out
}

func sanitizeAny(v any) (any, int) {
	switch t := v.(type) {
	case float64:
		if isFinite(t) {
			return t, 0
		}
		return 0.0, 1
	case float32:
		if isFinite(float64(t)) {
			return t, 0
		}
		return float32(0), 1
	case json.Number:
		f, err := t.Float64()
		if err != nil || !isFinite(f) {
			return json.Number("0"), 1
		}
		return t, 0
	case []float64:
		out, n := sanitize1(t)
		return out, n
	case [][]float64:
		out, n := sanitize2(t)
		return out, n
	case [][][]float64:
		out, n := sanitize3(t)
		return out, n
	case [][][][]float64:
		out, n := sanitize4(t)
		return out, n
	case []any:
		out := make([]any, len(t))
		n := 0
		for i, item := range t {
			var c int
			out[i], c = sanitizeAny(item)
			n += c
		}
		return out, n
	default:
		return v, 0
	}
}

func sanitize1(c []float64) ([]float64, int) {
	if c == nil {
		return nil, 0
	}
	out := make([]float64, len(c))
	n := 0
	for i, f := range c {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			n++
			continue
		}
		out[i] = f
	}
	return out, n
}

func sanitize2(c [][]float64) ([][]float64, int) {
	if c == nil {
		return nil, 0
	}
	out := make([][]float64, len(c))
	n := 0
	for i := range c {
		var k int
		out[i], k = sanitize1(c[i])
		n += k
	}
	return out, n
}

func sanitize3(c [][][]float64) ([][][]float64, int) {
	if c == nil {
		return nil, 0
	}
	out := make([][][]float64, len(c))
	n := 0
	for i := range c {
		var k int
		out[i], k = sanitize2(c[i])
		n += k
	}
	return out, n
}

func sanitize4(c [][][][]float64) ([][][][]float64, int) {
	if c == nil {
		return nil, 0
	}
	out := make([][][][]float64, len(c))
	n := 0
	for i := range c {
		var k int
		out[i], k = sanitize3(c[i])
		n += k
	}
	return out, n
}

// SanitizeGeometry returns a copy of g with all coordinate leaves finite and
// the number of leaves that had to be clamped.
func SanitizeGeometry(g *geojson.Geometry) (*geojson.Geometry, int) {
	if g == nil {
		return nil, 0
	}
	out := *g
	n := 0
	var k int
	out.BoundingBox, k = sanitize1(g.BoundingBox)
	n += k
	out.Point, k = sanitize1(g.Point)
	n += k
	out.MultiPoint, k = sanitize2(g.MultiPoint)
	n += k
	out.LineString, k = sanitize2(g.LineString)
	n += k
	out.MultiLineString, k = sanitize3(g.MultiLineString)
	n += k
	out.Polygon, k = sanitize3(g.Polygon)
	n += k
	out.MultiPolygon, k = sanitize4(g.MultiPolygon)
	n += k
	if g.Geometries != nil {
		out.Geometries = make([]*geojson.Geometry, len(g.Geometries))
		for i, child := range g.Geometries {
			out.Geometries[i], k = SanitizeGeometry(child)
			n += k
		}
	}
	return &out, n
}

// SanitizeFeatures returns a copy of fc whose geometries contain only finite
// coordinates, plus the total number of clamped leaves. Features without a
// geometry are passed through as-is. Properties are shared with the source.
func SanitizeFeatures(fc *geojson.FeatureCollection) (*geojson.FeatureCollection, int) {
	if fc == nil {
		return geojson.NewFeatureCollection(), 0
	}
	out := *fc
	out.Features = make([]*geojson.Feature, len(fc.Features))
	n := 0
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			out.Features[i] = f
			continue
		}
		cp := *f
		var k int
		cp.Geometry, k = SanitizeGeometry(f.Geometry)
		n += k
		out.Features[i] = &cp
	}
	return &out, n
}

// FeatureCache memoizes the sanitized form of the most recently seen feature
// collection, keyed by the identity of the source pointer.
type FeatureCache struct {
	mu      sync.Mutex
	src     *geojson.FeatureCollection
	clean   *geojson.FeatureCollection
	clamped int
}

// Get returns the sanitized collection for fc, computing it on first use.
// clamped is the number of leaves that were replaced when it was computed.
func (c *FeatureCache) Get(fc *geojson.FeatureCollection) (clean *geojson.FeatureCollection, clamped int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clean != nil && c.src == fc {
		return c.clean, c.clamped
	}
	c.clean, c.clamped = SanitizeFeatures(fc)
	c.src = fc
	return c.clean, c.clamped
}
