package globe

import (
	"image/color"
)

// Point is a marker at one endpoint of a valid arc.
type Point struct {
	Lat   float64
	Lng   float64
	Order int
	Size  float64
	RGB   color.RGBA
	Color ColorFunc
}

// Logf is the printf-style sink used for local-and-skip diagnostics.
type Logf func(format string, args ...any)

// ProjectPoints turns arcs into a deduplicated list of endpoint markers.
//
// Arcs with a non-finite field are ignored. Each surviving arc contributes
// its start and end endpoints when their lat/lng pair is finite. Arcs whose
// color cannot be parsed are skipped and reported through logf (which may be
// nil). The result is deduplicated by exact (Lat, Lng), first occurrence
// winning.
func ProjectPoints(arcs []Arc, size float64, logf Logf) []Point {
	valid := ValidArcs(arcs)
	points := make([]Point, 0, len(valid)*2)
	for _, a := range valid {
		ends, ok := Endpoints(a, size)
		if !ok {
			if logf != nil {
				logf("Skipping arc %d: unparseable color %q", a.Order, a.Color)
			}
			continue
		}
		points = append(points, ends...)
	}
	return DedupePoints(points)
}

// Endpoints returns the markers for the start and end of a, keeping only the
// endpoints whose own lat/lng pair is finite. It does not apply the arc
// validity filter. ok is false when the arc color cannot be parsed.
func Endpoints(a Arc, size float64) (points []Point, ok bool) {
	rgb, ok := HexToRGB(a.Color)
	if !ok {
		return nil, false
	}
	fade := FadeColor(rgb)
	if isFinite(a.StartLat) && isFinite(a.StartLng) {
		points = append(points, Point{Lat: a.StartLat, Lng: a.StartLng, Order: a.Order, Size: size, RGB: rgb, Color: fade})
	}
	if isFinite(a.EndLat) && isFinite(a.EndLng) {
		points = append(points, Point{Lat: a.EndLat, Lng: a.EndLng, Order: a.Order, Size: size, RGB: rgb, Color: fade})
	}
	return points, true
}

type latLng struct{ lat, lng float64 }

// DedupePoints removes points sharing an exact (Lat, Lng) with an earlier
// point. Order, size and color of later duplicates are discarded.
func DedupePoints(points []Point) []Point {
	seen := make(map[latLng]struct{}, len(points))
	out := make([]Point, 0, len(points))
	for _, p := range points {
		k := latLng{p.Lat, p.Lng}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}
