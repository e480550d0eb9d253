package render

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
	geojson "github.com/paulmach/go.geojson"
)

// hexSpacing returns the distance in degrees between neighbouring cell
// centres at the given hex resolution. Each resolution step divides the
// cell area by seven.
func hexSpacing(resolution int) float64 {
	if resolution < 0 {
		resolution = 0
	}
	return 16 / math.Pow(math.Sqrt(7), float64(resolution))
}

type landDot struct {
	Lat, Lng float64
}

type landShape struct {
	bound orb.Bound
	poly  orb.Polygon
}

// hexLand covers every polygon in fc with a staggered grid of dot centres
// spaced for the hex resolution. Features that are not polygons are ignored.
func hexLand(fc *geojson.FeatureCollection, resolution int) []landDot {
	if fc == nil {
		return nil
	}
	spacing := hexSpacing(resolution)
	shapes := landShapes(fc, spacing/4)
	if len(shapes) == 0 {
		return nil
	}

	var world orb.Bound
	for i, s := range shapes {
		if i == 0 {
			world = s.bound
			continue
		}
		world = world.Union(s.bound)
	}

	var dots []landDot
	rowStep := spacing * math.Sqrt(3) / 2
	row := 0
	for lat := -90 + rowStep/2; lat < 90; lat += rowStep {
		if lat < world.Min.Lat()-rowStep || lat > world.Max.Lat()+rowStep {
			row++
			continue
		}
		colStep := spacing / math.Max(math.Cos(lat*degToRad), 0.05)
		offset := 0.0
		if row%2 == 1 {
			offset = colStep / 2
		}
		for lng := -180 + offset; lng < 180; lng += colStep {
			p := orb.Point{lng, lat}
			for _, s := range shapes {
				if s.bound.Contains(p) && planar.PolygonContains(s.poly, p) {
					dots = append(dots, landDot{Lat: lat, Lng: lng})
					break
				}
			}
		}
		row++
	}
	return dots
}

func landShapes(fc *geojson.FeatureCollection, tolerance float64) []landShape {
	simplifier := simplify.DouglasPeucker(tolerance)
	var shapes []landShape
	add := func(rings [][][]float64) {
		poly := toOrbPolygon(rings)
		if len(poly) == 0 {
			return
		}
		if s, ok := simplifier.Simplify(poly.Clone()).(orb.Polygon); ok && len(s) > 0 && len(s[0]) >= 4 {
			poly = s
		}
		shapes = append(shapes, landShape{bound: poly.Bound(), poly: poly})
	}
	var walk func(g *geojson.Geometry)
	walk = func(g *geojson.Geometry) {
		if g == nil {
			return
		}
		switch {
		case g.IsPolygon():
			add(g.Polygon)
		case g.IsMultiPolygon():
			for _, p := range g.MultiPolygon {
				add(p)
			}
		case g.IsCollection():
			for _, c := range g.Geometries {
				walk(c)
			}
		}
	}
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		walk(f.Geometry)
	}
	return shapes
}

func toOrbPolygon(rings [][][]float64) orb.Polygon {
	poly := make(orb.Polygon, 0, len(rings))
	for _, ring := range rings {
		r := make(orb.Ring, 0, len(ring))
		for _, c := range ring {
			if len(c) < 2 {
				continue
			}
			r = append(r, orb.Point{c[0], c[1]})
		}
		if len(r) >= 3 {
			poly = append(poly, r)
		}
	}
	return poly
}
