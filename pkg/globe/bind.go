package globe

import (
	"fmt"
	"math/rand"

	geojson "github.com/paulmach/go.geojson"
)

// Bind pushes one complete data version into s. The calls are issued in a
// fixed order (polygons, arcs, points, rings, material) and the first error
// stops the sequence. features must already be sanitized. Apart from the
// per-arc stroke width, which is drawn from ArcStrokes with rng, the layers
// depend only on the arguments.
func Bind(s Surface, cfg Config, features *geojson.FeatureCollection, arcs []Arc, points []Point, rng *rand.Rand) error {
	if err := s.SetPolygons(polygonLayer(cfg, features)); err != nil {
		return fmt.Errorf("polygon layer: %w", err)
	}
	if err := s.SetArcs(arcLayer(cfg, arcs, rng)); err != nil {
		return fmt.Errorf("arc layer: %w", err)
	}
	if err := s.SetPoints(pointLayer(points)); err != nil {
		return fmt.Errorf("point layer: %w", err)
	}
	if err := s.SetRings(ringLayer(cfg)); err != nil {
		return fmt.Errorf("ring layer: %w", err)
	}
	if err := s.SetMaterial(material(cfg)); err != nil {
		return fmt.Errorf("material: %w", err)
	}
	return nil
}

func polygonLayer(cfg Config, features *geojson.FeatureCollection) PolygonLayer {
	return PolygonLayer{
		Features:           features,
		Resolution:         HexPolygonResolution,
		Margin:             HexPolygonMargin,
		ShowAtmosphere:     cfg.ShowAtmosphere,
		AtmosphereColor:    cfg.AtmosphereColor,
		AtmosphereAltitude: finiteOr0(cfg.AtmosphereAltitude),
		Color:              cfg.PolygonColor,
	}
}

func arcLayer(cfg Config, arcs []Arc, rng *rand.Rand) ArcLayer {
	valid := ValidArcs(arcs)
	data := make([]ArcDatum, len(valid))
	for i, a := range valid {
		data[i] = ArcDatum{
			StartLat:       finiteOr0(a.StartLat),
			StartLng:       finiteOr0(a.StartLng),
			EndLat:         finiteOr0(a.EndLat),
			EndLng:         finiteOr0(a.EndLng),
			Color:          a.Color,
			Altitude:       finiteOr0(a.ArcAlt),
			Stroke:         ArcStrokes[rng.Intn(len(ArcStrokes))],
			DashInitialGap: float64(a.Order),
		}
	}
	return ArcLayer{
		Arcs:            data,
		DashLength:      finiteOr0(cfg.ArcLength),
		DashGap:         ArcDashGap,
		DashAnimateTime: finiteOr0(cfg.ArcTime),
	}
}

func pointLayer(points []Point) PointLayer {
	out := make([]Point, len(points))
	for i, p := range points {
		p.Lat, p.Lng = finiteOr0(p.Lat), finiteOr0(p.Lng)
		p.Size = finiteOr0(p.Size)
		out[i] = p
	}
	return PointLayer{
		Points:   out,
		Merge:    true,
		Radius:   PointRadius,
		Altitude: 0,
	}
}

func ringLayer(cfg Config) RingLayer {
	return RingLayer{
		Data:             []Point{},
		MaxRadius:        finiteOr0(cfg.MaxRings),
		PropagationSpeed: RingPropagationSpeed,
		RepeatPeriod:     cfg.RingRepeatPeriod(),
	}
}

func material(cfg Config) Material {
	return Material{
		Color:             cfg.GlobeColor,
		Emissive:          cfg.Emissive,
		EmissiveIntensity: cfg.emissiveIntensity(),
		Shininess:         cfg.shininess(),
		Lights: Lights{
			Ambient:         cfg.AmbientLight,
			DirectionalLeft: cfg.DirectionalLeftLight,
			DirectionalTop:  cfg.DirectionalTopLight,
			Point:           cfg.PointLight,
		},
	}
}
