package globe

import (
	geojson "github.com/paulmach/go.geojson"
)

// Surface is the rendering engine a globe binds its layers into. Layer
// values only ever carry finite numbers.
type Surface interface {
	SetPolygons(PolygonLayer) error
	SetArcs(ArcLayer) error
	SetPoints(PointLayer) error
	SetRings(RingLayer) error
	// SetRingData replaces the set of pulsing points without touching the
	// rest of the ring layer.
	SetRingData([]Point) error
	SetMaterial(Material) error
}

// PolygonLayer is the hex-binned country layer plus the atmosphere settings.
type PolygonLayer struct {
	Features           *geojson.FeatureCollection
	Resolution         int
	Margin             float64
	ShowAtmosphere     bool
	AtmosphereColor    string
	AtmosphereAltitude float64
	Color              string
}

// ArcDatum is one arc resolved into drawable values.
type ArcDatum struct {
	StartLat, StartLng float64
	EndLat, EndLng     float64
	Color              string
	Altitude           float64
	Stroke             float64
	DashInitialGap     float64
}

// ArcLayer holds the animated arcs.
type ArcLayer struct {
	Arcs []ArcDatum
	// DashLength is the dash length as a fraction of the arc length.
	DashLength float64
	// DashGap is the gap between dashes, in arc lengths.
	DashGap float64
	// DashAnimateTime is the time in milliseconds a dash takes to travel one
	// arc length.
	DashAnimateTime float64
}

// PointLayer holds the endpoint markers.
type PointLayer struct {
	Points   []Point
	Merge    bool
	Radius   float64
	Altitude float64
}

// RingLayer configures the ring pulses. Data starts empty and is replaced by
// SetRingData on each scheduler tick.
type RingLayer struct {
	Data []Point
	// MaxRadius is in degrees.
	MaxRadius float64
	// PropagationSpeed is in degrees per second.
	PropagationSpeed float64
	// RepeatPeriod is in milliseconds.
	RepeatPeriod float64
}

// Material describes the globe sphere itself and the lights of the scene.
type Material struct {
	Color             string
	Emissive          string
	EmissiveIntensity float64
	Shininess         float64
	Lights            Lights
}

// Lights are the scene light colors. Ambient light reaches every surface,
// the two directional lights shine from the left and from the top, and the
// point light produces the specular highlight.
type Lights struct {
	Ambient         string
	DirectionalLeft string
	DirectionalTop  string
	Point           string
}
