package globe

import "time"

// Rendering constants shared by every globe.
const (
	RingPropagationSpeed = 3
	HexPolygonResolution = 3
	HexPolygonMargin     = 0.7
	ArcDashGap           = 15
	PointRadius          = 2

	RingInterval = 2000 * time.Millisecond
)

// ArcStrokes are the stroke widths an arc is randomly drawn with.
var ArcStrokes = [...]float64{0.32, 0.28, 0.3}

// LatLng is a geographic position in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Config is the visual configuration of a globe. Decode JSON on top of
// DefaultConfig() so omitted keys keep their defaults.
type Config struct {
	PointSize            float64 `json:"pointSize"`
	GlobeColor           string  `json:"globeColor"`
	ShowAtmosphere       bool    `json:"showAtmosphere"`
	AtmosphereColor      string  `json:"atmosphereColor"`
	AtmosphereAltitude   float64 `json:"atmosphereAltitude"`
	Emissive             string  `json:"emissive"`
	EmissiveIntensity    float64 `json:"emissiveIntensity"`
	Shininess            float64 `json:"shininess"`
	PolygonColor         string  `json:"polygonColor"`
	AmbientLight         string  `json:"ambientLight"`
	DirectionalLeftLight string  `json:"directionalLeftLight"`
	DirectionalTopLight  string  `json:"directionalTopLight"`
	PointLight           string  `json:"pointLight"`
	ArcTime              float64 `json:"arcTime"`
	ArcLength            float64 `json:"arcLength"`
	Rings                float64 `json:"rings"`
	MaxRings             float64 `json:"maxRings"`
	InitialPosition      *LatLng `json:"initialPosition,omitempty"`
	AutoRotate           bool    `json:"autoRotate"`
	AutoRotateSpeed      float64 `json:"autoRotateSpeed"`
}

// DefaultConfig returns the configuration used for omitted options.
func DefaultConfig() Config {
	return Config{
		PointSize:            1,
		GlobeColor:           "#1d072e",
		ShowAtmosphere:       true,
		AtmosphereColor:      "#ffffff",
		AtmosphereAltitude:   0.1,
		Emissive:             "#000000",
		EmissiveIntensity:    0.1,
		Shininess:            0.9,
		PolygonColor:         "rgba(255,255,255,0.7)",
		AmbientLight:         "#ffffff",
		DirectionalLeftLight: "#ffffff",
		DirectionalTopLight:  "#ffffff",
		PointLight:           "#ffffff",
		ArcTime:              2000,
		ArcLength:            0.9,
		Rings:                1,
		MaxRings:             3,
		AutoRotate:           true,
		AutoRotateSpeed:      1,
	}
}

// RingRepeatPeriod is the delay in milliseconds between two rings emitted
// from the same point.
func (c Config) RingRepeatPeriod() float64 {
	if c.Rings <= 0 {
		return finiteOr0(c.ArcTime * c.ArcLength)
	}
	return finiteOr0(c.ArcTime * c.ArcLength / c.Rings)
}

// Zero material values fall back to the defaults.
func (c Config) emissiveIntensity() float64 {
	if c.EmissiveIntensity == 0 || !isFinite(c.EmissiveIntensity) {
		return 0.1
	}
	return c.EmissiveIntensity
}

func (c Config) shininess() float64 {
	if c.Shininess == 0 || !isFinite(c.Shininess) {
		return 0.9
	}
	return c.Shininess
}
