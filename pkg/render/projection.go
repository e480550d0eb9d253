package render

import "math"

const degToRad = math.Pi / 180

// autoRotateDegPerSec is the camera orbit rate at an auto-rotate speed of 1,
// one full turn per minute.
const autoRotateDegPerSec = 6.0

// Camera is an orthographic view of a unit sphere scaled to Radius pixels and
// centred on the screen at (CX, CY). Lat and Lng name the point of the globe
// facing the viewer.
type Camera struct {
	CX, CY   float64
	Radius   float64
	Lat, Lng float64

	sinLat, cosLat float64
}

// NewCamera returns a camera looking at (lat, lng).
func NewCamera(width, height int, radius, lat, lng float64) Camera {
	c := Camera{CX: float64(width) / 2, CY: float64(height) / 2, Radius: radius}
	c.LookAt(lat, lng)
	return c
}

// LookAt points the camera at (lat, lng). Latitude is clamped to the poles.
func (c *Camera) LookAt(lat, lng float64) {
	c.Lat = math.Max(-90, math.Min(90, lat))
	c.Lng = wrapLng(lng)
	c.sinLat, c.cosLat = math.Sincos(c.Lat * degToRad)
}

// Rotate spins the camera eastwards by deg degrees of longitude.
func (c *Camera) Rotate(deg float64) {
	c.LookAt(c.Lat, c.Lng+deg)
}

// Project maps a position alt globe radii above (lat, lng) to screen
// coordinates. visible is false when the position is hidden behind the
// globe.
func (c *Camera) Project(lat, lng, alt float64) (x, y float64, visible bool) {
	sinPhi, cosPhi := math.Sincos(lat * degToRad)
	sinDL, cosDL := math.Sincos((lng - c.Lng) * degToRad)

	px := cosPhi * sinDL
	py := sinPhi
	pz := cosPhi * cosDL

	// Tilt about the screen x axis so the camera latitude faces the viewer.
	ty := py*c.cosLat - pz*c.sinLat
	tz := py*c.sinLat + pz*c.cosLat

	r := c.Radius * (1 + alt)
	x = c.CX + r*px
	y = c.CY - r*ty

	if tz >= 0 {
		return x, y, true
	}
	// Raised positions behind the limb are still visible when they clear the
	// silhouette of the sphere.
	d := math.Hypot(px, ty) * (1 + alt)
	return x, y, d > 1
}

// Facing returns the cosine between the surface normal at (lat, lng) and the
// view direction. It is 1 at the centre of the disc and 0 on the limb.
func (c *Camera) Facing(lat, lng float64) float64 {
	sinPhi, cosPhi := math.Sincos(lat * degToRad)
	cosDL := math.Cos((lng - c.Lng) * degToRad)
	return sinPhi*c.sinLat + cosPhi*cosDL*c.cosLat
}

func wrapLng(lng float64) float64 {
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}

// greatCircle returns n+1 positions along the shortest path between two
// points, each raised by alt*sin(pi*s) for s in [0, 1].
func greatCircle(lat1, lng1, lat2, lng2, alt float64, n int) []vertex {
	ax, ay, az := toVec(lat1, lng1)
	bx, by, bz := toVec(lat2, lng2)
	dot := math.Max(-1, math.Min(1, ax*bx+ay*by+az*bz))
	omega := math.Acos(dot)
	sinOmega := math.Sin(omega)

	out := make([]vertex, n+1)
	for i := 0; i <= n; i++ {
		s := float64(i) / float64(n)
		var x, y, z float64
		if sinOmega < 1e-9 {
			x, y, z = ax+(bx-ax)*s, ay+(by-ay)*s, az+(bz-az)*s
		} else {
			wa := math.Sin((1-s)*omega) / sinOmega
			wb := math.Sin(s*omega) / sinOmega
			x, y, z = wa*ax+wb*bx, wa*ay+wb*by, wa*az+wb*bz
		}
		lat, lng := fromVec(x, y, z)
		out[i] = vertex{Lat: lat, Lng: lng, Alt: alt * math.Sin(math.Pi*s), S: s}
	}
	return out
}

type vertex struct {
	Lat, Lng, Alt float64
	// S is the fraction of the path covered at this vertex.
	S float64
}

func toVec(lat, lng float64) (x, y, z float64) {
	sinPhi, cosPhi := math.Sincos(lat * degToRad)
	sinL, cosL := math.Sincos(lng * degToRad)
	return cosPhi * cosL, cosPhi * sinL, sinPhi
}

func fromVec(x, y, z float64) (lat, lng float64) {
	h := math.Hypot(x, y)
	if h < 1e-12 && math.Abs(z) < 1e-12 {
		return 0, 0
	}
	return math.Atan2(z, h) / degToRad, math.Atan2(y, x) / degToRad
}
