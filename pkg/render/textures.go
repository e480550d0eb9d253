package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// InitTextures builds the sprite textures used by Draw. It is called on
// first draw when the caller has not done it up front.
func (e *Engine) InitTextures() {
	size := 128
	if e.Width > 2000 {
		size = 256
	}
	e.ringImage = ebiten.NewImage(size, size)
	e.ringImage.WritePixels(ringPixels(size, e.Width > 2000))
	e.dotImage = ebiten.NewImage(32, 32)
	e.dotImage.WritePixels(discPixels(32))
}

// ringPixels draws a soft white ring whose outer edge touches the texture
// border.
func ringPixels(size int, large bool) []byte {
	pixels := make([]byte, size*size*4)
	center, maxDist := float64(size)/2.0, float64(size)/2.0
	outer, inner := 0.9, 0.8
	if large {
		outer, inner = 0.94, 0.88
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist >= maxDist {
				continue
			}
			val := 0.0
			if dist > maxDist*outer {
				val = math.Cos(((dist - maxDist*(outer+((1-outer)/2))) / (maxDist * ((1 - outer) / 2))) * (math.Pi / 2))
			} else if dist > maxDist*inner {
				val = math.Sin(((dist - maxDist*inner) / (maxDist * (outer - inner))) * (math.Pi / 2))
			}
			setWhite(pixels, (y*size+x)*4, val)
		}
	}
	return pixels
}

// discPixels draws an antialiased filled white disc.
func discPixels(size int) []byte {
	pixels := make([]byte, size*size*4)
	center := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dist := math.Hypot(float64(x)+0.5-center, float64(y)+0.5-center)
			setWhite(pixels, (y*size+x)*4, math.Max(0, math.Min(1, center-dist)))
		}
	}
	return pixels
}

// glowPixels draws the atmosphere halo. The globe edge sits at inner of the
// texture radius and the glow fades out towards the border.
func glowPixels(size int, inner float64) []byte {
	pixels := make([]byte, size*size*4)
	center := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-center, float64(y)+0.5-center) / center
			if d >= 1 {
				continue
			}
			val := 0.0
			switch {
			case d >= inner:
				f := math.Cos((d - inner) / (1 - inner) * math.Pi / 2)
				val = f * f
			case d > inner*0.85:
				// A faint rim inside the disc.
				val = 0.35 * (d - inner*0.85) / (inner * 0.15)
			}
			setWhite(pixels, (y*size+x)*4, val)
		}
	}
	return pixels
}

// setWhite writes a premultiplied white pixel with alpha val.
func setWhite(pixels []byte, i int, val float64) {
	a := uint8(val * 255)
	pixels[i+0], pixels[i+1], pixels[i+2], pixels[i+3] = a, a, a, a
}
