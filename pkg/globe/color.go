package globe

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ColorFunc maps an animation phase t in [0,1] to a CSS color string.
type ColorFunc func(t float64) string

// HexToRGB parses "#abc" or "#aabbcc" (case-insensitive, "#" optional).
// The returned color is opaque. ok is false for anything else.
func HexToRGB(hex string) (c color.RGBA, ok bool) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// FadeColor returns a ColorFunc whose opacity falls linearly from 1 to 0 as t
// goes from 0 to 1.
func FadeColor(c color.RGBA) ColorFunc {
	return func(t float64) string {
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, formatAlpha(1-t))
	}
}

func formatAlpha(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}

// ParseCSSColor understands the color forms used by globe configs: hex
// (#rgb, #rrggbb) and the rgb()/rgba() functional notations. The alpha
// channel is returned separately in [0,1] and the RGB channels are not
// premultiplied.
func ParseCSSColor(s string) (c color.RGBA, alpha float64, err error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if rgb, ok := HexToRGB(s); ok {
		return rgb, 1, nil
	}

	var body string
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		body = s[len("rgba(") : len(s)-1]
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		body = s[len("rgb(") : len(s)-1]
	default:
		return color.RGBA{}, 0, fmt.Errorf("unsupported color %q", s)
	}

	parts := strings.Split(body, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{}, 0, fmt.Errorf("malformed color %q", s)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || !isFinite(v) {
			return color.RGBA{}, 0, fmt.Errorf("malformed color %q", s)
		}
		ch[i] = uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	alpha = 1
	if len(parts) == 4 {
		alpha, err = strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || !isFinite(alpha) {
			return color.RGBA{}, 0, fmt.Errorf("malformed color %q", s)
		}
		alpha = math.Max(0, math.Min(1, alpha))
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}, alpha, nil
}
