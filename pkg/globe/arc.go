// Package globe turns lists of geographic arcs and country polygons into the
// layers of an animated globe: sanitized polygons, deduplicated endpoint
// markers, animated arcs and periodically pulsing rings.
package globe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Arc is a directed edge between two geographic points.
type Arc struct {
	Order    int     `json:"order"`
	StartLat float64 `json:"startLat"`
	StartLng float64 `json:"startLng"`
	EndLat   float64 `json:"endLat"`
	EndLng   float64 `json:"endLng"`
	ArcAlt   float64 `json:"arcAlt"`
	Color    string  `json:"color"`
}

// Valid reports whether all five numeric fields are finite.
func (a Arc) Valid() bool {
	return isFinite(a.StartLat) && isFinite(a.StartLng) &&
		isFinite(a.EndLat) && isFinite(a.EndLng) &&
		isFinite(a.ArcAlt)
}

// ValidArcs returns the arcs whose numeric fields are all finite, in order.
// Invalid arcs are dropped, never repaired.
func ValidArcs(arcs []Arc) []Arc {
	out := make([]Arc, 0, len(arcs))
	for _, a := range arcs {
		if a.Valid() {
			out = append(out, a)
		}
	}
	return out
}

// UnmarshalJSON accepts numbers, numeric strings ("NaN", "Inf" included) and
// null for the coordinate fields. Null or missing coordinates decode to NaN.
func (a *Arc) UnmarshalJSON(data []byte) error {
	var raw struct {
		Order    json.RawMessage `json:"order"`
		StartLat json.RawMessage `json:"startLat"`
		StartLng json.RawMessage `json:"startLng"`
		EndLat   json.RawMessage `json:"endLat"`
		EndLng   json.RawMessage `json:"endLng"`
		ArcAlt   json.RawMessage `json:"arcAlt"`
		Color    string          `json:"color"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	fields := []struct {
		name string
		src  json.RawMessage
		dst  *float64
	}{
		{"startLat", raw.StartLat, &a.StartLat},
		{"startLng", raw.StartLng, &a.StartLng},
		{"endLat", raw.EndLat, &a.EndLat},
		{"endLng", raw.EndLng, &a.EndLng},
		{"arcAlt", raw.ArcAlt, &a.ArcAlt},
	}
	for _, f := range fields {
		if *f.dst, err = looseFloat(f.src); err != nil {
			return fmt.Errorf("arc %s: %w", f.name, err)
		}
	}

	order, err := looseFloat(raw.Order)
	if err != nil {
		return fmt.Errorf("arc order: %w", err)
	}
	a.Order = clampOrder(order)
	a.Color = raw.Color
	return nil
}

// clampOrder converts a decoded order to an int. Non-finite orders become 0
// and out of range orders saturate.
func clampOrder(v float64) int {
	switch {
	case !isFinite(v):
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt
	case v <= math.MinInt64:
		return math.MinInt
	}
	return int(v)
}

func looseFloat(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return math.NaN(), nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), nil
		}
		return v, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finiteOr0 is the accessor guard applied to every value handed to a surface.
func finiteOr0(v float64) float64 {
	if isFinite(v) {
		return v
	}
	return 0
}
