package sources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/biter777/countries"
	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/arc-globe/pkg/globe"
)

// LoadArcs decodes a JSON array of arcs. Records with unusable coordinates
// are kept as NaN so the pipeline drops them.
func LoadArcs(r io.Reader) ([]globe.Arc, error) {
	var arcs []globe.Arc
	if err := json.NewDecoder(r).Decode(&arcs); err != nil {
		return nil, fmt.Errorf("decode arcs: %w", err)
	}
	return arcs, nil
}

// LoadConfig decodes a JSON globe configuration on top of base. Keys absent
// from the document keep their value from base.
func LoadConfig(r io.Reader, base globe.Config) (globe.Config, error) {
	cfg := base
	if base.InitialPosition != nil {
		p := *base.InitialPosition
		cfg.InitialPosition = &p
	}
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return base, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// LoadFeatures parses a GeoJSON FeatureCollection.
func LoadFeatures(data []byte) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	return fc, nil
}

// SampleArcs returns the embedded sample flight arcs.
func SampleArcs() []globe.Arc {
	arcs, err := LoadArcs(bytes.NewReader(sampleArcsJSON))
	if err != nil {
		panic(err)
	}
	return arcs
}

// SampleConfig returns the embedded sample configuration decoded over the
// defaults.
func SampleConfig() globe.Config {
	cfg, err := LoadConfig(bytes.NewReader(sampleConfigJSON), globe.DefaultConfig())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Countries returns the embedded country outlines. Each call parses a fresh
// collection.
func Countries() *geojson.FeatureCollection {
	fc, err := LoadFeatures(countriesGeoJSON)
	if err != nil {
		panic(err)
	}
	return fc
}

// FeatureName returns a display name for a country feature: the country
// named by its ISO code when that is known, otherwise its name property.
func FeatureName(f *geojson.Feature) string {
	if f == nil {
		return ""
	}
	for _, key := range []string{"iso_a2", "ISO_A2", "iso_a3", "ISO_A3"} {
		code := f.PropertyMustString(key, "")
		if code == "" || code == "-99" {
			continue
		}
		if c := countries.ByName(code); c != countries.Unknown {
			return c.String()
		}
	}
	for _, key := range []string{"name", "NAME", "admin", "ADMIN"} {
		if name := f.PropertyMustString(key, ""); name != "" {
			return name
		}
	}
	return ""
}

// FeatureNames returns the display names of the features in fc, skipping
// features without one.
func FeatureNames(fc *geojson.FeatureCollection) []string {
	if fc == nil {
		return nil
	}
	names := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		if name := FeatureName(f); name != "" {
			names = append(names, name)
		}
	}
	return names
}
