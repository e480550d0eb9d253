// Package sources loads the inputs of a globe: arc lists, visual
// configuration and country polygons, from embedded samples, local files,
// cached downloads or a live websocket feed.
package sources

import _ "embed"

//go:embed data/countries.geo.json
var countriesGeoJSON []byte

//go:embed data/arcs.json
var sampleArcsJSON []byte

//go:embed data/globe.json
var sampleConfigJSON []byte
