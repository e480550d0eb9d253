package sources

const (
	// NaturalEarthCountriesURL is a full-resolution country collection that
	// can replace the embedded outlines.
	NaturalEarthCountriesURL = "https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson/ne_110m_admin_0_countries.geojson"

	// NaturalEarth is the shorthand accepted in place of
	// NaturalEarthCountriesURL.
	NaturalEarth = "natural-earth"

	// DefaultCacheDir is where downloaded inputs are kept between runs.
	DefaultCacheDir = "data/cache"
)

// FeaturesSource expands the NaturalEarth shorthand. Any other path or URL is
// returned unchanged.
func FeaturesSource(pathOrURL string) string {
	if pathOrURL == NaturalEarth {
		return NaturalEarthCountriesURL
	}
	return pathOrURL
}
