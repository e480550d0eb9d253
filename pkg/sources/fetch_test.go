package sources

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestFetcherCachesDownloads(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.json" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path == "/broken.json" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		hits.Add(1)
		_, _ = io.WriteString(w, `{"type":"FeatureCollection","features":[]}`)
	}))
	defer srv.Close()

	f := &Fetcher{CacheDir: t.TempDir(), Client: srv.Client()}
	for i := 0; i < 2; i++ {
		data, err := f.ReadAll(srv.URL + "/countries.json")
		if err != nil {
			t.Fatalf("ReadAll: %v", err)
		}
		if _, err := LoadFeatures(data); err != nil {
			t.Fatalf("LoadFeatures: %v", err)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
	entries, err := os.ReadDir(f.CacheDir)
	if err != nil || len(entries) != 1 {
		t.Errorf("cache dir entries = %v (%v), want exactly the downloaded file", entries, err)
	}

	if _, err := f.Open(srv.URL + "/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file error = %v, want ErrNotFound", err)
	}
	if _, err := f.Open(srv.URL + "/broken.json"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("server error = %v", err)
	}

	stream := &Fetcher{CacheDir: t.TempDir(), Client: srv.Client(), NoCache: true}
	if _, err := stream.ReadAll(srv.URL + "/countries.json"); err != nil {
		t.Fatalf("streaming ReadAll: %v", err)
	}
	if entries, _ := os.ReadDir(stream.CacheDir); len(entries) != 0 {
		t.Errorf("streaming fetch wrote %d cache files", len(entries))
	}
}

func TestFetcherOpensLocalFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arcs.json")
	if err := os.WriteFile(path, sampleArcsJSON, 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := (&Fetcher{}).Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	arcs, err := LoadArcs(r)
	if err != nil || len(arcs) != len(SampleArcs()) {
		t.Errorf("LoadArcs from file = %d arcs, %v", len(arcs), err)
	}

	if _, err := (&Fetcher{}).Open(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing local file error = %v", err)
	}
}

func TestFeaturesSource(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"natural-earth", NaturalEarthCountriesURL},
		{"data/countries.geojson", "data/countries.geojson"},
		{"https://example.com/world.geojson", "https://example.com/world.geojson"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FeaturesSource(tt.in); got != tt.want {
			t.Errorf("FeaturesSource(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCacheFileName(t *testing.T) {
	tests := []struct {
		url, want string
	}{
		{"https://example.com/data/countries.geojson", "example.com_countries.geojson"},
		{"https://example.com/arcs?day=1&kind=live", "example.com_arcs_day-1_kind-live"},
		{"http://127.0.0.1:8080/globe.json", "127.0.0.1_8080_globe.json"},
	}
	for _, tt := range tests {
		if got := CacheFileName(tt.url); got != tt.want {
			t.Errorf("CacheFileName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
