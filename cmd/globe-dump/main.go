package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"

	"github.com/alecthomas/kong"
	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/arc-globe/pkg/globe"
	"github.com/sudorandom/arc-globe/pkg/sources"
)

type Globals struct {
	Arcs    string `help:"Arc list JSON (path or URL). Defaults to the embedded sample." placeholder:"PATH"`
	Config  string `help:"Globe config JSON (path or URL). Defaults to the embedded sample." placeholder:"PATH"`
	Geojson string `help:"Country FeatureCollection (path, URL or natural-earth). Defaults to the embedded outlines." placeholder:"PATH"`
	Seed    int64  `help:"Random seed for strokes and ring sampling." default:"1"`
}

type CLI struct {
	Globals

	Points PointsCmd `cmd:"" help:"Print the deduplicated endpoint markers."`
	Bind   BindCmd   `cmd:"" help:"Print the layers the binder hands to the rendering surface."`
	Sample SampleCmd `cmd:"" help:"Print a sequence of ring selections."`
}

type PointsCmd struct{}

func (c *PointsCmd) Run(g *Globals) error {
	arcs, err := g.loadArcs()
	if err != nil {
		return err
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	points := globe.ProjectPoints(arcs, cfg.PointSize, log.Printf)
	return writeJSON(os.Stdout, dumpPoints(points))
}

type BindCmd struct{}

type bindDump struct {
	Calls            []string         `json:"calls"`
	Features         int              `json:"features"`
	Countries        []string         `json:"countries"`
	ClampedCoords    int              `json:"clampedCoordinates"`
	HexResolution    int              `json:"hexPolygonResolution"`
	HexMargin        float64          `json:"hexPolygonMargin"`
	PolygonColor     string           `json:"polygonColor"`
	Arcs             []globe.ArcDatum `json:"arcs"`
	DashLength       float64          `json:"arcDashLength"`
	DashGap          float64          `json:"arcDashGap"`
	DashAnimateTime  float64          `json:"arcDashAnimateTime"`
	Points           []pointDump      `json:"points"`
	RingMaxRadius    float64          `json:"ringMaxRadius"`
	RingSpeed        float64          `json:"ringPropagationSpeed"`
	RingRepeatPeriod float64          `json:"ringRepeatPeriod"`
	Material         globe.Material   `json:"material"`
}

func (c *BindCmd) Run(g *Globals) error {
	arcs, err := g.loadArcs()
	if err != nil {
		return err
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	features, err := g.loadFeatures()
	if err != nil {
		return err
	}

	clean, clamped := globe.SanitizeFeatures(features)
	points := globe.ProjectPoints(arcs, cfg.PointSize, log.Printf)
	rec := &globe.Recorder{}
	if err := globe.Bind(rec, cfg, clean, arcs, points, rand.New(rand.NewSource(g.Seed))); err != nil {
		return fmt.Errorf("bind: %w", err)
	}

	return writeJSON(os.Stdout, bindDump{
		Calls:            rec.Calls(),
		Features:         len(clean.Features),
		Countries:        sources.FeatureNames(clean),
		ClampedCoords:    clamped,
		HexResolution:    rec.Polygons.Resolution,
		HexMargin:        rec.Polygons.Margin,
		PolygonColor:     rec.Polygons.Color,
		Arcs:             rec.Arcs.Arcs,
		DashLength:       rec.Arcs.DashLength,
		DashGap:          rec.Arcs.DashGap,
		DashAnimateTime:  rec.Arcs.DashAnimateTime,
		Points:           dumpPoints(rec.Points.Points),
		RingMaxRadius:    rec.Rings.MaxRadius,
		RingSpeed:        rec.Rings.PropagationSpeed,
		RingRepeatPeriod: rec.Rings.RepeatPeriod,
		Material:         rec.Material,
	})
}

type SampleCmd struct {
	Ticks int `help:"Number of ring updates to simulate." default:"5"`
}

type sampleDump struct {
	Updates int        `json:"updates"`
	Ticks   []tickDump `json:"ticks"`
}

type tickDump struct {
	Tick  int         `json:"tick"`
	Rings []pointDump `json:"rings"`
}

func (c *SampleCmd) Run(g *Globals) error {
	arcs, err := g.loadArcs()
	if err != nil {
		return err
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	points := globe.ProjectPoints(arcs, cfg.PointSize, log.Printf)

	rec := &globe.Recorder{}
	sched := &globe.RingScheduler{
		Surface:  rec,
		Points:   points,
		ArcCount: len(arcs),
		Rand:     rand.New(rand.NewSource(g.Seed)),
	}
	out := sampleDump{Ticks: make([]tickDump, 0, c.Ticks)}
	for i := 0; i < c.Ticks; i++ {
		if err := sched.Tick(); err != nil {
			log.Printf("Ring update skipped: %v", err)
			continue
		}
		out.Ticks = append(out.Ticks, tickDump{Tick: i + 1, Rings: dumpPoints(rec.RingData())})
	}
	out.Updates = rec.RingUpdateCount()
	return writeJSON(os.Stdout, out)
}

type pointDump struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Order int     `json:"order"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

func dumpPoints(points []globe.Point) []pointDump {
	out := make([]pointDump, 0, len(points))
	for _, p := range points {
		d := pointDump{Lat: p.Lat, Lng: p.Lng, Order: p.Order, Size: p.Size}
		if p.Color != nil {
			d.Color = p.Color(0)
		}
		out = append(out, d)
	}
	return out
}

func (g *Globals) loadArcs() ([]globe.Arc, error) {
	if g.Arcs == "" {
		return sources.SampleArcs(), nil
	}
	r, err := sources.Open(g.Arcs)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return sources.LoadArcs(r)
}

func (g *Globals) loadConfig() (globe.Config, error) {
	if g.Config == "" {
		return sources.SampleConfig(), nil
	}
	r, err := sources.Open(g.Config)
	if err != nil {
		return globe.Config{}, err
	}
	defer r.Close()
	return sources.LoadConfig(r, globe.DefaultConfig())
}

func (g *Globals) loadFeatures() (*geojson.FeatureCollection, error) {
	if g.Geojson == "" {
		return sources.Countries(), nil
	}
	data, err := (&sources.Fetcher{CacheDir: sources.DefaultCacheDir}).ReadAll(sources.FeaturesSource(g.Geojson))
	if err != nil {
		return nil, err
	}
	return sources.LoadFeatures(data)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("globe-dump"),
		kong.Description("Print the stages of the globe pipeline as JSON without opening a window."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
