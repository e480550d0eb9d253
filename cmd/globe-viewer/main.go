package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "github.com/silbinarywolf/preferdiscretegpu"
	"github.com/sudorandom/arc-globe/pkg/globe"
	"github.com/sudorandom/arc-globe/pkg/observability"
	"github.com/sudorandom/arc-globe/pkg/render"
	"github.com/sudorandom/arc-globe/pkg/sources"
)

var (
	configFlag   = flag.String("config", "", "Globe config JSON (path or URL); defaults to the embedded sample")
	arcsFlag     = flag.String("arcs", "", "Arc list JSON (path or URL); defaults to the embedded sample")
	geojsonFlag  = flag.String("geojson", "", "Country FeatureCollection (path, URL or natural-earth); defaults to the embedded outlines")
	liveFlag     = flag.String("live", "", "Websocket URL of a live arc feed")
	headlessFlag = flag.Bool("headless", false, "Run without a local window (Xvfb rendering active)")
	renderWidth  = flag.Int("width", 1920, "Internal rendering width")
	renderHeight = flag.Int("height", 1080, "Internal rendering height")
	renderScale  = flag.Float64("scale", 400.0, "Globe radius in pixels")
	windowWidth  = flag.Int("window-width", 1280, "Initial window width (non-headless only)")
	windowHeight = flag.Int("window-height", 720, "Initial window height (non-headless only)")
	tpsFlag      = flag.Int("tps", 30, "Ticks per second (engine updates)")
	captureDir   = flag.String("capture-dir", "", "Write a PNG of one frame per second into this directory")
	metricsAddr  = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	titleFlag    = flag.String("title", "", "Title drawn in the top left corner")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	fetcher := &sources.Fetcher{CacheDir: sources.DefaultCacheDir}

	cfg := sources.SampleConfig()
	if *configFlag != "" {
		r, err := fetcher.Open(*configFlag)
		if err != nil {
			log.Fatalf("Failed to open config: %v", err)
		}
		cfg, err = sources.LoadConfig(r, globe.DefaultConfig())
		_ = r.Close()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	arcs := sources.SampleArcs()
	if *arcsFlag != "" {
		r, err := fetcher.Open(*arcsFlag)
		if err != nil {
			log.Fatalf("Failed to open arcs: %v", err)
		}
		arcs, err = sources.LoadArcs(r)
		_ = r.Close()
		if err != nil {
			log.Fatalf("Failed to load arcs: %v", err)
		}
	}

	features := sources.Countries()
	if *geojsonFlag != "" {
		data, err := fetcher.ReadAll(sources.FeaturesSource(*geojsonFlag))
		if err != nil {
			log.Fatalf("Failed to read polygons: %v", err)
		}
		if features, err = sources.LoadFeatures(data); err != nil {
			log.Fatalf("Failed to load polygons: %v", err)
		}
	}
	log.Printf("Loaded %d arcs and %d country features", len(arcs), len(features.Features))
	if names := sources.FeatureNames(features); len(names) > 0 {
		log.Printf("Countries: %s", strings.Join(names, ", "))
	}

	var metrics *observability.Metrics
	if *metricsAddr != "" {
		metrics = observability.NewMetrics()
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Printf("Serving metrics on %s/metrics", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Printf("Metrics server stopped: %v", err)
			}
		}()
	}

	engine := render.NewEngine(*renderWidth, *renderHeight, *renderScale)
	engine.Title = *titleFlag
	engine.FrameCaptureDir = *captureDir
	engine.CaptureEvery = *tpsFlag
	engine.Configure(cfg)
	engine.InitTextures()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []globe.Option{}
	if metrics != nil {
		opts = append(opts, globe.WithMetrics(metrics))
	}
	g := globe.New(cfg, features, func(context.Context) (globe.Surface, error) { return engine, nil }, opts...)
	engine.SetBoundary(g.Boundary())
	if err := g.SetData(arcs); err != nil {
		log.Fatalf("Failed to set arcs: %v", err)
	}
	<-g.Mount(ctx)
	defer g.Unmount()

	if *liveFlag != "" {
		go func() {
			err := sources.ListenArcs(ctx, *liveFlag, metrics, func(arcs []globe.Arc) {
				log.Printf("Live feed delivered %d arcs", len(arcs))
				if err := g.SetData(arcs); err != nil {
					log.Printf("Failed to apply live arcs: %v", err)
				}
			})
			log.Printf("Live feed stopped: %v", err)
		}()
	}

	go func() {
		<-ctx.Done()
		g.Unmount()
		os.Exit(0)
	}()

	ebiten.SetTPS(*tpsFlag)
	if *headlessFlag {
		log.Println("Running in HEADLESS mode (Rendering active).")
	} else {
		ebiten.SetWindowSize(*windowWidth, *windowHeight)
		ebiten.SetWindowTitle("Arc Globe Viewer")
	}
	if err := ebiten.RunGame(engine); err != nil {
		log.Fatal(err)
	}
}
