package globe

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/arc-globe/pkg/observability"
)

// Loader asynchronously prepares the rendering surface.
type Loader func(ctx context.Context) (Surface, error)

// Option configures a Globe.
type Option func(*Globe)

// WithClock sets the clock driving the ring scheduler.
func WithClock(c clockwork.Clock) Option { return func(g *Globe) { g.clock = c } }

// WithRand sets the random source used for strokes and ring sampling.
func WithRand(r *rand.Rand) Option { return func(g *Globe) { g.rng = r } }

// WithLogger sets the logger for warnings and skipped records.
func WithLogger(l *log.Logger) Option { return func(g *Globe) { g.logger = l } }

// WithMetrics records pipeline metrics into m.
func WithMetrics(m *observability.Metrics) Option { return func(g *Globe) { g.metrics = m } }

// WithFallback sets what the fault boundary draws once tripped.
func WithFallback(fn func()) Option { return func(g *Globe) { g.fallback = fn } }

// Globe is one mounted visualization. It owns the surface handle, the
// derived point set and the ring scheduler; nothing is shared between
// instances.
type Globe struct {
	cfg      Config
	features *geojson.FeatureCollection
	load     Loader
	clock    clockwork.Clock
	rng      *rand.Rand
	logger   *log.Logger
	metrics  *observability.Metrics
	fallback func()
	boundary *Boundary
	cache    FeatureCache

	ready atomic.Bool

	mu        sync.Mutex
	surface   Surface
	arcs      []Arc
	points    []Point
	sched     *RingScheduler
	cancel    context.CancelFunc
	mounted   bool
	unmounted bool
}

// New creates an unmounted globe. features is the country polygon collection
// and load produces the surface once Mount is called.
func New(cfg Config, features *geojson.FeatureCollection, load Loader, opts ...Option) *Globe {
	g := &Globe{
		cfg:      cfg,
		features: features,
		load:     load,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.clock == nil {
		g.clock = clockwork.NewRealClock()
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.logger == nil {
		g.logger = log.Default()
	}
	g.boundary = NewBoundary(g.fallback, g.logger)
	g.boundary.OnTrip(func() {
		if g.metrics != nil {
			g.metrics.BoundaryTrips.Inc()
		}
	})
	return g
}

// Config returns the configuration the globe was created with.
func (g *Globe) Config() Config { return g.cfg }

// Boundary returns the fault boundary wrapping this globe. Renderers run
// their draw pass through it.
func (g *Globe) Boundary() *Boundary { return g.boundary }

// Ready reports whether the surface has loaded. Once true it stays true.
func (g *Globe) Ready() bool { return g.ready.Load() }

// Mount starts loading the surface in the background. The returned channel
// is closed when loading has finished, successfully or not. A failed load is
// logged and leaves the globe permanently not ready. Calling Mount again
// returns an already closed channel.
func (g *Globe) Mount(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	g.mu.Lock()
	if g.mounted || g.unmounted {
		g.mu.Unlock()
		close(done)
		return done
	}
	g.mounted = true
	ctx, g.cancel = context.WithCancel(ctx)
	g.mu.Unlock()

	go func() {
		defer close(done)
		var s Surface
		err := g.boundary.Guard("load surface", func() error {
			var err error
			s, err = g.load(ctx)
			return err
		})
		if err == nil && s == nil {
			err = errors.New("loader returned no surface")
		}
		if err != nil {
			g.logger.Printf("Failed to load globe surface: %v", err)
			return
		}

		g.mu.Lock()
		defer g.mu.Unlock()
		if g.unmounted {
			return
		}
		g.surface = s
		g.ready.Store(true)
		if g.metrics != nil {
			g.metrics.SurfaceReady.Set(1)
		}
		if err := g.rebuildLocked(); err != nil {
			g.logger.Printf("Globe rebuild failed: %v", err)
		}
	}()
	return done
}

// SetData replaces the arc list. When the surface is ready the whole
// pipeline is rebuilt before SetData returns.
func (g *Globe) SetData(arcs []Arc) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unmounted {
		return nil
	}
	g.arcs = append([]Arc(nil), arcs...)
	if !g.ready.Load() {
		return nil
	}
	return g.rebuildLocked()
}

// Points returns the current deduplicated points.
func (g *Globe) Points() []Point {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.points
}

// Rings returns the points pulsed by the last scheduler tick.
func (g *Globe) Rings() []Point {
	g.mu.Lock()
	sched := g.sched
	g.mu.Unlock()
	if sched == nil {
		return nil
	}
	return sched.Current()
}

// Unmount stops the scheduler and abandons a pending load. It is idempotent.
func (g *Globe) Unmount() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unmounted {
		return
	}
	g.unmounted = true
	if g.cancel != nil {
		g.cancel()
	}
	if g.sched != nil {
		g.sched.Stop()
		g.sched = nil
	}
}

// rebuildLocked runs sanitize, project and bind for the current data and
// restarts the ring scheduler. g.mu must be held.
func (g *Globe) rebuildLocked() error {
	if g.sched != nil {
		g.sched.Stop()
		g.sched = nil
	}

	arcs := g.arcs
	err := g.boundary.Guard("rebuild", func() error {
		rejected := 0
		points := ProjectPoints(arcs, g.cfg.PointSize, func(format string, args ...any) {
			rejected++
			g.logger.Printf(format, args...)
		})
		features, clamped := g.cache.Get(g.features)
		if g.metrics != nil {
			g.metrics.ArcsDropped.Add(float64(len(arcs) - len(ValidArcs(arcs))))
			g.metrics.ColorsRejected.Add(float64(rejected))
			g.metrics.PointsProjected.Set(float64(len(points)))
			g.metrics.CoordinatesClamped.Add(float64(clamped))
		}
		g.points = points
		return Bind(g.surface, g.cfg, features, arcs, points, g.rng)
	})
	if err != nil {
		g.countRebuild("error")
		return err
	}
	g.countRebuild("ok")

	g.sched = &RingScheduler{
		Surface:  g.surface,
		Points:   g.points,
		ArcCount: len(arcs),
		Interval: RingInterval,
		Clock:    g.clock,
		Rand:     g.rng,
		Ready:    func() bool { return g.ready.Load() && !g.boundary.Tripped() },
		Logger:   g.logger,
		Metrics:  g.metrics,
	}
	g.sched.Start()
	return nil
}

func (g *Globe) countRebuild(outcome string) {
	if g.metrics != nil {
		g.metrics.Rebuilds.WithLabelValues(outcome).Inc()
	}
}
