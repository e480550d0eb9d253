// Package render draws a globe pipeline with ebiten. Engine implements both
// globe.Surface, receiving layers from the binder and the ring scheduler, and
// ebiten.Game.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/jonboulle/clockwork"
	"github.com/sudorandom/arc-globe/pkg/globe"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

var _ globe.Surface = (*Engine)(nil)

var (
	ColorBackground = color.RGBA{4, 2, 12, 255}
	ColorText       = color.RGBA{255, 255, 255, 255}
)

// arcSegments is the number of line segments each arc is drawn with.
const arcSegments = 64

type arcPath struct {
	datum    globe.ArcDatum
	color    color.RGBA
	vertices []vertex
}

type layerColor struct {
	rgba  color.RGBA
	alpha float64
}

type sceneLights struct {
	ambient, left, top, point color.RGBA
}

// Surfaces keep part of their color under a black ambient light.
const ambientFloor = 0.4

type Engine struct {
	Width, Height int
	FPS           int
	Scale         float64
	Title         string

	// FrameCaptureDir, when set, receives a PNG of every CaptureEvery-th
	// frame.
	FrameCaptureDir string
	CaptureEvery    int

	Clock clockwork.Clock

	boundary *globe.Boundary

	mu         sync.Mutex
	camera     Camera
	autoRotate bool
	rotateRate float64
	lastUpdate time.Time
	start      time.Time

	polygons     globe.PolygonLayer
	polygonColor layerColor
	atmosphere   layerColor
	land         []landDot

	arcLayer globe.ArcLayer
	arcs     []arcPath

	pointLayer globe.PointLayer

	ringLayer globe.RingLayer
	ringData  []globe.Point
	ringStart time.Time

	material     globe.Material
	globeColor   layerColor
	emissive     layerColor
	lights       sceneLights
	layerUpdates int

	ringImage  *ebiten.Image
	dotImage   *ebiten.Image
	glowImage  *ebiten.Image
	glowInner  float64
	fontSource *text.GoTextFaceSource
	monoSource *text.GoTextFaceSource
	frames     int
}

func NewEngine(width, height int, scale float64) *Engine {
	s, _ := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	m, _ := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))

	clock := clockwork.NewRealClock()
	now := clock.Now()
	return &Engine{
		Width:      width,
		Height:     height,
		FPS:        30,
		Scale:      scale,
		Clock:      clock,
		camera:     NewCamera(width, height, scale, 0, 0),
		rotateRate: autoRotateDegPerSec,
		lastUpdate: now,
		start:      now,
		ringStart:  now,
		fontSource: s,
		monoSource: m,
		lights:     sceneLights{ambient: ColorText, left: ColorText, top: ColorText, point: ColorText},
	}
}

// Configure applies the camera settings of cfg: the initial point of view
// and auto-rotation.
func (e *Engine) Configure(cfg globe.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	lat, lng := 0.0, 0.0
	if cfg.InitialPosition != nil {
		lat, lng = finite(cfg.InitialPosition.Lat), finite(cfg.InitialPosition.Lng)
	}
	e.camera = NewCamera(e.Width, e.Height, e.Scale, lat, lng)
	e.autoRotate = cfg.AutoRotate
	e.rotateRate = autoRotateDegPerSec * finite(cfg.AutoRotateSpeed)
	e.start = e.Clock.Now()
	e.lastUpdate = e.start
	e.ringStart = e.start
}

// SetBoundary makes Draw render through b instead of a private boundary.
func (e *Engine) SetBoundary(b *globe.Boundary) {
	e.mu.Lock()
	e.boundary = b
	e.mu.Unlock()
}

// Camera returns a copy of the current camera.
func (e *Engine) Camera() Camera {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.camera
}

func (e *Engine) SetPolygons(l globe.PolygonLayer) error {
	checkFeatures(l.Features)
	pc, err := parseLayerColor(l.Color)
	if err != nil {
		return fmt.Errorf("polygon color: %w", err)
	}
	ac, err := parseLayerColor(l.AtmosphereColor)
	if err != nil {
		return fmt.Errorf("atmosphere color: %w", err)
	}
	land := hexLand(l.Features, l.Resolution)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.polygons = l
	e.polygonColor = pc
	e.atmosphere = ac
	e.land = land
	e.layerUpdates++
	return nil
}

func (e *Engine) SetArcs(l globe.ArcLayer) error {
	paths := make([]arcPath, 0, len(l.Arcs))
	for i, a := range l.Arcs {
		checkFinite("arcs", i, a.StartLat, a.StartLng, a.EndLat, a.EndLng, a.Altitude, a.Stroke, a.DashInitialGap)
		c, ok := globe.HexToRGB(a.Color)
		if !ok {
			c = ColorText
		}
		paths = append(paths, arcPath{
			datum:    a,
			color:    c,
			vertices: greatCircle(a.StartLat, a.StartLng, a.EndLat, a.EndLng, a.Altitude, arcSegments),
		})
	}
	checkFinite("arcs", -1, l.DashLength, l.DashGap, l.DashAnimateTime)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.arcLayer = l
	e.arcs = paths
	e.layerUpdates++
	return nil
}

func (e *Engine) SetPoints(l globe.PointLayer) error {
	for i, p := range l.Points {
		checkFinite("points", i, p.Lat, p.Lng, p.Size)
	}
	checkFinite("points", -1, l.Radius, l.Altitude)
	l.Points = append([]globe.Point(nil), l.Points...)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointLayer = l
	e.layerUpdates++
	return nil
}

func (e *Engine) SetRings(l globe.RingLayer) error {
	for i, p := range l.Data {
		checkFinite("rings", i, p.Lat, p.Lng)
	}
	checkFinite("rings", -1, l.MaxRadius, l.PropagationSpeed, l.RepeatPeriod)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.ringLayer = l
	e.ringData = append([]globe.Point(nil), l.Data...)
	e.ringStart = e.Clock.Now()
	e.layerUpdates++
	return nil
}

func (e *Engine) SetRingData(points []globe.Point) error {
	for i, p := range points {
		checkFinite("rings", i, p.Lat, p.Lng)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ringData = append([]globe.Point(nil), points...)
	e.ringStart = e.Clock.Now()
	return nil
}

func (e *Engine) SetMaterial(m globe.Material) error {
	checkFinite("material", -1, m.EmissiveIntensity, m.Shininess)
	gc, err := parseLayerColor(m.Color)
	if err != nil {
		return fmt.Errorf("globe color: %w", err)
	}
	em, err := parseLayerColor(m.Emissive)
	if err != nil {
		return fmt.Errorf("emissive color: %w", err)
	}
	lights, err := parseLights(m.Lights)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.material = m
	e.globeColor = gc
	e.emissive = em
	e.lights = lights
	e.layerUpdates++
	return nil
}

func parseLights(l globe.Lights) (sceneLights, error) {
	var out sceneLights
	for _, c := range []struct {
		name string
		src  string
		dst  *color.RGBA
	}{
		{"ambient", l.Ambient, &out.ambient},
		{"directional left", l.DirectionalLeft, &out.left},
		{"directional top", l.DirectionalTop, &out.top},
		{"point", l.Point, &out.point},
	} {
		lc, err := parseLayerColor(c.src)
		if err != nil {
			return sceneLights{}, fmt.Errorf("%s light: %w", c.name, err)
		}
		*c.dst = lc.rgba
	}
	return out, nil
}

func (e *Engine) Update() error {
	now := e.Clock.Now()
	e.mu.Lock()
	dt := now.Sub(e.lastUpdate).Seconds()
	e.lastUpdate = now
	if e.autoRotate && dt > 0 {
		e.camera.Rotate(e.rotateRate * dt)
	}
	e.mu.Unlock()
	return nil
}

func (e *Engine) Draw(screen *ebiten.Image) {
	if e.ringImage == nil {
		e.InitTextures()
	}
	screen.Fill(ColorBackground)

	e.mu.Lock()
	b := e.boundary
	if b == nil {
		b = globe.NewBoundary(nil, nil)
		e.boundary = b
	}
	e.mu.Unlock()

	b.Render(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		// A half drawn frame is wiped before the fallback takes over.
		defer func() {
			if r := recover(); r != nil {
				screen.Fill(ColorBackground)
				panic(r)
			}
		}()
		now := e.Clock.Now()
		e.drawAtmosphere(screen)
		e.drawSphere(screen)
		e.drawLand(screen)
		e.drawArcs(screen, now)
		e.drawPoints(screen)
		e.drawRings(screen, now)
		e.drawLegend(screen)
	})

	e.frames++
	if e.FrameCaptureDir != "" && e.CaptureEvery > 0 && e.frames%e.CaptureEvery == 0 {
		e.captureFrame(screen, fmt.Sprintf("%06d", e.frames), e.Clock.Now())
	}
}

func (e *Engine) Layout(w, h int) (int, int) { return e.Width, e.Height }

func (e *Engine) drawAtmosphere(screen *ebiten.Image) {
	if !e.polygons.ShowAtmosphere {
		return
	}
	alt := math.Max(0, e.polygons.AtmosphereAltitude)
	inner := 1 / (1 + 3*alt)
	if e.glowImage == nil || e.glowInner != inner {
		size := 256
		e.glowImage = ebiten.NewImage(size, size)
		e.glowImage.WritePixels(glowPixels(size, inner))
		e.glowInner = inner
	}
	half := float64(e.glowImage.Bounds().Dx()) / 2
	scale := e.camera.Radius / (inner * half)

	op := &ebiten.DrawImageOptions{}
	op.Blend = ebiten.BlendLighter
	op.GeoM.Translate(-half, -half)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(e.camera.CX, e.camera.CY)
	scaleColor(&op.ColorScale, e.atmosphere.rgba, 0.6*e.atmosphere.alpha)
	screen.DrawImage(e.glowImage, op)
}

func (e *Engine) drawSphere(screen *ebiten.Image) {
	if e.dotImage == nil {
		return
	}
	half := float64(e.dotImage.Bounds().Dx()) / 2
	scale := e.camera.Radius / half

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-half, -half)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(e.camera.CX, e.camera.CY)
	scaleColor(&op.ColorScale, tint(e.globeColor.rgba, e.lights.ambient), e.globeColor.alpha)
	screen.DrawImage(e.dotImage, op)

	// Directional lights brighten the left and top limbs.
	for _, d := range []struct {
		c      color.RGBA
		dx, dy float64
	}{
		{e.lights.left, -0.45, 0},
		{e.lights.top, 0, -0.45},
	} {
		ds := scale * 0.7
		op.GeoM.Reset()
		op.GeoM.Translate(-half, -half)
		op.GeoM.Scale(ds, ds)
		op.GeoM.Translate(e.camera.CX+e.camera.Radius*d.dx, e.camera.CY+e.camera.Radius*d.dy)
		op.Blend = ebiten.BlendLighter
		op.ColorScale.Reset()
		scaleColor(&op.ColorScale, d.c, 0.05)
		screen.DrawImage(e.dotImage, op)
	}
	op.GeoM.Reset()
	op.GeoM.Translate(-half, -half)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(e.camera.CX, e.camera.CY)

	// Emissive tint and a specular highlight towards the top left.
	intensity := e.material.EmissiveIntensity
	if intensity > 0 {
		op.Blend = ebiten.BlendLighter
		op.ColorScale.Reset()
		scaleColor(&op.ColorScale, e.emissive.rgba, intensity)
		screen.DrawImage(e.dotImage, op)
	}
	if e.material.Shininess > 0 {
		hs := scale * 0.45
		op.GeoM.Reset()
		op.GeoM.Translate(-half, -half)
		op.GeoM.Scale(hs, hs)
		op.GeoM.Translate(e.camera.CX-e.camera.Radius*0.35, e.camera.CY-e.camera.Radius*0.35)
		op.Blend = ebiten.BlendLighter
		op.ColorScale.Reset()
		scaleColor(&op.ColorScale, e.lights.point, 0.08*e.material.Shininess)
		screen.DrawImage(e.dotImage, op)
	}
}

func (e *Engine) drawLand(screen *ebiten.Image) {
	if len(e.land) == 0 {
		return
	}
	half := float64(e.dotImage.Bounds().Dx()) / 2
	radiusDeg := hexSpacing(e.polygons.Resolution) / 2 * (1 - e.polygons.Margin)
	px := math.Max(0.8, e.camera.Radius*radiusDeg*degToRad)

	c := tint(e.polygonColor.rgba, e.lights.ambient)
	op := &ebiten.DrawImageOptions{}
	for _, d := range e.land {
		facing := e.camera.Facing(d.Lat, d.Lng)
		if facing <= 0 {
			continue
		}
		x, y, _ := e.camera.Project(d.Lat, d.Lng, 0)
		s := px / half
		op.GeoM.Reset()
		op.GeoM.Translate(-half, -half)
		op.GeoM.Scale(s, s*math.Max(facing, 0.3))
		op.GeoM.Translate(x, y)
		op.ColorScale.Reset()
		scaleColor(&op.ColorScale, c, e.polygonColor.alpha*(0.4+0.6*facing))
		screen.DrawImage(e.dotImage, op)
	}
}

func (e *Engine) drawArcs(screen *ebiten.Image, now time.Time) {
	if len(e.arcs) == 0 {
		return
	}
	elapsed := float64(now.Sub(e.start).Milliseconds())
	animTime := e.arcLayer.DashAnimateTime
	for _, a := range e.arcs {
		phase := -a.datum.DashInitialGap
		if animTime > 0 {
			phase += elapsed / animTime
		}
		width := float32(math.Max(1, a.datum.Stroke*e.camera.Radius/60))
		prevX, prevY, prevVis := e.camera.Project(a.vertices[0].Lat, a.vertices[0].Lng, a.vertices[0].Alt)
		for i := 1; i < len(a.vertices); i++ {
			v := a.vertices[i]
			x, y, vis := e.camera.Project(v.Lat, v.Lng, v.Alt)
			mid := (a.vertices[i-1].S + v.S) / 2
			if vis && prevVis && dashVisible(mid, phase, e.arcLayer.DashLength, e.arcLayer.DashGap) {
				strokeLine(screen, prevX, prevY, x, y, width, a.color)
			}
			prevX, prevY, prevVis = x, y, vis
		}
	}
}

func (e *Engine) drawPoints(screen *ebiten.Image) {
	if len(e.pointLayer.Points) == 0 {
		return
	}
	half := float64(e.dotImage.Bounds().Dx()) / 2
	px := math.Max(1.5, e.camera.Radius*e.pointLayer.Radius*degToRad*0.5)

	op := &ebiten.DrawImageOptions{}
	for _, p := range e.pointLayer.Points {
		facing := e.camera.Facing(p.Lat, p.Lng)
		x, y, vis := e.camera.Project(p.Lat, p.Lng, e.pointLayer.Altitude)
		if !vis || facing <= 0 {
			continue
		}
		s := px / half
		op.GeoM.Reset()
		op.GeoM.Translate(-half, -half)
		op.GeoM.Scale(s, s*math.Max(facing, 0.3))
		op.GeoM.Translate(x, y)
		op.ColorScale.Reset()
		scaleColor(&op.ColorScale, p.RGB, 1)
		screen.DrawImage(e.dotImage, op)
	}
}

func (e *Engine) drawRings(screen *ebiten.Image, now time.Time) {
	if len(e.ringData) == 0 || e.ringLayer.MaxRadius <= 0 || e.ringLayer.PropagationSpeed <= 0 {
		return
	}
	age := float64(now.Sub(e.ringStart).Milliseconds())
	op := &ebiten.DrawImageOptions{}
	op.Blend = ebiten.BlendLighter
	imgW := float64(e.ringImage.Bounds().Dx())
	halfW := imgW / 2

	for _, emit := range ringEmissions(age, e.ringLayer) {
		radiusDeg := emit * e.ringLayer.PropagationSpeed / 1000
		t := radiusDeg / e.ringLayer.MaxRadius
		for _, p := range e.ringData {
			facing := e.camera.Facing(p.Lat, p.Lng)
			x, y, vis := e.camera.Project(p.Lat, p.Lng, 0)
			if !vis || facing <= 0 {
				continue
			}
			c, alpha := ringColor(p, t)
			if alpha <= 0 {
				continue
			}
			px := e.camera.Radius * radiusDeg * degToRad
			scale := px / halfW
			op.GeoM.Reset()
			op.GeoM.Translate(-halfW, -halfW)
			op.GeoM.Scale(scale, scale*math.Max(facing, 0.2))
			op.GeoM.Translate(x, y)
			op.ColorScale.Reset()
			scaleColor(&op.ColorScale, c, alpha)
			screen.DrawImage(e.ringImage, op)
		}
	}
}

// drawLegend draws the title and layer counts. e.mu must be held.
func (e *Engine) drawLegend(screen *ebiten.Image) {
	if e.fontSource == nil {
		return
	}
	margin, fontSize := 40.0, 18.0
	if e.Width > 2000 {
		margin, fontSize = 80.0, 36.0
	}

	arcs, points, rings := len(e.arcs), len(e.pointLayer.Points), len(e.ringData)

	if e.Title != "" {
		face := &text.GoTextFace{Source: e.fontSource, Size: fontSize * 1.5}
		op := &text.DrawOptions{}
		op.GeoM.Translate(margin, margin)
		op.ColorScale.Scale(1, 1, 1, 0.9)
		text.Draw(screen, e.Title, face, op)
	}
	if e.monoSource != nil {
		face := &text.GoTextFace{Source: e.monoSource, Size: fontSize * 0.8}
		op := &text.DrawOptions{}
		op.GeoM.Translate(margin, float64(e.Height)-margin-fontSize)
		op.ColorScale.Scale(1, 1, 1, 0.6)
		text.Draw(screen, fmt.Sprintf("%d arcs  %d points  %d rings", arcs, points, rings), face, op)
	}
}

// ringEmissions returns the ages in milliseconds of the rings currently
// expanding, newest last. A ring is emitted every RepeatPeriod and lives
// until it reaches MaxRadius.
func ringEmissions(age float64, l globe.RingLayer) []float64 {
	if age < 0 || l.PropagationSpeed <= 0 {
		return nil
	}
	lifetime := l.MaxRadius / l.PropagationSpeed * 1000
	if l.RepeatPeriod <= 0 {
		if age < lifetime {
			return []float64{age}
		}
		return nil
	}
	var out []float64
	first := math.Max(0, math.Floor((age-lifetime)/l.RepeatPeriod)+1)
	for k := first; k*l.RepeatPeriod <= age; k++ {
		a := age - k*l.RepeatPeriod
		if a < lifetime {
			out = append(out, a)
		}
	}
	return out
}

// dashVisible reports whether position s along an arc is covered by a dash
// whose head is at phase. Dashes of length dash repeat every dash+gap.
func dashVisible(s, phase, dash, gap float64) bool {
	if dash <= 0 {
		return false
	}
	period := dash + gap
	if gap <= 0 {
		return true
	}
	d := math.Mod(phase-s, period)
	if d < 0 {
		d += period
	}
	return d < dash
}

// ringColor evaluates the point's color function for progress t and returns
// it as a color and alpha.
func ringColor(p globe.Point, t float64) (color.RGBA, float64) {
	if p.Color == nil {
		return p.RGB, 1 - t
	}
	c, alpha, err := globe.ParseCSSColor(p.Color(t))
	if err != nil {
		return p.RGB, 1 - t
	}
	return c, alpha
}

func parseLayerColor(s string) (layerColor, error) {
	if s == "" {
		return layerColor{rgba: ColorText, alpha: 1}, nil
	}
	c, a, err := globe.ParseCSSColor(s)
	if err != nil {
		return layerColor{}, err
	}
	return layerColor{rgba: c, alpha: a}, nil
}

// tint lights c with an ambient light color. White light leaves c unchanged.
func tint(c, light color.RGBA) color.RGBA {
	ch := func(v, l uint8) uint8 {
		f := ambientFloor + (1-ambientFloor)*float64(l)/255
		return uint8(math.Round(float64(v) * f))
	}
	return color.RGBA{ch(c.R, light.R), ch(c.G, light.G), ch(c.B, light.B), c.A}
}

func scaleColor(cs *ebiten.ColorScale, c color.RGBA, alpha float64) {
	alpha = math.Max(0, math.Min(1, alpha))
	r, g, b := float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0
	cs.Scale(float32(r*alpha), float32(g*alpha), float32(b*alpha), float32(alpha))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
