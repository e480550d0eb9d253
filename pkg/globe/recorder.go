package globe

import "sync"

// Recorder is a Surface that keeps every layer it is given. It backs the
// dump tool and tests.
type Recorder struct {
	mu       sync.Mutex
	calls    []string
	Polygons PolygonLayer
	Arcs     ArcLayer
	Points   PointLayer
	Rings    RingLayer
	Material Material
	// RingUpdates counts SetRingData calls.
	RingUpdates int

	// Fail, when set, is consulted before each call; a non-nil result is
	// returned instead of recording the call.
	Fail func(call string) error
}

var _ Surface = (*Recorder)(nil)

func (r *Recorder) record(call string) error {
	if r.Fail != nil {
		if err := r.Fail(call); err != nil {
			return err
		}
	}
	r.calls = append(r.calls, call)
	return nil
}

// Calls returns the names of the calls recorded so far, in order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// RingData returns a copy of the current ring data.
func (r *Recorder) RingData() []Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Point(nil), r.Rings.Data...)
}

// RingUpdateCount returns the number of SetRingData calls recorded.
func (r *Recorder) RingUpdateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.RingUpdates
}

func (r *Recorder) SetPolygons(l PolygonLayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("polygons"); err != nil {
		return err
	}
	r.Polygons = l
	return nil
}

func (r *Recorder) SetArcs(l ArcLayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("arcs"); err != nil {
		return err
	}
	r.Arcs = l
	return nil
}

func (r *Recorder) SetPoints(l PointLayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("points"); err != nil {
		return err
	}
	r.Points = l
	return nil
}

func (r *Recorder) SetRings(l RingLayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("rings"); err != nil {
		return err
	}
	r.Rings = l
	return nil
}

func (r *Recorder) SetRingData(p []Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("ringData"); err != nil {
		return err
	}
	r.Rings.Data = p
	r.RingUpdates++
	return nil
}

func (r *Recorder) SetMaterial(m Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("material"); err != nil {
		return err
	}
	r.Material = m
	return nil
}
