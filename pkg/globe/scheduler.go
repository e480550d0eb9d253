package globe

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sudorandom/arc-globe/pkg/observability"
)

// errNoRings is returned by a tick that had nothing to do.
var errNoRings = errors.New("globe: no ring data")

// RingScheduler periodically picks a random subset of points and hands it to
// the surface as the pulsing ring set.
//
// Each tick draws RingCount(arcCount) distinct indices from [0, arcCount)
// and selects the points at those indices; indices past the end of the point
// slice select nothing.
type RingScheduler struct {
	Surface  Surface
	Points   []Point
	ArcCount int
	Interval time.Duration
	Clock    clockwork.Clock
	Rand     *rand.Rand
	Ready    func() bool
	Logger   *log.Logger
	Metrics  *observability.Metrics

	mu       sync.Mutex
	current  []Point
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Start launches the ticker goroutine. It must be called at most once.
func (s *RingScheduler) Start() {
	if s.Clock == nil {
		s.Clock = clockwork.NewRealClock()
	}
	if s.Interval <= 0 {
		s.Interval = RingInterval
	}
	if s.Logger == nil {
		s.Logger = log.Default()
	}
	if s.Rand == nil {
		s.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	ticker := s.Clock.NewTicker(s.Interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.Chan():
				if err := s.Tick(); err != nil && !errors.Is(err, errNoRings) {
					s.Logger.Printf("Ring update skipped: %v", err)
				}
			}
		}
	}()
}

// Stop cancels the ticker and waits for the goroutine to exit. No tick runs
// after Stop returns. Stop is safe to call more than once, and on a
// scheduler that was never started.
func (s *RingScheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.stop == nil {
			return
		}
		close(s.stop)
		<-s.done
	})
}

// Tick performs one ring update. A failing or panicking surface call is
// returned as an error; the previous ring set stays in place.
func (s *RingScheduler) Tick() (err error) {
	if (s.Ready != nil && !s.Ready()) || len(s.Points) == 0 || s.Surface == nil {
		s.count("idle")
		return errNoRings
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("surface panic: %v", r)
		}
		if err != nil {
			s.count("skipped")
		}
	}()

	if s.Rand == nil {
		s.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	idx := SampleIndices(s.Rand, 0, s.ArcCount, RingCount(s.ArcCount))
	rings := SelectRings(s.Points, idx)
	if err := s.Surface.SetRingData(rings); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = rings
	s.mu.Unlock()
	s.count("ok")
	return nil
}

// Current returns the ring set of the last successful tick.
func (s *RingScheduler) Current() []Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *RingScheduler) count(outcome string) {
	if s.Metrics != nil {
		s.Metrics.RingTicks.WithLabelValues(outcome).Inc()
	}
}
