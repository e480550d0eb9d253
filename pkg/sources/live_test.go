package sources

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sudorandom/arc-globe/pkg/globe"
	"github.com/sudorandom/arc-globe/pkg/observability"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// feedServer sends the frames of one script per connection, then closes it.
func feedServer(t *testing.T, scripts ...[]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var conns atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		n := int(conns.Add(1)) - 1
		if n >= len(scripts) {
			// Hold the connection open until the client leaves.
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}
		for _, frame := range scripts[n] {
			if err := c.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &conns
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestListenerDeliversArcs(t *testing.T) {
	srv, _ := feedServer(t, []string{
		`{"type":"error","data":"warming up"}`,
		`not json`,
		`{"type":"arcs","data":{"bad":true}}`,
		`{"type":"arcs","data":[{"order":1,"startLat":1,"startLng":2,"endLat":3,"endLng":4,"arcAlt":0.1,"color":"#fff"}]}`,
	})

	logs := &lockedBuffer{}
	metrics := observability.NewMetricsForTesting()
	l := &Listener{URL: wsURL(srv), Logger: log.New(logs, "", 0), Metrics: metrics, MinBackoff: 10 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got := make(chan []globe.Arc, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- l.Run(ctx, func(arcs []globe.Arc) {
			got <- arcs
			cancel()
		})
	}()

	select {
	case arcs := <-got:
		if len(arcs) != 1 || arcs[0].EndLng != 4 || arcs[0].Color != "#fff" {
			t.Errorf("received %+v", arcs)
		}
	case <-ctx.Done():
		t.Fatal("no arcs received")
	}
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
	if !strings.Contains(logs.String(), "[FEED ERROR] \"warming up\"") {
		t.Errorf("feed error not logged: %q", logs.String())
	}
	if !strings.Contains(logs.String(), "Skipping malformed arc list") {
		t.Errorf("malformed list not logged: %q", logs.String())
	}
	if n := testutil.ToFloat64(metrics.LiveUpdates); n != 1 {
		t.Errorf("live updates = %v, want 1", n)
	}
}

func TestListenerReconnects(t *testing.T) {
	srv, conns := feedServer(t,
		[]string{`{"type":"arcs","data":[]}`},
		[]string{`{"type":"arcs","data":[{"order":2,"startLat":5,"startLng":6,"endLat":7,"endLng":8,"arcAlt":0.2,"color":"#000"}]}`},
	)
	l := &Listener{URL: wsURL(srv), Logger: log.New(&lockedBuffer{}, "", 0), MinBackoff: 10 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var updates [][]globe.Arc
	err := l.Run(ctx, func(arcs []globe.Arc) {
		updates = append(updates, arcs)
		if len(updates) == 2 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}
	if len(updates[0]) != 0 || len(updates[1]) != 1 || updates[1][0].Order != 2 {
		t.Errorf("updates = %+v", updates)
	}
	if n := conns.Load(); n < 2 {
		t.Errorf("listener connected %d times, want a reconnect", n)
	}
}

func TestListenerBacksOffOnDialError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv)
	srv.Close()

	logs := &lockedBuffer{}
	l := &Listener{URL: url, Logger: log.New(logs, "", 0), MinBackoff: 5 * time.Millisecond, MaxBackoff: 20 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := l.Run(ctx, func([]globe.Arc) { t.Error("arcs from a dead server") }); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run returned %v", err)
	}
	if strings.Count(logs.String(), "Dial error") < 2 {
		t.Errorf("listener did not retry: %q", logs.String())
	}
}

func TestListenArcsCountsUpdates(t *testing.T) {
	srv, _ := feedServer(t, []string{
		`{"type":"arcs","data":[{"order":3,"startLat":1,"startLng":2,"endLat":3,"endLng":4,"arcAlt":0.3,"color":"#abc"}]}`,
	})
	metrics := observability.NewMetricsForTesting()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var got []globe.Arc
	err := ListenArcs(ctx, wsURL(srv), metrics, func(arcs []globe.Arc) {
		got = arcs
		cancel()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ListenArcs returned %v", err)
	}
	if len(got) != 1 || got[0].Order != 3 {
		t.Errorf("received %+v", got)
	}
	if n := testutil.ToFloat64(metrics.LiveUpdates); n != 1 {
		t.Errorf("live updates = %v, want 1", n)
	}
}
