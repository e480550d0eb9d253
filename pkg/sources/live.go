package sources

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/sudorandom/arc-globe/pkg/globe"
	"github.com/sudorandom/arc-globe/pkg/observability"
)

// liveMessage is one frame of the live feed. Frames of type "arcs" carry a
// complete replacement arc list in Data; "error" frames carry a message.
type liveMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Listener subscribes to a websocket feed of arc lists and reconnects with
// exponential backoff when the connection drops.
type Listener struct {
	URL        string
	Dialer     *websocket.Dialer
	Clock      clockwork.Clock
	Logger     *log.Logger
	Metrics    *observability.Metrics
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// ListenArcs runs a Listener with the default dialer, clock and backoff until
// ctx is cancelled. m may be nil.
func ListenArcs(ctx context.Context, url string, m *observability.Metrics, onArcs func([]globe.Arc)) error {
	return (&Listener{URL: url, Metrics: m}).Run(ctx, onArcs)
}

// Run connects to l.URL and calls onArcs with every arc list received.
// It returns ctx.Err() once ctx is cancelled.
func (l *Listener) Run(ctx context.Context, onArcs func([]globe.Arc)) error {
	dialer := l.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	clock := l.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	minBackoff, maxBackoff := l.MinBackoff, l.MaxBackoff
	if minBackoff <= 0 {
		minBackoff = time.Second
	}
	if maxBackoff <= 0 {
		maxBackoff = 60 * time.Second
	}

	backoff := minBackoff
	for {
		logger.Printf("Connecting to arc feed: %s", l.URL)
		c, _, err := dialer.DialContext(ctx, l.URL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Printf("Dial error: %v. Retrying in %v...", err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-clock.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = minBackoff

		if err := l.read(ctx, c, logger, onArcs); err != nil && ctx.Err() == nil {
			logger.Printf("Read error: %v. Reconnecting...", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(minBackoff):
		}
	}
}

func (l *Listener) read(ctx context.Context, c *websocket.Conn, logger *log.Logger, onArcs func([]globe.Arc)) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = c.Close()
		case <-done:
			_ = c.Close()
		}
	}()

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			return err
		}
		var msg liveMessage
		if json.Unmarshal(message, &msg) != nil {
			continue
		}
		switch msg.Type {
		case "error":
			logger.Printf("[FEED ERROR] %s", string(msg.Data))
		case "arcs":
			var arcs []globe.Arc
			if err := json.Unmarshal(msg.Data, &arcs); err != nil {
				logger.Printf("Skipping malformed arc list: %v", err)
				continue
			}
			if l.Metrics != nil {
				l.Metrics.LiveUpdates.Inc()
			}
			onArcs(arcs)
		}
	}
}
