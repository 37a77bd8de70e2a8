package realtime

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"nebula/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Handler receives push events in arrival order, one at a time
type Handler func(models.Event)

// Channel is a single authenticated push connection. Connect replaces any
// previous connection, so a Channel never holds more than one.
type Channel struct {
	url    string
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
}

// Option configures a Channel
type Option func(*Channel)

// WithDialer replaces the websocket dialer
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Channel) { c.dialer = d }
}

// New creates a disconnected channel for the push endpoint at url
func New(url string, opts ...Option) *Channel {
	c := &Channel{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect tears down the current connection, waits for its read loop to
// stop, and then dials a new one for token. An empty token leaves the
// channel disconnected.
func (c *Channel) Connect(ctx context.Context, token string, h Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
	if token == "" {
		return nil
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		return fmt.Errorf("dial push channel: %w", err)
	}

	done := make(chan struct{})
	c.conn = conn
	c.done = done
	go readLoop(conn, h, done)
	return nil
}

// Connected reports whether a connection is currently held
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Close tears down the current connection, if any
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}

func (c *Channel) closeLocked() {
	if c.conn == nil {
		return
	}
	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	_ = c.conn.Close()
	<-c.done
	c.conn = nil
	c.done = nil
}

func readLoop(conn *websocket.Conn, h Handler, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Push channel dropped: %v", err)
			}
			return
		}

		var ev models.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("Ignoring malformed push frame: %v", err)
			continue
		}
		if ev.Type == "" {
			continue
		}
		h(ev)
	}
}
