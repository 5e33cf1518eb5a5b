// Package companion keeps a WebSocket link to the editor extension, which
// acts as the server and pushes activity events to the desktop app.
package companion

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gitgotchi/internal/logging"
)

// ErrNotConnected is returned by Send while no connection is up
var ErrNotConnected = errors.New("companion not connected")

const writeTimeout = 5 * time.Second

// Status describes the link for the frontend
type Status struct {
	Connected  bool   `json:"connected"`
	URL        string `json:"url"`
	ClientID   string `json:"clientId"`
	Reconnects int    `json:"reconnects"`
	LastEvent  *Event `json:"lastEvent,omitempty"`
	LastError  string `json:"lastError,omitempty"`
}

// Client dials the extension and redials after every disconnect until its
// context is cancelled.
type Client struct {
	url      string
	interval time.Duration
	id       string
	dialer   *websocket.Dialer

	mu       sync.RWMutex
	conn     *websocket.Conn
	status   Status
	onEvent  func(Event)
	onStatus func(Status)

	writeMu sync.Mutex

	// wake cuts the wait between attempts short
	wake chan struct{}
}

// NewClient creates a client for url that waits interval between attempts
func NewClient(url string, interval time.Duration) *Client {
	id := uuid.NewString()
	return &Client{
		url:      url,
		interval: interval,
		id:       id,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 5 * time.Second,
		},
		status: Status{URL: url, ClientID: id},
		wake:   make(chan struct{}, 1),
	}
}

// SetEventHandler registers the callback for decoded events
func (c *Client) SetEventHandler(fn func(Event)) {
	c.mu.Lock()
	c.onEvent = fn
	c.mu.Unlock()
}

// SetStatusHandler registers the callback for connect/disconnect changes
func (c *Client) SetStatusHandler(fn func(Status)) {
	c.mu.Lock()
	c.onStatus = fn
	c.mu.Unlock()
}

// Status returns a snapshot of the link state
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.status
	if s.LastEvent != nil {
		ev := *s.LastEvent
		s.LastEvent = &ev
	}
	return s
}

// Run blocks, keeping the connection alive until ctx is done
func (c *Client) Run(ctx context.Context) {
	attempt := 0
	for {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.interval):
			case <-c.wake:
			}
			c.mu.Lock()
			c.status.Reconnects++
			c.mu.Unlock()
			logging.Debug("Reconnecting to companion", "url", c.url, "attempt", attempt)
		}
		attempt++

		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.setDisconnected(err)
			continue
		}

		c.serve(ctx, conn)
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("X-GitGotchi-Client", c.id)

	conn, _, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// serve reads from conn until it fails or ctx is cancelled
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.status.Connected = true
	c.status.LastError = ""
	c.mu.Unlock()
	c.notifyStatus()
	logging.Info("Companion connected", "url", c.url)

	stop := context.AfterFunc(ctx, func() {
		c.writeMu.Lock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "desktop app shutting down"),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		conn.Close()
	})
	defer stop()

	var readErr error
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && ctx.Err() == nil {
				logging.Warn("Companion read error", "error", err)
			}
			readErr = err
			break
		}

		ev, err := ParseEvent(msg)
		if err != nil {
			logging.Warn("Dropping companion message", "error", err)
			continue
		}
		ev.ReceivedAt = time.Now()
		c.dispatch(ev)
	}

	conn.Close()
	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()
	if ctx.Err() != nil {
		readErr = nil
	}
	c.setDisconnected(readErr)
	logging.Info("Companion disconnected", "url", c.url)
}

func (c *Client) dispatch(ev Event) {
	c.mu.Lock()
	c.status.LastEvent = &ev
	handler := c.onEvent
	c.mu.Unlock()

	if handler != nil {
		handler(ev)
	}
}

func (c *Client) setDisconnected(err error) {
	c.mu.Lock()
	wasConnected := c.status.Connected
	c.status.Connected = false
	if err != nil {
		c.status.LastError = err.Error()
	}
	c.mu.Unlock()

	if wasConnected {
		c.notifyStatus()
	}
}

func (c *Client) notifyStatus() {
	c.mu.RLock()
	handler := c.onStatus
	c.mu.RUnlock()
	if handler != nil {
		handler(c.Status())
	}
}

// Send writes v as a JSON message to the extension
func (c *Client) Send(v any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

// Reconnect drops the current connection, if any, and redials without
// waiting for the retry interval
func (c *Client) Reconnect() {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	if conn != nil {
		conn.Close()
	}
	logging.Info("Companion reconnect requested", "url", c.url)
}
