package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is a change-notification subscription to one table, speaking the
// Phoenix channel protocol over a single WebSocket connection.
type Client struct {
	cfg    Config
	logger *slog.Logger

	conn *websocket.Conn

	// Output channel
	events chan ChangeEvent
	done   chan struct{}

	// Write serialization
	writeMu sync.Mutex

	// State
	mu        sync.RWMutex
	connected bool
	closed    bool

	mask map[ChangeType]bool
}

// NewClient creates a new subscription client. It does not connect.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Events) == 0 {
		cfg.Events = AllChanges
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = DefaultConfig().HeartbeatInterval
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}

	mask := make(map[ChangeType]bool, len(cfg.Events))
	for _, ev := range cfg.Events {
		mask[ev] = true
	}

	return &Client{
		cfg:    cfg,
		logger: logger,
		events: make(chan ChangeEvent, cfg.BufferSize),
		done:   make(chan struct{}),
		mask:   mask,
	}
}

// Connect dials the realtime endpoint and joins the table topic. A failed
// handshake leaves the client unusable but is non-fatal to callers: the
// dashboard degrades to poll-only operation.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	c.mu.Unlock()

	endpoint, err := wsEndpoint(c.cfg.URL, c.cfg.APIKey)
	if err != nil {
		return fmt.Errorf("build realtime endpoint: %w", err)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial realtime: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.join(); err != nil {
		c.Close()
		return fmt.Errorf("join topic: %w", err)
	}

	// Start goroutines
	go c.readLoop()
	go c.heartbeatLoop()

	c.logger.Debug("realtime subscription opened", "table", c.cfg.Table)

	return nil
}

// Close tears down the subscription. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	conn := c.conn
	c.mu.Unlock()

	// Signal goroutines to stop
	close(c.done)

	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		return conn.Close()
	}

	return nil
}

// Events returns the change-notification channel. The channel stays open for
// the life of the client; consumers should select against their own context.
func (c *Client) Events() <-chan ChangeEvent {
	return c.events
}

// Connected reports whether the subscription is live. Exposed for health
// reporting: a dead subscription means table data only refreshes on restart.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// topic returns the Phoenix topic for the watched table.
func (c *Client) topic() string {
	return "realtime:public:" + c.cfg.Table
}

// join sends the phx_join frame for the table topic.
func (c *Client) join() error {
	return c.send(phxMessage{
		Topic:   c.topic(),
		Event:   "phx_join",
		Ref:     uuid.NewString(),
		Payload: json.RawMessage(`{}`),
	})
}

// send writes one frame to the connection.
func (c *Client) send(msg phxMessage) error {
	c.mu.RLock()
	if !c.connected {
		c.mu.RUnlock()
		return ErrNotConnected
	}
	conn := c.conn
	c.mu.RUnlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return conn.WriteJSON(msg)
}

// readLoop reads frames and delivers masked change events.
func (c *Client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		receivedAt := time.Now()

		if err != nil {
			// Ignore errors after Close() is called
			select {
			case <-c.done:
			default:
				c.logger.Warn("realtime read failed, subscription lost", "error", err)
			}
			return
		}

		var msg phxMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("failed to parse realtime frame", "error", err)
			continue
		}

		switch msg.Event {
		case string(Insert), string(Update), string(Delete):
			if !c.mask[ChangeType(msg.Event)] {
				continue
			}
			ev := ChangeEvent{
				Type:       ChangeType(msg.Event),
				Table:      c.cfg.Table,
				ReceivedAt: receivedAt,
			}
			select {
			case c.events <- ev:
			case <-c.done:
				return
			default:
				// A full buffer is fine: a pending notification already
				// forces a full re-fetch.
			}

		case "phx_reply":
			var reply struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(msg.Payload, &reply); err == nil && reply.Status == "error" {
				c.logger.Warn("realtime command rejected", "topic", msg.Topic)
			}

		case "phx_error", "phx_close":
			c.logger.Warn("realtime channel closed by server", "event", msg.Event, "topic", msg.Topic)

		default:
			c.logger.Debug("skipping realtime event", "event", msg.Event)
		}
	}
}

// heartbeatLoop keeps the Phoenix connection alive.
func (c *Client) heartbeatLoop() {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			err := c.send(phxMessage{
				Topic:   "phoenix",
				Event:   "heartbeat",
				Ref:     uuid.NewString(),
				Payload: json.RawMessage(`{}`),
			})
			if err != nil {
				c.logger.Debug("failed to send heartbeat", "error", err)
			}
		}
	}
}

// wsEndpoint rewrites the project base URL to the realtime websocket URL.
func wsEndpoint(base, apiKey string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = "/realtime/v1/websocket"
	q := url.Values{}
	q.Set("apikey", apiKey)
	q.Set("vsn", "1.0.0")
	u.RawQuery = q.Encode()

	return u.String(), nil
}
