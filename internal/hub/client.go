package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gullrabia/Chat-app/internal/config"
	"github.com/gullrabia/Chat-app/internal/domain"
	"github.com/gullrabia/Chat-app/pkg/log"
)

var (
	// ErrClientClosed is returned by Enqueue after the client has been
	// torn down. The relay treats it as "recipient offline".
	ErrClientClosed = errors.New("client closed")

	// ErrSendBufferFull is returned when the outbound buffer is saturated.
	// The transport is presumed dead and the connection is torn down.
	ErrSendBufferFull = errors.New("send buffer full")
)

// Client owns one websocket connection for one authenticated user. The
// presence table holds a non-owning reference to it; only the client's own
// read/write pumps touch the underlying conn.
type Client struct {
	userID    string
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	createdAt time.Time
	cfg       config.WebSocketConfig

	closeOnce sync.Once
	closed    chan struct{}
}

// NewClient wraps an upgraded websocket connection. The caller registers
// the client with the hub and starts the pumps.
func NewClient(userID string, conn *websocket.Conn, h *Hub, cfg config.WebSocketConfig) *Client {
	return &Client{
		userID:    userID,
		conn:      conn,
		hub:       h,
		send:      make(chan []byte, 256),
		createdAt: time.Now(),
		cfg:       cfg,
		closed:    make(chan struct{}),
	}
}

// UserID returns the owning user's identity.
func (c *Client) UserID() string { return c.userID }

// Close tears the connection down. Safe to call from any goroutine and any
// number of times; concurrent triggers collapse to a single transition.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// Closed reports whether the client has been torn down.
func (c *Client) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Enqueue marshals an event envelope and queues it for delivery. It never
// blocks: a closed client or a full buffer is reported as an error and the
// caller decides what that means (the relay maps both to Offline).
func (c *Client) Enqueue(event string, payload interface{}) error {
	ev, err := domain.NewEvent(event, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	select {
	case <-c.closed:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.closed:
		return ErrClientClosed
	default:
		return ErrSendBufferFull
	}
}

// ReadPump reads inbound frames and dispatches them until the transport
// drops. It runs in the connection's own goroutine; on exit the client is
// deregistered and closed.
func (c *Client) ReadPump(handler func(*Client, *domain.Event)) {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				lg := log.L()
				lg.Warn().Err(err).Str(log.FieldUserID, c.userID).Msg("websocket read error")
			}
			return
		}

		var ev domain.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			lg := log.L()
			lg.Debug().Err(err).Str(log.FieldUserID, c.userID).Msg("dropping malformed frame")
			continue
		}

		handler(c, &ev)
	}
}

// WritePump drains the send buffer onto the wire and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			return
		}
	}
}
