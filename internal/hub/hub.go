package hub

import (
	"errors"

	"github.com/gullrabia/Chat-app/internal/domain"
	"github.com/gullrabia/Chat-app/internal/presence"
	"github.com/gullrabia/Chat-app/pkg/log"
)

// RouteResult is the outcome of a relay attempt.
type RouteResult int

const (
	// Delivered means the message was handed to the recipient's send
	// buffer. Delivery to the buffer is the relay's whole contract;
	// durability is the message store's job.
	Delivered RouteResult = iota

	// Offline means the recipient has no usable live connection. Not an
	// error: the message is already persisted and will be fetched from
	// history.
	Offline
)

func (r RouteResult) String() string {
	if r == Delivered {
		return "delivered"
	}
	return "offline"
}

// Hub routes messages between live connections and keeps every client's
// online-user view in sync. The presence table is injected; the hub never
// reaches around it to connection internals.
type Hub struct {
	presence *presence.Table
}

// NewHub creates a hub over the given presence table.
func NewHub(table *presence.Table) *Hub {
	return &Hub{presence: table}
}

// Register records the client as its user's active connection. A prior
// connection for the same user is explicitly closed so it cannot keep a
// zombie claim on delivery, then the new online set is broadcast.
func (h *Hub) Register(c *Client) {
	prev := h.presence.Register(c)
	if prev != nil {
		if pc, ok := prev.(*Client); ok {
			lg := log.L()
			lg.Info().Str(log.FieldUserID, c.UserID()).Msg("superseding existing connection")
			pc.Close()
		}
	}
	lg := log.L()
	lg.Info().Str(log.FieldUserID, c.UserID()).Int("online", h.presence.Len()).Msg("user connected")
	h.BroadcastPresence()
}

// Unregister removes the client from the presence table if it is still the
// registered connection for its user, and broadcasts the shrunken online
// set. A stale unregister (the user already reconnected) changes nothing
// and broadcasts nothing.
func (h *Hub) Unregister(c *Client) {
	if !h.presence.Deregister(c) {
		return
	}
	lg := log.L()
	lg.Info().Str(log.FieldUserID, c.UserID()).Int("online", h.presence.Len()).Msg("user disconnected")
	h.BroadcastPresence()
}

// Route forwards a message to the receiver's live connection. Best-effort
// only: any failure to hand the message over collapses to Offline. A full
// send buffer additionally tears the receiver's connection down, since its
// transport is presumed dead.
func (h *Hub) Route(msg *domain.Message) RouteResult {
	ref, ok := h.presence.Lookup(msg.ReceiverID)
	if !ok {
		return Offline
	}

	c, ok := ref.(*Client)
	if !ok {
		return Offline
	}

	if err := c.Enqueue(domain.EventNewMessage, msg); err != nil {
		if errors.Is(err, ErrSendBufferFull) {
			lg := log.L()
			lg.Warn().Str(log.FieldReceiverID, msg.ReceiverID).Msg("send buffer full, tearing connection down")
			go func() {
				h.Unregister(c)
				c.Close()
			}()
		}
		return Offline
	}

	return Delivered
}

// BroadcastPresence pushes the current online-user set to every live
// connection. The ID set and the recipient list come from one atomic
// snapshot; the table lock is released before any enqueue.
func (h *Hub) BroadcastPresence() {
	ids, conns := h.presence.SnapshotConns()
	for _, ref := range conns {
		c, ok := ref.(*Client)
		if !ok {
			continue
		}
		if err := c.Enqueue(domain.EventOnlineUsers, ids); err != nil {
			// A failed presence push is not worth a teardown on its
			// own; the next route or ping will surface a dead conn.
			lg := log.L()
			lg.Debug().Err(err).Str(log.FieldUserID, c.UserID()).Msg("presence push failed")
		}
	}
}

// Online reports whether the user currently has a live connection.
func (h *Hub) Online(userID string) bool {
	_, ok := h.presence.Lookup(userID)
	return ok
}
