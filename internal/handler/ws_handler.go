package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/gullrabia/Chat-app/internal/auth"
	"github.com/gullrabia/Chat-app/internal/config"
	"github.com/gullrabia/Chat-app/internal/domain"
	"github.com/gullrabia/Chat-app/internal/hub"
	"github.com/gullrabia/Chat-app/pkg/log"
	"github.com/gullrabia/Chat-app/pkg/response"
)

// WSHandler upgrades authenticated requests into live relay connections.
type WSHandler struct {
	hub       *hub.Hub
	validator *auth.Validator
	cfg       config.WebSocketConfig
	upgrader  websocket.Upgrader
}

// NewWSHandler creates a websocket handler.
func NewWSHandler(h *hub.Hub, validator *auth.Validator, cfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:       h,
		validator: validator,
		cfg:       cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser client connects cross-origin from the web app.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *WSHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws", h.Serve)
}

// Serve handles the websocket handshake. Authentication happens before the
// upgrade so a bad credential gets a normal HTTP error. The handshake
// carries a claimed user ID alongside the token; the identity the token
// resolves to must match the claim.
func (h *WSHandler) Serve(c *gin.Context) {
	claimed := c.Query("userId")
	token := c.Query("token")
	if claimed == "" {
		response.Unauthorized(c, auth.ErrUnauthenticated.Error())
		return
	}

	user, err := h.validator.Resolve(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnauthenticated):
			response.Unauthorized(c, auth.ErrUnauthenticated.Error())
		case errors.Is(err, auth.ErrUnknownIdentity):
			response.NotFound(c, auth.ErrUnknownIdentity.Error())
		default:
			response.Unauthorized(c, auth.ErrInvalidCredential.Error())
		}
		return
	}

	if claimed != user.ID {
		lg := log.Ctx(c.Request.Context())
		lg.Warn().
			Str(log.FieldUserID, user.ID).
			Str("claimed_user_id", claimed).
			Msg("handshake identity mismatch")
		response.Unauthorized(c, auth.ErrInvalidCredential.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		lg := log.Ctx(c.Request.Context())
		lg.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(user.ID, conn, h.hub, h.cfg)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.dispatch)
}

// dispatch handles inbound frames from a live connection. Unknown events
// are dropped; the socket is a relay surface, not an RPC surface.
func (h *WSHandler) dispatch(c *hub.Client, ev *domain.Event) {
	switch ev.Event {
	case domain.EventSendMessage:
		var msg domain.Message
		if err := json.Unmarshal(ev.Data, &msg); err != nil {
			lg := log.L()
			lg.Debug().Err(err).Str(log.FieldUserID, c.UserID()).Msg("dropping malformed sendMessage")
			return
		}

		// The sender is whoever owns the socket, whatever the frame claims.
		msg.SenderID = c.UserID()

		result := h.hub.Route(&msg)
		lg := log.L()
		lg.Debug().
			Str(log.FieldUserID, msg.SenderID).
			Str(log.FieldReceiverID, msg.ReceiverID).
			Str(log.FieldMessageID, msg.ID).
			Str("result", result.String()).
			Msg("message routed")

	default:
		lg := log.L()
		lg.Debug().Str("event", ev.Event).Str(log.FieldUserID, c.UserID()).Msg("dropping unknown event")
	}
}
