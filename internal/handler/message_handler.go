package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gullrabia/Chat-app/internal/domain"
	"github.com/gullrabia/Chat-app/internal/middleware"
	"github.com/gullrabia/Chat-app/internal/repository"
	"github.com/gullrabia/Chat-app/internal/service"
	"github.com/gullrabia/Chat-app/pkg/response"
)

// MessageHandler serves the message endpoints under /api/messages.
type MessageHandler struct {
	messages service.MessageService
}

// NewMessageHandler creates a message handler.
func NewMessageHandler(messages service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// RegisterRoutes mounts the message routes; every one requires auth.
func (h *MessageHandler) RegisterRoutes(r gin.IRouter, requireAuth gin.HandlerFunc) {
	grp := r.Group("/api/messages", requireAuth)
	grp.GET("/users", h.SidebarUsers)
	grp.GET("/:id", h.Conversation)
	grp.PUT("/mark/:id", h.MarkSeen)
	grp.POST("/send/:id", h.Send)
}

// SidebarUsers handles GET /api/messages/users: every other user plus the
// caller's unseen counts keyed by sender ID.
func (h *MessageHandler) SidebarUsers(c *gin.Context) {
	user := middleware.CurrentUser(c)

	users, unseen, err := h.messages.SidebarUsers(c.Request.Context(), user.ID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.OK(c, gin.H{
		"users":          users,
		"unseenMessages": unseen,
	})
}

// Conversation handles GET /api/messages/:id and marks the other side's
// messages seen as a side effect.
func (h *MessageHandler) Conversation(c *gin.Context) {
	user := middleware.CurrentUser(c)

	msgs, err := h.messages.Conversation(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.OK(c, gin.H{"messages": msgs})
}

// MarkSeen handles PUT /api/messages/mark/:id for a single message.
func (h *MessageHandler) MarkSeen(c *gin.Context) {
	if err := h.messages.MarkSeen(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			response.NotFound(c, "message not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.OK(c, nil)
}

// Send handles POST /api/messages/send/:id. The saved message comes back in
// the response; the client then emits it on the socket so the relay can
// forward it if the receiver is online.
func (h *MessageHandler) Send(c *gin.Context) {
	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	user := middleware.CurrentUser(c)

	msg, err := h.messages.SendMessage(c.Request.Context(), user.ID, c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			response.BadRequest(c, "text or image is required")
		case errors.Is(err, service.ErrInvalidImage):
			response.BadRequest(c, "invalid image payload")
		case errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, "receiver not found")
		default:
			response.InternalError(c, err.Error())
		}
		return
	}

	response.Created(c, gin.H{"newMessage": msg})
}
