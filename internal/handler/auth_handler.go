package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gullrabia/Chat-app/internal/domain"
	"github.com/gullrabia/Chat-app/internal/middleware"
	"github.com/gullrabia/Chat-app/internal/service"
	"github.com/gullrabia/Chat-app/pkg/response"
)

// AuthHandler serves the account endpoints under /api/auth.
type AuthHandler struct {
	users service.UserService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(users service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// RegisterRoutes mounts the auth routes. The authed group carries the
// credential middleware; signup and login do not.
func (h *AuthHandler) RegisterRoutes(r gin.IRouter, requireAuth gin.HandlerFunc) {
	grp := r.Group("/api/auth")
	grp.POST("/signup", h.Signup)
	grp.POST("/login", h.Login)

	authed := grp.Group("", requireAuth)
	authed.POST("/logout", h.Logout)
	authed.PUT("/update-profile", h.UpdateProfile)
	authed.GET("/check", h.Check)
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req domain.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "missing details")
		return
	}

	user, token, err := h.users.Signup(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrAccountExists) {
			response.Conflict(c, "account already exists")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Created(c, gin.H{
		"userData": user,
		"token":    token,
		"message":  "Account created successfully",
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "missing details")
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid credentials")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.OK(c, gin.H{
		"userData": user,
		"token":    token,
		"message":  "Login successful",
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.users.Logout(c.Request.Context(), user.ID); err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.OK(c, gin.H{"message": "Logged out successfully"})
}

// UpdateProfile handles PUT /api/auth/update-profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "missing details")
		return
	}

	user := middleware.CurrentUser(c)
	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidImage) {
			response.BadRequest(c, "invalid image payload")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.OK(c, gin.H{"user": updated})
}

// Check handles GET /api/auth/check. It exists so the client can verify a
// stored token and rehydrate the signed-in user.
func (h *AuthHandler) Check(c *gin.Context) {
	response.OK(c, gin.H{"user": middleware.CurrentUser(c)})
}
