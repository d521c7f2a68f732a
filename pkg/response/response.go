package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the envelope every API response uses. The web client keys off
// the success flag rather than the HTTP status alone.
type Body struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// JSON sends a success response merging extra fields into the envelope.
func JSON(c *gin.Context, status int, extra gin.H) {
	out := gin.H{"success": true}
	for k, v := range extra {
		out[k] = v
	}
	c.JSON(status, out)
}

// OK sends a 200 success response.
func OK(c *gin.Context, extra gin.H) {
	JSON(c, http.StatusOK, extra)
}

// Created sends a 201 success response.
func Created(c *gin.Context, extra gin.H) {
	JSON(c, http.StatusCreated, extra)
}

// Error sends an error response.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Body{Success: false, Message: message})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
