package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gullrabia/Chat-app/internal/auth"
	"github.com/gullrabia/Chat-app/internal/domain"
	"github.com/gullrabia/Chat-app/pkg/log"
	"github.com/gullrabia/Chat-app/pkg/response"
)

// Context keys set by RequireAuth. The user ID key matches what the
// request logger reads back when the request completes.
const (
	CtxUser   = "auth_user"
	CtxUserID = log.FieldUserID
)

// extractCredential pulls the bearer credential from the request. The web
// client sends a bare "token" header; a standard Authorization bearer is
// accepted too.
func extractCredential(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tok
		}
	}
	return c.GetHeader("token")
}

// RequireAuth resolves the request credential to a user and aborts with the
// validator's error message when it cannot.
func RequireAuth(validator *auth.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := validator.Resolve(c.Request.Context(), extractCredential(c))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrUnauthenticated):
				response.Unauthorized(c, auth.ErrUnauthenticated.Error())
			case errors.Is(err, auth.ErrUnknownIdentity):
				response.NotFound(c, auth.ErrUnknownIdentity.Error())
			default:
				response.Unauthorized(c, auth.ErrInvalidCredential.Error())
			}
			c.Abort()
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxUserID, user.ID)

		ctx := log.WithLogger(c.Request.Context(),
			log.Ctx(c.Request.Context()).With().Str(log.FieldUserID, user.ID).Logger())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CurrentUser returns the authenticated user set by RequireAuth.
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(CtxUser); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
