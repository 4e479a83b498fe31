package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/signet-labs/signet/core"
	"github.com/signet-labs/signet/service"
)

const (
	sessionContextKey = "session"
	userContextKey    = "user"
)

// AuthMiddleware validates the Bearer access token and stores the resolved
// session and user in the request context.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")

		session, user, err := authService.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
			return
		}

		c.Set(sessionContextKey, session)
		c.Set(userContextKey, user)
		c.Next()
	}
}

func sessionFromContext(c *gin.Context) *core.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	session, _ := v.(*core.Session)
	return session
}

func userFromContext(c *gin.Context) *core.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*core.User)
	return user
}
