package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkshelf/internal/db"
	"github.com/inkshelf/internal/service"
)

const userContextKey = "__current_user"

// TokenRequired rejects requests that do not carry a valid API token and
// stores the resolved user on the context. Both "Token <key>" and
// "Bearer <key>" header schemes are accepted.
func (a *API) TokenRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := tokenFromHeader(c.GetHeader("Authorization"))
		if !ok {
			respondError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			c.Abort()
			return
		}

		user, err := a.users.Authenticate(key)
		if err != nil {
			if errors.Is(err, service.ErrTokenInvalid) {
				respondError(c, http.StatusUnauthorized, "Invalid token.")
			} else {
				respondError(c, http.StatusInternalServerError, "failed to authenticate request")
			}
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func tokenFromHeader(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	scheme := strings.ToLower(parts[0])
	if scheme != "token" && scheme != "bearer" {
		return "", false
	}
	return parts[1], true
}

func currentUser(c *gin.Context) *db.User {
	if value, exists := c.Get(userContextKey); exists {
		if user, ok := value.(*db.User); ok {
			return user
		}
	}
	return nil
}
