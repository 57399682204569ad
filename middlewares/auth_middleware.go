package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gokulpos/restaurant-pos/utils"
)

// RequireOwner rejects requests without a valid owner token. Staff
// terminals never send one; the protected routes are the owner console.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseToken(tokenString)
		if err != nil || claims == nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid or expired token"))
			c.Abort()
			return
		}

		if claims.Role != "owner" {
			utils.RespondError(c, http.StatusForbidden, errors.New("owner access required"))
			c.Abort()
			return
		}

		c.Set("role", claims.Role)
		c.Next()
	}
}
