package auth

import (
	"net/http"
	"strings"

	"metaserver/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware creates a gin middleware that requires a valid user session
// token and sets "userID" on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		userID, err := jwt.ParseSubject(tokenString, jwt.KindUser)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// ServerAuthMiddleware creates a gin middleware for routes that only
// registered game servers may call. It sets "serverID" on the context.
func ServerAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		serverID, err := jwt.ParseSubject(tokenString, jwt.KindServer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired server token"})
			return
		}

		c.Set("serverID", serverID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}
