package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"HavenGo/utils"
)

// AuthMiddleware validates the device token and stashes the device id in the
// gin context.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}

		claims, err := jwtManager.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		c.Set("deviceId", claims.DeviceID)
		c.Next()
	}
}
