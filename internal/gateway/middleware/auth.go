package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shopledger/internal/utils"
)

// JWTAuth requires a valid bearer token on the route group it guards. The
// parsed operator name is stored in the context for handlers that want it.
func JWTAuth(secret string) gin.HandlerFunc {
	secretBytes := []byte(secret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "missing bearer token",
			})
			return
		}

		claims, err := utils.ParseToken(secretBytes, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid or expired token",
			})
			return
		}

		c.Set("operator", claims.Operator)
		c.Next()
	}
}
