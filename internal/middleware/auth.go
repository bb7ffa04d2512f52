package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Authentication guards the operator API with a static bearer token. An empty
// token allows all requests, which is the expected mode behind a trusted proxy.
func Authentication(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if got != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "UNAUTHORIZED", "message": "invalid or missing token"},
			})
			return
		}
		c.Next()
	}
}
