package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the scrape key for /metrics.
const APIKeyHeader = "X-API-KEY"

// ValidateAPIKey rejects requests whose X-API-KEY header does not match key.
// It writes the response itself so it can guard routes registered ahead of
// ErrorHandler.
func ValidateAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(APIKeyHeader)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or missing API key"})
			return
		}
		c.Next()
	}
}
