package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl lets the caller's browser reuse a response for maxAgeSeconds.
// Responses vary by language, so shared caches are excluded.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", maxAgeSeconds))
		c.Header("Vary", "Accept-Language")
		c.Next()
	}
}

// NoStore marks per-user responses (attempt state, answer keys) as uncacheable.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
