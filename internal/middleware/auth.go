package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DeviceAuth validates the device token and resolves the acting peer
// identity from the X-Peer-ID header. An empty configured token skips the
// token check (local development).
func DeviceAuth(deviceToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deviceToken != "" {
			header := c.GetHeader("Authorization")
			if header == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
				return
			}
			if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(deviceToken)) != 1 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
		}

		peerID := c.GetHeader("X-Peer-ID")
		if peerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing peer identity"})
			return
		}

		c.Set("peerID", peerID)
		c.Next()
	}
}
