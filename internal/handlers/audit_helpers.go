package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func peerIDFromContext(c *gin.Context) string {
	if val, ok := c.Get("peerID"); ok {
		if peerID, ok := val.(string); ok {
			return peerID
		}
	}
	return ""
}

func peerIDPointer(c *gin.Context) *string {
	if peerID := peerIDFromContext(c); peerID != "" {
		return &peerID
	}
	return nil
}
