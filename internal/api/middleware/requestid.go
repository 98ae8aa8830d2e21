package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID      = "X-Request-ID"
	ContextKeyRequestID  = "request_id"
	maxIncomingRequestID = 128
)

// RequestIDMiddleware tags each request with an id, reusing a sane one sent
// by the caller, and echoes it in the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxIncomingRequestID {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func RequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
