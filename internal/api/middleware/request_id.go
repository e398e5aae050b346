package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	applogger "aptcare/backend/pkg/logger"
)

const requestIDKey = "request_id"

// longer client ids are replaced, they end up in log lines
const requestIDMaxLen = 64

// RequestID propagates X-Request-ID, generating one when absent.
// The id also rides on the request context so service logs carry it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)
		c.Request = c.Request.WithContext(applogger.WithRequestID(c.Request.Context(), rid))

		c.Next()
	}
}
