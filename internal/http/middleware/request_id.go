package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/healthcare-bi/backend/internal/service"
)

const RequestIDHeader = "X-Request-Id"

// RequestID keeps a caller-supplied request id or assigns a new one, echoes
// it on the response and carries it on the request context so runs started
// by the request record it in their summary.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Set(RequestIDHeader, rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(service.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}
