package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is the gin context key holding the canonical request id.
	RequestIDKey = "request_id"
	// ClientRequestIDKey holds the sanitized id a client sent, if any.
	ClientRequestIDKey = "client_request_id"

	// RequestIDHeader carries the id in both directions.
	RequestIDHeader = "X-Request-ID"

	maxClientRequestID = 128
)

// RequestID assigns every request a fresh UUID. Audit rows and log lines are
// keyed on it, so a client-supplied X-Request-ID is never trusted as the
// canonical id; it is kept alongside for correlation instead.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		if clientID := sanitizeClientID(c.GetHeader(RequestIDHeader)); clientID != "" {
			c.Set(ClientRequestIDKey, clientID)
			log.WithFields(logrus.Fields{
				"request_id":        id,
				"client_request_id": clientID,
			}).Debug("client request id recorded")
		}

		c.Next()
	}
}

// sanitizeClientID keeps printable ASCII only and caps the length, so the
// value is safe to write into structured logs.
func sanitizeClientID(raw string) string {
	var b strings.Builder

	for i := 0; i < len(raw) && b.Len() < maxClientRequestID; i++ {
		if ch := raw[i]; ch > ' ' && ch < 0x7f {
			b.WriteByte(ch)
		}
	}

	return b.String()
}
