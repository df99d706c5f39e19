// Package httputil holds the JSON error envelope shared by the API handlers
// and the middleware chain.
package httputil

import (
	"github.com/gin-gonic/gin"

	"github.com/gigboard/gigadmin/internal/metrics"
)

// requestIDKey mirrors middleware.RequestIDKey; importing middleware here
// would create a cycle.
const requestIDKey = "request_id"

// ErrorBody is the envelope every non-2xx response carries.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorBody builds the envelope for c, picking up the request id when one
// has been assigned.
func NewErrorBody(c *gin.Context, code, message string) ErrorBody {
	return ErrorBody{Code: code, Message: message, RequestID: c.GetString(requestIDKey)}
}

// RespondError aborts the chain with the error envelope and counts the
// error code in gigadmin_errors_total.
func RespondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	c.AbortWithStatusJSON(status, NewErrorBody(c, code, message))
}
