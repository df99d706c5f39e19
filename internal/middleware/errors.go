package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/gigboard/gigadmin/internal/httputil"
)

// Codes emitted by the middleware chain. They match the api package's codes
// so clients see one vocabulary.
const (
	codeUnauthorized    = "unauthorized"
	codeForbidden       = "forbidden"
	codeRateLimited     = "rate_limited"
	codePayloadTooLarge = "payload_too_large"
	codeInternal        = "internal_error"
)

func respondError(c *gin.Context, status int, code, message string) {
	httputil.RespondError(c, status, code, message)
}
