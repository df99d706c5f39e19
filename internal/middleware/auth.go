package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
)

// AdminIDKey is the gin context key holding the authenticated admin id (int64).
const AdminIDKey = "admin_id"

// authTimingFloor is the minimum response time for rejected tokens so
// malformed and expired tokens cannot be told apart by latency.
const authTimingFloor = 50 * time.Millisecond

// truncateToken returns at most the first 8 characters of a token followed by "...".
func truncateToken(token string) string {
	if len(token) > 8 {
		return token[:8] + "..."
	}

	return token
}

// enforceTimingFloor sleeps if needed so the response takes at least authTimingFloor.
func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// Authenticate returns Gin middleware that requires a valid bearer access token
// and stores the admin id it was issued for under AdminIDKey.
func Authenticate(validator domain.TokenValidator, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		token := ExtractBearerToken(c)
		if token == "" {
			respondError(c, http.StatusUnauthorized, codeUnauthorized, "missing or invalid authorization header")
			return
		}

		adminID, err := validator.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			logAuthFailure(log, c, token, err)
			respondError(c, http.StatusUnauthorized, codeUnauthorized, "invalid or expired token")

			return
		}

		c.Set(AdminIDKey, adminID)
		c.Next()
	}
}

// RequireAdmin returns Gin middleware that only lets operators holding the
// admin flag through. It must run after Authenticate.
func RequireAdmin(checker domain.AdminChecker, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := c.GetInt64(AdminIDKey)

		ok, err := checker.IsAdmin(c.Request.Context(), adminID)

		switch {
		case errors.Is(err, models.ErrUnauthorized):
			respondError(c, http.StatusUnauthorized, codeUnauthorized, "account no longer exists")
		case err != nil:
			log.WithError(err).WithField("admin_id", adminID).Error("checking admin flag")
			respondError(c, http.StatusInternalServerError, codeInternal, "internal server error")
		case !ok:
			log.WithFields(logrus.Fields{
				"admin_id": adminID,
				"path":     c.Request.URL.Path,
			}).Warn("non-admin operator denied")
			respondError(c, http.StatusForbidden, codeForbidden, "admin access required")
		default:
			c.Next()
		}
	}
}

// ExtractBearerToken extracts the token from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}

	return strings.TrimPrefix(header, "Bearer ")
}

// logAuthFailure logs a rejected access token.
func logAuthFailure(log *logrus.Logger, c *gin.Context, token string, err error) {
	log.WithFields(logrus.Fields{
		"client_ip":    c.ClientIP(),
		"method":       c.Request.Method,
		"path":         c.Request.URL.Path,
		"user_agent":   c.Request.UserAgent(),
		"request_id":   c.GetString(RequestIDKey),
		"token_prefix": truncateToken(token),
		"reason":       err.Error(),
	}).Warn("authentication failed: invalid access token")
}
