package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/httputil"
	"github.com/gigboard/gigadmin/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeInternalError   = "internal_error"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeForbidden       = "forbidden"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodeValidationError = "validation_error"
)

func respondError(c *gin.Context, status int, code, message string) {
	httputil.RespondError(c, status, code, message)
}

// respondServiceError maps the error taxonomy onto HTTP. Only validation
// messages and entity names reach the client; anything unclassified is logged
// with op and answered with a generic 500.
func respondServiceError(c *gin.Context, log *logrus.Logger, op string, err error) {
	var verr *models.ValidationError

	switch {
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, verr.Error())
	case errors.Is(err, models.ErrValidation):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "validation failed")
	case errors.Is(err, models.ErrNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, models.ErrStillReferenced):
		respondError(c, http.StatusConflict, ErrCodeConflict, "entity is still referenced by other records")
	case errors.Is(err, models.ErrDuplicateKey):
		respondError(c, http.StatusConflict, ErrCodeConflict, "a record with the same unique value already exists")
	case errors.Is(err, models.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
	case errors.Is(err, models.ErrForbidden):
		respondError(c, http.StatusForbidden, ErrCodeForbidden, "admin access required")
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"op":         op,
			"request_id": c.GetString("request_id"),
		}).Error("request failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
