package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/metrics"
	"github.com/gigboard/gigadmin/internal/models"
)

// LoginGuard throttles repeated failed sign-ins per email.
type LoginGuard interface {
	// LockedFor returns the remaining lockout, or 0 when sign-in is allowed.
	LockedFor(email string) time.Duration
	RecordFailure(email string)
	Reset(email string)
}

// AuthHandler serves operator sign-in endpoints.
type AuthHandler struct {
	svc   domain.AuthService
	guard LoginGuard
	log   *logrus.Logger
}

// NewAuthHandler creates an AuthHandler. guard may be nil.
func NewAuthHandler(svc domain.AuthService, guard LoginGuard, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, guard: guard, log: log}
}

func (h *AuthHandler) lockedFor(email string) time.Duration {
	if h.guard == nil {
		return 0
	}

	return h.guard.LockedFor(email)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.AuthRequest
	if !bindJSON(c, &req) {
		return
	}

	if wait := h.lockedFor(req.Email); wait > 0 {
		metrics.ErrorsTotal.WithLabelValues("login_locked").Inc()
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		respondError(c, http.StatusTooManyRequests, ErrCodeRateLimited, "too many failed attempts, try again later")
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if h.guard != nil && errors.Is(err, models.ErrInvalidCredentials) {
			h.guard.RecordFailure(req.Email)
		}

		respondServiceError(c, h.log, "signing in", err)
		return
	}

	if h.guard != nil {
		h.guard.Reset(req.Email)
	}

	h.log.WithField("admin_id", resp.UserAdmin.ID).Info("operator signed in")
	c.JSON(http.StatusOK, resp)
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.AuthRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.log, "registering operator", err)
		return
	}

	h.log.WithField("admin_id", resp.UserAdmin.ID).Info("operator registered")
	c.JSON(http.StatusCreated, resp)
}

// Refresh handles POST /api/v1/auth/login/access-token and /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Refresh(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.log, "refreshing token", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
