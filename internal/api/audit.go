package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
)

// AuditHandler serves the admin action log.
type AuditHandler struct {
	svc domain.AuditService
	log *logrus.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(svc domain.AuditService, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{svc: svc, log: log}
}

// ListAll handles GET /api/v1/admin-action-logs and returns every record in insertion order.
func (h *AuditHandler) ListAll(c *gin.Context) {
	records, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, "listing admin action logs", err)
		return
	}

	if records == nil {
		records = []models.AuditRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// Query handles GET /api/v1/admin-action-logs/query.
func (h *AuditHandler) Query(c *gin.Context) {
	p := &queryParser{c: c}
	opts := models.AuditQueryOpts{
		EntityType: models.EntityType(c.Query("entityType")),
		EntityID:   p.id("entityId"),
		Action:     models.Action(c.Query("action")),
		AdminID:    p.id("adminId"),
		Since:      p.timestamp("since"),
		Page:       p.boundedInt("page", models.MaxPage),
		Limit:      p.positiveInt("limit"),
	}

	if !p.ok() {
		return
	}

	page, err := h.svc.Query(c.Request.Context(), opts)
	if err != nil {
		respondServiceError(c, h.log, "querying admin action logs", err)
		return
	}

	c.JSON(http.StatusOK, page)
}
