package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
)

// ProgressHandler serves progress-project endpoints.
type ProgressHandler struct {
	svc domain.ProgressProjectService
	log *logrus.Logger
}

// NewProgressHandler creates a ProgressHandler.
func NewProgressHandler(svc domain.ProgressProjectService, log *logrus.Logger) *ProgressHandler {
	return &ProgressHandler{svc: svc, log: log}
}

// List handles GET /api/v1/progress-projects.
func (h *ProgressHandler) List(c *gin.Context) {
	p := &queryParser{c: c}
	f := models.ProgressFilter{
		UserID:    p.id("userId"),
		ProjectID: p.id("projectId"),
		Status:    models.ProgressStatus(c.Query("status")),
		ListQuery: p.listQuery(),
	}

	if f.Status != "" && !f.Status.Valid() {
		p.fail("status", "is not a known progress status")
	}

	if !p.ok() {
		return
	}

	page, err := h.svc.ListProgress(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, "listing progress", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/v1/progress-projects/:id.
func (h *ProgressHandler) Get(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}

	pp, err := h.svc.GetProgress(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, "getting progress", err)
		return
	}

	c.JSON(http.StatusOK, pp)
}

// Create handles POST /api/v1/progress-projects.
func (h *ProgressHandler) Create(c *gin.Context) {
	adminID := getAdminID(c)
	if adminID == 0 {
		return
	}

	var req models.CreateProgressProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	pp, err := h.svc.CreateProgress(c.Request.Context(), adminID, req)
	if err != nil {
		respondServiceError(c, h.log, "creating progress", err)
		return
	}

	logAudit(h.log, models.ActionCreateProgressProject, adminID, pp.ID)
	c.JSON(http.StatusCreated, pp)
}

// Update handles PATCH /api/v1/progress-projects/:id.
func (h *ProgressHandler) Update(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	var req models.UpdateProgressProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	pp, err := h.svc.UpdateProgress(c.Request.Context(), adminID, id, req)
	if err != nil {
		respondServiceError(c, h.log, "updating progress", err)
		return
	}

	logAudit(h.log, models.ActionUpdateProgressProject, adminID, id)
	c.JSON(http.StatusOK, pp)
}

// Delete handles DELETE /api/v1/progress-projects/:id.
func (h *ProgressHandler) Delete(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	pp, err := h.svc.DeleteProgress(c.Request.Context(), adminID, id)
	if err != nil {
		respondServiceError(c, h.log, "deleting progress", err)
		return
	}

	logAudit(h.log, models.ActionDeleteProgressProject, adminID, id)
	c.JSON(http.StatusOK, pp)
}
