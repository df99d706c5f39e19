package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
)

// ProjectHandler serves project endpoints.
type ProjectHandler struct {
	svc domain.ProjectService
	log *logrus.Logger
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(svc domain.ProjectService, log *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, log: log}
}

// List handles GET /api/v1/projects.
func (h *ProjectHandler) List(c *gin.Context) {
	p := &queryParser{c: c}
	f := models.ProjectFilter{
		Search:      c.Query("search"),
		AuthorID:    p.id("authorId"),
		Title:       c.Query("title"),
		Description: c.Query("description"),
		Tags:        queryList(c, "tags"),
		Category:    c.Query("category"),
		Status:      models.ProjectStatus(c.Query("status")),
		ListQuery:   p.listQuery(),
	}

	if f.Status != "" && !f.Status.Valid() {
		p.fail("status", "is not a known project status")
	}

	if !p.ok() {
		return
	}

	page, err := h.svc.ListProjects(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, "listing projects", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/v1/projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}

	p, err := h.svc.GetProject(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, "getting project", err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Create handles POST /api/v1/projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	adminID := getAdminID(c)
	if adminID == 0 {
		return
	}

	var req models.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.svc.CreateProject(c.Request.Context(), adminID, req)
	if err != nil {
		respondServiceError(c, h.log, "creating project", err)
		return
	}

	logAudit(h.log, models.ActionCreateProject, adminID, p.ID)
	c.JSON(http.StatusCreated, p)
}

// Update handles PATCH /api/v1/projects/:id.
func (h *ProjectHandler) Update(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.svc.UpdateProject(c.Request.Context(), adminID, id, req)
	if err != nil {
		respondServiceError(c, h.log, "updating project", err)
		return
	}

	logAudit(h.log, models.ActionUpdateProject, adminID, id)
	c.JSON(http.StatusOK, p)
}

// UpdateStatus handles PATCH /api/v1/projects/:id/status.
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	var req models.UpdateProjectStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.svc.UpdateProjectStatus(c.Request.Context(), adminID, id, req)
	if err != nil {
		respondServiceError(c, h.log, "changing project status", err)
		return
	}

	logAudit(h.log, models.ActionUpdateProjectStatus, adminID, id)
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/v1/projects/:id.
func (h *ProjectHandler) Delete(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	p, err := h.svc.DeleteProject(c.Request.Context(), adminID, id)
	if err != nil {
		respondServiceError(c, h.log, "deleting project", err)
		return
	}

	logAudit(h.log, models.ActionDeleteProject, adminID, id)
	c.JSON(http.StatusOK, p)
}
