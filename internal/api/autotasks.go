package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
)

// AutoTaskHandler serves auto-task endpoints.
type AutoTaskHandler struct {
	svc domain.AutoTaskService
	log *logrus.Logger
}

// NewAutoTaskHandler creates an AutoTaskHandler.
func NewAutoTaskHandler(svc domain.AutoTaskService, log *logrus.Logger) *AutoTaskHandler {
	return &AutoTaskHandler{svc: svc, log: log}
}

// List handles GET /api/v1/auto-task.
func (h *AutoTaskHandler) List(c *gin.Context) {
	p := &queryParser{c: c}
	f := models.AutoTaskFilter{
		Title:        c.Query("title"),
		Description:  c.Query("description"),
		RewardFrom:   p.float("rewardFrom"),
		RewardTo:     p.float("rewardTo"),
		URL:          c.Query("url"),
		IsIntegrated: p.boolean("isIntegrated"),
		ListQuery:    p.listQuery(),
	}

	if !p.ok() {
		return
	}

	page, err := h.svc.ListAutoTasks(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, "listing auto tasks", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Applications handles GET /api/v1/auto-task/applications.
func (h *AutoTaskHandler) Applications(c *gin.Context) {
	p := &queryParser{c: c}
	f := models.AutoTaskApplicationFilter{
		UserID:    p.id("userId"),
		TaskID:    p.id("taskId"),
		ListQuery: p.listQuery(),
	}

	if !p.ok() {
		return
	}

	page, err := h.svc.ListApplications(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, "listing auto task applications", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/v1/auto-task/:id.
func (h *AutoTaskHandler) Get(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}

	t, err := h.svc.GetAutoTask(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, "getting auto task", err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// Create handles POST /api/v1/auto-task.
func (h *AutoTaskHandler) Create(c *gin.Context) {
	adminID := getAdminID(c)
	if adminID == 0 {
		return
	}

	var req models.CreateAutoTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	t, err := h.svc.CreateAutoTask(c.Request.Context(), adminID, req)
	if err != nil {
		respondServiceError(c, h.log, "creating auto task", err)
		return
	}

	logAudit(h.log, models.ActionCreateAutoTask, adminID, t.ID)
	c.JSON(http.StatusCreated, t)
}

// Update handles PATCH /api/v1/auto-task/:id and PUT /api/v1/auto-task/:id/update.
func (h *AutoTaskHandler) Update(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	var req models.UpdateAutoTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	t, err := h.svc.UpdateAutoTask(c.Request.Context(), adminID, id, req)
	if err != nil {
		respondServiceError(c, h.log, "updating auto task", err)
		return
	}

	logAudit(h.log, models.ActionUpdateAutoTask, adminID, id)
	c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /api/v1/auto-task/:id.
func (h *AutoTaskHandler) Delete(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	t, err := h.svc.DeleteAutoTask(c.Request.Context(), adminID, id)
	if err != nil {
		respondServiceError(c, h.log, "deleting auto task", err)
		return
	}

	logAudit(h.log, models.ActionDeleteAutoTask, adminID, id)
	c.JSON(http.StatusOK, t)
}
