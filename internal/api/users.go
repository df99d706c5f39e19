package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
)

// UserHandler serves user account endpoints and the UserAdmin flag toggle.
type UserHandler struct {
	svc domain.UserService
	log *logrus.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc domain.UserService, log *logrus.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(c *gin.Context) {
	p := &queryParser{c: c}
	f := models.UserFilter{Search: c.Query("search"), ListQuery: p.listQuery()}

	if !p.ok() {
		return
	}

	page, err := h.svc.ListUsers(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, "listing users", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}

	u, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, "getting user", err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(c *gin.Context) {
	adminID := getAdminID(c)
	if adminID == 0 {
		return
	}

	var req models.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.svc.CreateUser(c.Request.Context(), adminID, req)
	if err != nil {
		respondServiceError(c, h.log, "creating user", err)
		return
	}

	logAudit(h.log, models.ActionCreateUser, adminID, u.ID)
	c.JSON(http.StatusCreated, u)
}

// Update handles PATCH /api/v1/users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.svc.UpdateUser(c.Request.Context(), adminID, id, req)
	if err != nil {
		respondServiceError(c, h.log, "updating user", err)
		return
	}

	logAudit(h.log, models.ActionUpdateUser, adminID, id)
	c.JSON(http.StatusOK, u)
}

// Delete handles DELETE /api/v1/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	u, err := h.svc.DeleteUser(c.Request.Context(), adminID, id)
	if err != nil {
		respondServiceError(c, h.log, "deleting user", err)
		return
	}

	logAudit(h.log, models.ActionDeleteUser, adminID, id)
	c.JSON(http.StatusOK, u)
}

// Ban handles PATCH /api/v1/users/:id/ban.
func (h *UserHandler) Ban(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	u, err := h.svc.BanUser(c.Request.Context(), adminID, id)
	if err != nil {
		respondServiceError(c, h.log, "banning user", err)
		return
	}

	logAudit(h.log, models.ActionBanUser, adminID, id)
	c.JSON(http.StatusOK, u)
}

// Unban handles PATCH /api/v1/users/:id/unban.
func (h *UserHandler) Unban(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	u, err := h.svc.UnbanUser(c.Request.Context(), adminID, id)
	if err != nil {
		respondServiceError(c, h.log, "unbanning user", err)
		return
	}

	logAudit(h.log, models.ActionUnbanUser, adminID, id)
	c.JSON(http.StatusOK, u)
}

// UpdateRole handles PATCH /api/v1/users/:id/role.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	var req models.UpdateUserRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.svc.UpdateUserRole(c.Request.Context(), adminID, id, req)
	if err != nil {
		respondServiceError(c, h.log, "changing user role", err)
		return
	}

	logAudit(h.log, models.ActionUpdateUserRole, adminID, id)
	c.JSON(http.StatusOK, u)
}

// UpdateAdmin handles PATCH /api/v1/user-admins/:id/admin.
func (h *UserHandler) UpdateAdmin(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	var req models.UpdateUserAdminRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.UpdateUserAdmin(c.Request.Context(), adminID, id, req)
	if err != nil {
		respondServiceError(c, h.log, "updating admin flag", err)
		return
	}

	logAudit(h.log, models.ActionUpdateUserAdmin, adminID, id)
	c.JSON(http.StatusOK, a)
}
