package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
)

// TransactionHandler serves ledger endpoints.
type TransactionHandler struct {
	svc domain.TransactionService
	log *logrus.Logger
}

// NewTransactionHandler creates a TransactionHandler.
func NewTransactionHandler(svc domain.TransactionService, log *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{svc: svc, log: log}
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	p := &queryParser{c: c}
	f := models.TransactionFilter{
		ProjectID:  p.id("projectId"),
		TaskID:     p.id("taskId"),
		FromUserID: p.id("fromUserId"),
		ToUserID:   p.id("toUserId"),
		AmountFrom: p.float("amountFrom"),
		AmountTo:   p.float("amountTo"),
		Type:       models.TransactionType(c.Query("type")),
		ListQuery:  p.listQuery(),
	}

	if f.Type != "" && !f.Type.Valid() {
		p.fail("type", "is not a known transaction type")
	}

	if !p.ok() {
		return
	}

	page, err := h.svc.ListTransactions(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, "listing transactions", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}

	t, err := h.svc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, "getting transaction", err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// Create handles POST /api/v1/transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	adminID := getAdminID(c)
	if adminID == 0 {
		return
	}

	var req models.CreateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	t, err := h.svc.CreateTransaction(c.Request.Context(), adminID, req)
	if err != nil {
		respondServiceError(c, h.log, "creating transaction", err)
		return
	}

	logAudit(h.log, models.ActionCreateTransaction, adminID, t.ID)
	c.JSON(http.StatusCreated, t)
}

// Update handles PATCH /api/v1/transactions/:id.
func (h *TransactionHandler) Update(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	var req models.UpdateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	t, err := h.svc.UpdateTransaction(c.Request.Context(), adminID, id, req)
	if err != nil {
		respondServiceError(c, h.log, "updating transaction", err)
		return
	}

	logAudit(h.log, models.ActionUpdateTransaction, adminID, id)
	c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /api/v1/transactions/:id.
func (h *TransactionHandler) Delete(c *gin.Context) {
	adminID, id, ok := adminAndID(c)
	if !ok {
		return
	}

	t, err := h.svc.DeleteTransaction(c.Request.Context(), adminID, id)
	if err != nil {
		respondServiceError(c, h.log, "deleting transaction", err)
		return
	}

	logAudit(h.log, models.ActionDeleteTransaction, adminID, id)
	c.JSON(http.StatusOK, t)
}
